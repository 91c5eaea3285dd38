package profile

import (
	"regexp"
	"strings"
)

// iconAliases maps common spellings onto skillicons.dev ids
var iconAliases = map[string]string{
	"next.js":             "nextjs",
	"next":                "nextjs",
	"nest.js":             "nestjs",
	"nest":                "nestjs",
	"vue.js":              "vue",
	"vuejs":               "vue",
	"nuxtjs":              "nuxtjs",
	"react.js":            "react",
	"reactjs":             "react",
	"node.js":             "nodejs",
	"node":                "nodejs",
	"express.js":          "express",
	"express":             "express",
	"django":              "django",
	"flask":               "flask",
	"spring":              "spring",
	"laravel":             "laravel",
	"c++":                 "cpp",
	"c#":                  "cs",
	"dotnet":              "dotnet",
	"golang":              "go",
	"javascript":          "js",
	"typescript":          "ts",
	"python":              "py",
	"aws":                 "aws",
	"amazon web services": "aws",
	"gcp":                 "gcp",
	"google cloud":        "gcp",
	"azure":               "azure",
	"docker":              "docker",
	"kubernetes":          "kubernetes",
	"k8s":                 "kubernetes",
	"git":                 "git",
	"github":              "github",
	"linux":               "linux",
	"jenkins":             "jenkins",
	"bash":                "bash",
	"shell":               "bash",
}

var parenthesized = regexp.MustCompile(`\(.*\)`)

// SanitizeTechStack lowercases, strips parenthesized qualifiers ("aws(ec2)")
// and maps aliases onto skillicons ids. Unknown names pass through; blanks
// are dropped.
func SanitizeTechStack(inputs []string) []string {
	out := make([]string, 0, len(inputs))
	for _, input := range inputs {
		clean := strings.ToLower(strings.TrimSpace(input))
		clean = strings.TrimSpace(parenthesized.ReplaceAllString(clean, ""))
		if clean == "" {
			continue
		}
		if alias, ok := iconAliases[clean]; ok {
			clean = alias
		}
		out = append(out, clean)
	}
	return out
}
