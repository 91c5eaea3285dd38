package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/harun/ghprofile/pkg/plugin"
	"github.com/harun/ghprofile/pkg/profile"
)

// Socials appends a "Connect" section with the profile's contact links
func Socials() *plugin.Plugin {
	return &plugin.Plugin{
		Metadata: plugin.Metadata{
			ID:          "socials",
			Name:        "Social Links",
			Description: "Adds social media links to your profile",
			Version:     "1.0.0",
			Author:      author,
		},
		Render: renderSocials,
	}
}

func renderSocials(_ context.Context, content string, data *profile.Data) (string, error) {
	if data == nil {
		return content, nil
	}
	p := data.Profile

	var links []string
	if p.Location != "" {
		links = append(links, "🌍 "+p.Location)
	}
	if p.Company != "" {
		links = append(links, "💼 "+p.Company)
	}
	if p.Blog != "" {
		url := p.Blog
		if !strings.HasPrefix(url, "http") {
			url = "https://" + url
		}
		label := strings.TrimPrefix(strings.TrimPrefix(p.Blog, "https://"), "http://")
		links = append(links, fmt.Sprintf("🌐 [%s](%s)", label, url))
	}
	if p.Twitter != "" {
		links = append(links, fmt.Sprintf("🐦 [@%s](https://twitter.com/%s)", p.Twitter, p.Twitter))
	}
	if p.Email != "" {
		links = append(links, fmt.Sprintf("✉️ [%s](mailto:%s)", p.Email, p.Email))
	}

	if len(links) == 0 {
		return content, nil
	}

	for i, link := range links {
		links[i] = "**" + link + "**"
	}
	return content + "\n## Connect\n\n" + strings.Join(links, "  ·  ") + "\n", nil
}
