package templates

import (
	"fmt"
	"strings"

	"github.com/harun/ghprofile/pkg/profile"
)

// Minimal renders a short README: greeting, a small stats table and the five
// most starred repositories
func Minimal() *Template {
	return &Template{
		Metadata: Metadata{
			ID:          "minimal",
			Name:        "Minimal",
			Description: "A clean, minimal GitHub profile README template",
			Category:    CategoryMinimal,
			Version:     "0.1.0",
			Author:      builtInAuthor,
			Source:      SourceBuiltIn,
		},
		Render: static(renderMinimal),
	}
}

func renderMinimal(data *profile.Data) string {
	p := data.Profile

	var b strings.Builder
	fmt.Fprintf(&b, "# Hi, I'm %s 👋\n\n", displayName(p))

	if p.Bio != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Bio)
	}
	if p.Location != "" {
		fmt.Fprintf(&b, "📍 %s\n\n", p.Location)
	}
	if p.Company != "" {
		fmt.Fprintf(&b, "🏢 %s\n\n", p.Company)
	}

	b.WriteString("## Stats\n\n")
	b.WriteString("| Metric       | Value |\n")
	b.WriteString("|--------------|-------|\n")
	fmt.Fprintf(&b, "| Public Repos | %d |\n", p.PublicRepos)
	fmt.Fprintf(&b, "| Followers    | %d   |\n\n", p.Followers)

	if len(data.Repos) > 0 {
		b.WriteString("## Top Repositories\n\n")

		for _, repo := range topByStars(data.Repos, 5) {
			fmt.Fprintf(&b, "### [%s](%s)\n", repo.Name, repo.URL)
			if repo.Description != "" {
				fmt.Fprintf(&b, "%s\n\n", repo.Description)
			}
			fmt.Fprintf(&b, "⭐ %d • 🍴 %d\n\n", repo.Stars, repo.Forks)
		}
	}

	return strings.TrimSpace(b.String())
}

// topByStars sorts a copy of repos by stars and keeps the first limit
func topByStars(repos []profile.Repository, limit int) []profile.Repository {
	sorted := profile.SortByStars(repos)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
