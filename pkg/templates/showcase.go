package templates

import (
	"fmt"
	"math"
	"strings"

	"github.com/harun/ghprofile/pkg/profile"
)

// Showcase renders a feature-rich README around featured projects
func Showcase() *Template {
	return &Template{
		Metadata: Metadata{
			ID:          "showcase",
			Name:        "Showcase",
			Description: "A feature-rich template highlighting your best work",
			Category:    CategoryShowcase,
			Version:     "1.0.0",
			Author:      builtInAuthor,
			Source:      SourceBuiltIn,
		},
		Render: static(renderShowcase),
	}
}

func renderShowcase(data *profile.Data) string {
	p, stats := data.Profile, data.Stats

	var b strings.Builder
	fmt.Fprintf(&b, `<h1 align="center">Hi 👋, I'm %s</h1>`, displayName(p))
	if p.Bio != "" {
		fmt.Fprintf(&b, "\n<h3 align=\"center\">%s</h3>\n\n", p.Bio)
	}

	b.WriteString("\n## About Me\n\n")
	var about []string
	if p.Location != "" {
		about = append(about, fmt.Sprintf("🌍 Based in **%s**", p.Location))
	}
	if p.Company != "" {
		about = append(about, fmt.Sprintf("💼 Currently working at **%s**", p.Company))
	}
	if p.Blog != "" {
		about = append(about, fmt.Sprintf("🌐 Visit my [website](%s)", p.Blog))
	}
	if p.Twitter != "" {
		about = append(about, fmt.Sprintf("🐦 Follow me on [Twitter](https://twitter.com/%s)", p.Twitter))
	}
	if p.Email != "" {
		about = append(about, fmt.Sprintf("✉️ Contact me at [%s](mailto:%s)", p.Email, p.Email))
	}
	b.WriteString(strings.Join(about, "\n\n"))
	b.WriteString("\n\n")

	b.WriteString("## Stats\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Repositories | %d |\n", stats.TotalRepos)
	fmt.Fprintf(&b, "| Stars Earned | %d |\n", stats.TotalStars)
	fmt.Fprintf(&b, "| Forks | %d |\n", stats.TotalForks)
	fmt.Fprintf(&b, "| Followers | %d |\n", p.Followers)
	fmt.Fprintf(&b, "| Following | %d |\n\n", p.Following)

	if len(stats.Languages) > 0 {
		b.WriteString("## Technologies\n\n")
		for _, lang := range stats.Languages {
			// One block per five percent, twenty at most.
			blocks := min(max(int(math.Round(float64(lang.Percentage)/5)), 0), 20)
			bar := strings.Repeat("█", blocks)
			fmt.Fprintf(&b, "%s %s %d%%\n", lang.Name, bar, lang.Percentage)
		}
		b.WriteString("\n")
	}

	if len(stats.TopRepos) > 0 {
		b.WriteString("## Featured Projects\n\n")
		for _, repo := range firstN(stats.TopRepos, 4) {
			fmt.Fprintf(&b, "### ⭐ [%s](%s)\n\n", repo.Name, repo.URL)
			if repo.Description != "" {
				fmt.Fprintf(&b, "> %s\n\n", repo.Description)
			}

			var facts []string
			if repo.Stars > 0 {
				facts = append(facts, fmt.Sprintf("⭐ %d stars", repo.Stars))
			}
			if repo.Forks > 0 {
				facts = append(facts, fmt.Sprintf("🍴 %d forks", repo.Forks))
			}
			if repo.Watchers > 0 {
				facts = append(facts, fmt.Sprintf("👀 %d watchers", repo.Watchers))
			}
			if repo.Language != "" {
				facts = append(facts, "💻 "+repo.Language)
			}
			b.WriteString(strings.Join(facts, " · "))
			b.WriteString("\n\n")

			if len(repo.Topics) > 0 {
				b.WriteString(backticked(repo.Topics))
				b.WriteString("\n\n")
			}
		}
	}

	if len(stats.RecentRepos) > 0 {
		b.WriteString("## Recent Activity\n\n")
		for _, repo := range firstN(stats.RecentRepos, 3) {
			fmt.Fprintf(&b, "- 📦 Pushed to [%s](%s) on %s\n", repo.Name, repo.URL, repo.PushedAt.Format("Jan 2, 2006"))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, `<p align="center"><a href="%s">View GitHub Profile</a></p>`+"\n", p.ProfileURL)

	return b.String()
}

func firstN(repos []profile.Repository, n int) []profile.Repository {
	if len(repos) > n {
		return repos[:n]
	}
	return repos
}

func backticked(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "`" + v + "`"
	}
	return strings.Join(quoted, " ")
}
