package templates

import (
	"fmt"
	"strings"
	"time"

	"github.com/harun/ghprofile/pkg/profile"
)

const builtInAuthor = "gh-profile"

// BuiltIns returns the templates shipped with gh-profile. now feeds the
// time-dependent sections of stats-heavy.
func BuiltIns(now func() time.Time) []*Template {
	return []*Template{
		Default(),
		Minimal(),
		Showcase(),
		StatsHeavy(now),
	}
}

// Default renders a balanced README: header, about, stats, languages, top
// repositories and a footer.
func Default() *Template {
	return &Template{
		Metadata: Metadata{
			ID:          "default",
			Name:        "Default",
			Description: "A balanced profile with stats, languages and top repositories",
			Category:    CategoryGeneric,
			Version:     "1.0.0",
			Author:      builtInAuthor,
			Source:      SourceBuiltIn,
		},
		Render: static(renderDefault),
	}
}

func renderDefault(data *profile.Data) string {
	sections := []string{
		defaultHeader(data.Profile),
		defaultAbout(data.Profile),
		defaultStats(data),
		defaultLanguages(data.Stats.Languages),
		defaultTopRepos(data.Stats.TopRepos),
		defaultFooter(data.Profile),
	}

	nonEmpty := sections[:0]
	for _, section := range sections {
		if section != "" {
			nonEmpty = append(nonEmpty, section)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

func defaultHeader(p profile.Profile) string {
	lines := []string{fmt.Sprintf("# Hi, I'm %s 👋", displayName(p)), ""}
	if p.Bio != "" {
		lines = append(lines, p.Bio, "")
	}
	return strings.Join(lines, "\n")
}

func defaultAbout(p profile.Profile) string {
	var items []string
	if p.Location != "" {
		items = append(items, "📍 "+p.Location)
	}
	if p.Company != "" {
		items = append(items, "🏢 "+p.Company)
	}
	if p.Blog != "" {
		items = append(items, fmt.Sprintf("🔗 [%s](%s)", p.Blog, p.Blog))
	}
	if p.Twitter != "" {
		items = append(items, fmt.Sprintf("🐦 [@%s](https://twitter.com/%s)", p.Twitter, p.Twitter))
	}
	if len(items) == 0 {
		return ""
	}

	lines := []string{"## About", ""}
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func defaultStats(data *profile.Data) string {
	lines := []string{
		"## Stats",
		"",
		"| Metric | Count |",
		"|--------|-------|",
		fmt.Sprintf("| Public Repos | %d |", data.Profile.PublicRepos),
		fmt.Sprintf("| Total Stars | %d |", data.Stats.TotalStars),
		fmt.Sprintf("| Total Forks | %d |", data.Stats.TotalForks),
		fmt.Sprintf("| Followers | %d |", data.Profile.Followers),
		fmt.Sprintf("| Following | %d |", data.Profile.Following),
		"",
	}
	return strings.Join(lines, "\n")
}

func defaultLanguages(languages []profile.LanguageStats) string {
	if len(languages) == 0 {
		return ""
	}
	if len(languages) > 8 {
		languages = languages[:8]
	}

	lines := []string{"## Languages", ""}
	for _, lang := range languages {
		lines = append(lines, fmt.Sprintf("- **%s**: %d repos (%d%%)", lang.Name, lang.Count, lang.Percentage))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func defaultRepoCard(repo profile.Repository) string {
	lines := []string{fmt.Sprintf("### [%s](%s)", repo.Name, repo.URL)}
	if repo.Description != "" {
		lines = append(lines, repo.Description)
	}

	var badges []string
	if repo.Language != "" {
		badges = append(badges, "`"+repo.Language+"`")
	}
	badges = append(badges, fmt.Sprintf("⭐ %d", repo.Stars), fmt.Sprintf("🍴 %d", repo.Forks))

	lines = append(lines, "", strings.Join(badges, " • "))
	return strings.Join(lines, "\n")
}

func defaultTopRepos(repos []profile.Repository) string {
	if len(repos) == 0 {
		return ""
	}

	lines := []string{"## Top Repositories", ""}
	for _, repo := range repos {
		lines = append(lines, defaultRepoCard(repo), "")
	}
	return strings.Join(lines, "\n")
}

func defaultFooter(p profile.Profile) string {
	return fmt.Sprintf("---\n\n📫 Find me on [GitHub](%s)", p.ProfileURL)
}

func displayName(p profile.Profile) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Username
}
