package templates

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/harun/ghprofile/pkg/profile"
)

const statsTheme = "dracula"

// skillIcons maps language names to skillicons.dev ids
var skillIcons = map[string]string{
	"javascript": "js",
	"typescript": "ts",
	"python":     "py",
	"html":       "html",
	"css":        "css",
	"java":       "java",
	"kotlin":     "kotlin",
	"c":          "c",
	"shell":      "bash",
	"go":         "go",
	"rust":       "rust",
}

const defaultTools = "git,docker,vscode,linux,github,gmail,stackoverflow,twitter"

// StatsHeavy renders a data-driven dashboard. now drives account age,
// activity, cache-busting parameters and the footer year.
func StatsHeavy(now func() time.Time) *Template {
	if now == nil {
		now = time.Now
	}
	return &Template{
		Metadata: Metadata{
			ID:          "stats-heavy",
			Name:        "Stats Dashboard",
			Description: "A comprehensive, data-driven dashboard for the analytical developer",
			Category:    CategoryDeveloper,
			Version:     "1.0.0",
			Author:      builtInAuthor,
			Source:      SourceBuiltIn,
		},
		Render: static(func(data *profile.Data) string {
			return renderStatsHeavy(data, now())
		}),
	}
}

func renderStatsHeavy(data *profile.Data, now time.Time) string {
	p, repos, stats := data.Profile, data.Repos, data.Stats
	user := p.Username
	ts := now.UnixMilli()

	var b strings.Builder
	b.WriteString("<div align=\"center\">\n")
	fmt.Fprintf(&b, "  <h1>%s | Analytics Dashboard</h1>\n", displayName(p))
	badges := []string{
		fmt.Sprintf(`<img src="https://img.shields.io/badge/Stars-%d-f59e0b?style=flat-square&logo=github-sponsors&logoColor=white" alt="total stars" />`, stats.TotalStars),
		fmt.Sprintf(`<img src="https://img.shields.io/badge/Followers-%d-0ea5e9?style=flat-square&logo=github&logoColor=white" alt="followers" />`, p.Followers),
		fmt.Sprintf(`<img src="https://komarev.com/ghpvc/?username=%s&label=PROFILE+VIEWS&color=0f172a&style=flat-square" alt="profile views" />`, user),
	}
	fmt.Fprintf(&b, "  <p>%s</p>\n", strings.Join(badges, "&nbsp;&nbsp;"))
	b.WriteString("</div>\n\n")

	b.WriteString("<div align=\"center\">\n")
	fmt.Fprintf(&b, "  <img src=\"https://github-readme-stats-one.vercel.app/api?username=%s&show_icons=true&theme=%s&hide_border=true&count_private=true&t=%d\" alt=\"GitHub Stats\" />\n", user, statsTheme, ts)
	fmt.Fprintf(&b, "  <img src=\"https://github-readme-stats-one.vercel.app/api/top-langs/?username=%s&layout=compact&theme=%s&hide_border=true&langs_count=10&t=%d\" alt=\"Top Languages\" />\n", user, statsTheme, ts)
	b.WriteString("</div>\n\n")

	if len(stats.Languages) > 0 {
		top := stats.Languages
		if len(top) > 5 {
			top = top[:5]
		}
		names := make([]string, len(top))
		for i, lang := range top {
			names[i] = fmt.Sprintf("%s (%d%%)", lang.Name, lang.Percentage)
		}
		fmt.Fprintf(&b, "<p align=\"center\"><strong>Top Languages:</strong> %s</p>\n\n", strings.Join(names, ", "))
	}

	b.WriteString("<div align=\"center\">\n")
	fmt.Fprintf(&b, "  <img src=\"https://github-readme-streak-stats.herokuapp.com/?user=%s&theme=%s&hide_border=true\" alt=\"GitHub Streak\" />\n", user, statsTheme)
	b.WriteString("</div>\n\n<br>\n\n")

	b.WriteString(sectionHeading("Key Metrics", "Stats", "chart-bar", "metrics"))
	b.WriteString("| Metric | Value | Detail |\n")
	b.WriteString("| :--- | :--- | :--- |\n")
	fmt.Fprintf(&b, "| **Account Age** | %s years | Joined %s |\n", accountAge(p.CreatedAt, now), p.CreatedAt.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "| **Total Repos** | %d | %d Original |\n", p.PublicRepos, countOriginal(repos))
	fmt.Fprintf(&b, "| **Community** | %d | %s Ratio |\n\n", p.Followers, ratio(p.Followers, p.Following))

	active := countActive(repos, now)
	b.WriteString(sectionHeading("Repository Insights", "Insights", "git-branch", "insights"))
	b.WriteString("| Aspect | Count | Efficiency |\n")
	b.WriteString("| :--- | :--- | :--- |\n")
	fmt.Fprintf(&b, "| **Total Stars** | %d | %s avg/repo |\n", stats.TotalStars, average(stats.TotalStars, stats.TotalRepos))
	fmt.Fprintf(&b, "| **Total Forks** | %d | %s avg/repo |\n", stats.TotalForks, average(stats.TotalForks, stats.TotalRepos))
	fmt.Fprintf(&b, "| **Active Projects** | %d | %d%% activity |\n\n", active, percentage(active, len(repos)))

	b.WriteString(sectionHeading("Productivity Timeline", "Timeline", "clock", "timeline"))
	b.WriteString("| Year | New Repos | Stars | Forks |\n")
	b.WriteString("| :--- | :--- | :--- | :--- |\n")
	for _, year := range timeline(repos) {
		fmt.Fprintf(&b, "| %d | %d | %d | %d |\n", year.year, year.count, year.stars, year.forks)
	}
	b.WriteString("\n")

	b.WriteString(sectionHeading("Tools & Frameworks", "Tools", "tools", "tools"))
	b.WriteString("<div align=\"center\">\n")
	fmt.Fprintf(&b, "  <img src=\"https://skillicons.dev/icons?i=%s\" alt=\"tools\" />\n", toolsList(data))
	b.WriteString("</div>\n\n<br>\n\n")

	b.WriteString(sectionHeading("Featured Projects", "Projects", "star", "top"))
	b.WriteString("<div align=\"center\">\n")
	for _, repo := range topByStars(repos, 4) {
		fmt.Fprintf(&b, "  <a href=\"%s\">\n", repo.URL)
		fmt.Fprintf(&b, "    <img src=\"https://github-readme-stats-one.vercel.app/api/pin/?username=%s&repo=%s&theme=%s&hide_border=true&t=%d\" alt=\"%s\" />\n", user, repo.Name, statsTheme, ts, repo.Name)
		b.WriteString("  </a>\n")
	}
	b.WriteString("</div>\n\n")

	b.WriteString("<hr>\n\n")
	b.WriteString("<div align=\"center\">\n")
	fmt.Fprintf(&b, "  <sub>Generated with <a href=\"https://github.com/Xclusive09/gh-profile\">gh-profile</a> • %d</sub>\n", now.Year())
	b.WriteString("</div>\n")

	return b.String()
}

func sectionHeading(title, badge, logo, alt string) string {
	return fmt.Sprintf("### %s <img src=\"https://img.shields.io/badge/-%s-0f172a?style=flat-square&logo=%s&logoColor=white\" alt=\"%s\" />\n\n", title, badge, logo, alt)
}

// accountAge is the age in years rounded to one decimal
func accountAge(created, now time.Time) string {
	if created.IsZero() {
		return "0"
	}
	years := now.Sub(created).Hours() / (24 * 365)
	return strconv.FormatFloat(math.Round(years*10)/10, 'f', -1, 64)
}

func ratio(followers, following int) string {
	return fmt.Sprintf("%.2f", float64(followers)/float64(max(following, 1)))
}

func average(total, count int) string {
	return fmt.Sprintf("%.1f", float64(total)/float64(max(count, 1)))
}

func percentage(part, total int) int {
	return int(math.Round(float64(part) / float64(max(total, 1)) * 100))
}

func countOriginal(repos []profile.Repository) int {
	n := 0
	for _, repo := range repos {
		if !repo.IsFork {
			n++
		}
	}
	return n
}

// countActive counts unarchived repositories pushed in the last three months
func countActive(repos []profile.Repository, now time.Time) int {
	cutoff := now.AddDate(0, -3, 0)
	n := 0
	for _, repo := range repos {
		if !repo.IsArchived && repo.PushedAt.After(cutoff) {
			n++
		}
	}
	return n
}

type yearStats struct {
	year                int
	count, stars, forks int
}

// timeline groups repositories by creation year, newest first
func timeline(repos []profile.Repository) []yearStats {
	byYear := make(map[int]*yearStats)
	for _, repo := range repos {
		y := repo.CreatedAt.Year()
		s, ok := byYear[y]
		if !ok {
			s = &yearStats{year: y}
			byYear[y] = s
		}
		s.count++
		s.stars += repo.Stars
		s.forks += repo.Forks
	}

	out := make([]yearStats, 0, len(byYear))
	for _, s := range byYear {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].year > out[j].year })
	return out
}

// toolsList merges declared tools with icons detected from languages
func toolsList(data *profile.Data) string {
	seen := make(map[string]struct{})
	var tools []string
	add := func(tool string) {
		if tool == "" {
			return
		}
		if _, ok := seen[tool]; ok {
			return
		}
		seen[tool] = struct{}{}
		tools = append(tools, tool)
	}

	for _, tool := range data.Tools {
		add(tool)
	}
	for _, lang := range data.Stats.Languages {
		add(skillIcons[strings.ToLower(strings.TrimSpace(lang.Name))])
	}

	if len(tools) == 0 {
		return defaultTools
	}
	return strings.Join(tools, ",")
}
