package builtin

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/harun/ghprofile/pkg/plugin"
	"github.com/harun/ghprofile/pkg/profile"
)

const (
	maxLanguageBars = 8
	barWidth        = 25
)

// Stats appends a "GitHub Stats" table and a language breakdown
func Stats() *plugin.Plugin {
	return &plugin.Plugin{
		Metadata: plugin.Metadata{
			ID:          "stats",
			Name:        "GitHub Stats",
			Description: "Adds GitHub statistics to your profile",
			Version:     "1.0.0",
			Author:      author,
		},
		Render: renderStats,
	}
}

func renderStats(_ context.Context, content string, data *profile.Data) (string, error) {
	if data == nil {
		return content, nil
	}

	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n## GitHub Stats\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Repositories | %s |\n", humanize.Comma(int64(data.Stats.TotalRepos)))
	fmt.Fprintf(&b, "| Stars | %s |\n", humanize.Comma(int64(data.Stats.TotalStars)))
	fmt.Fprintf(&b, "| Followers | %s |\n", humanize.Comma(int64(data.Profile.Followers)))
	fmt.Fprintf(&b, "| Following | %s |\n\n", humanize.Comma(int64(data.Profile.Following)))

	if len(data.Stats.Languages) > 0 {
		b.WriteString("### Languages\n\n")
		b.WriteString(LanguageBars(data.Stats.Languages))
	}

	return b.String(), nil
}

// LanguageBars renders up to eight languages as fixed-width bars scaled to the
// most used language
func LanguageBars(languages []profile.LanguageStats) string {
	langs := slices.Clone(languages)
	slices.SortStableFunc(langs, func(a, b profile.LanguageStats) int {
		return b.Percentage - a.Percentage
	})
	if len(langs) > maxLanguageBars {
		langs = langs[:maxLanguageBars]
	}

	maxCount := 0
	for _, lang := range languages {
		maxCount = max(maxCount, lang.Count)
	}
	if maxCount == 0 {
		return ""
	}

	var b strings.Builder
	for _, lang := range langs {
		width := int(math.Round(float64(lang.Count) / float64(maxCount) * barWidth))
		width = min(max(width, 0), barWidth)
		bar := strings.Repeat("█", width) + strings.Repeat("░", barWidth-width)
		fmt.Fprintf(&b, "`%-12s` %s %d%%\n", lang.Name, bar, lang.Percentage)
	}
	return b.String()
}
