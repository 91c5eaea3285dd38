package builtin

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/ghprofile/pkg/plugin"
	"github.com/harun/ghprofile/pkg/profile"
)

func sampleData() *profile.Data {
	return &profile.Data{
		Profile: profile.Profile{
			Username:  "octocat",
			Name:      "The Octocat",
			Location:  "San Francisco",
			Blog:      "github.blog",
			Twitter:   "github",
			Followers: 12345,
			Following: 9,
		},
		Stats: profile.Stats{
			TotalRepos: 8,
			TotalStars: 1500,
			Languages: []profile.LanguageStats{
				{Name: "Go", Count: 4, Percentage: 67},
				{Name: "Shell", Count: 2, Percentage: 33},
			},
			TopRepos: []profile.Repository{
				{Name: "alpha", URL: "https://github.com/octocat/alpha", Description: " First ", Stars: 10, Forks: 2, Language: "Go", Topics: []string{"cli", "go"}},
				{Name: "beta", URL: "https://github.com/octocat/beta"},
			},
		},
	}
}

func TestAll(t *testing.T) {
	plugins := All()
	require.Len(t, plugins, 3)
	assert.Equal(t, []string{"socials", "projects", "stats"}, IDs())

	for _, p := range plugins {
		assert.NoError(t, plugin.AssertValid(p), p.ID())
	}
	assert.NotSame(t, All()[1], All()[1])
}

func TestSocials(t *testing.T) {
	p := Socials()

	out, err := p.Render(context.Background(), "# Hi\n", sampleData())
	require.NoError(t, err)
	assert.Equal(t, "# Hi\n\n## Connect\n\n"+
		"**🌍 San Francisco**  ·  "+
		"**🌐 [github.blog](https://github.blog)**  ·  "+
		"**🐦 [@github](https://twitter.com/github)**\n", out)

	t.Run("keeps http blogs", func(t *testing.T) {
		data := &profile.Data{Profile: profile.Profile{Blog: "http://example.com"}}
		out, err := p.Render(context.Background(), "", data)
		require.NoError(t, err)
		assert.Contains(t, out, "[example.com](http://example.com)")
	})

	t.Run("no links leaves content", func(t *testing.T) {
		out, err := p.Render(context.Background(), "body", &profile.Data{})
		require.NoError(t, err)
		assert.Equal(t, "body", out)
	})
}

func TestProjects(t *testing.T) {
	t.Run("renders top repositories", func(t *testing.T) {
		out, err := Projects().Render(context.Background(), "", sampleData())
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(out, "\n## Featured Projects\n\n"))
		assert.Contains(t, out, "### [alpha](https://github.com/octocat/alpha)\n> First\n\n⭐ 10 · 🍴 2 · 💻 Go\n\n`cli` `go`\n\n")
		assert.Contains(t, out, "### [beta](https://github.com/octocat/beta)\n")
	})

	t.Run("honors limit from config", func(t *testing.T) {
		reg := plugin.NewRegistry(zerolog.Nop())
		reg.Register(Projects(), plugin.Options{Config: map[string]any{"limit": float64(1)}})
		reg.Initialize(context.Background(), nil, nil)
		require.True(t, reg.IsEnabled("projects"))

		out, err := plugin.NewRunner(reg, zerolog.Nop()).RunRender(context.Background(), sampleData(), "")
		require.NoError(t, err)
		assert.Contains(t, out, "alpha")
		assert.NotContains(t, out, "beta")
	})

	t.Run("invalid limit disables the plugin", func(t *testing.T) {
		reg := plugin.NewRegistry(zerolog.Nop())
		reg.Register(Projects(), plugin.Options{Config: map[string]any{"limit": "lots"}})
		reg.Initialize(context.Background(), nil, nil)
		assert.False(t, reg.IsEnabled("projects"))
	})

	t.Run("no repositories leaves content", func(t *testing.T) {
		out, err := Projects().Render(context.Background(), "body", &profile.Data{})
		require.NoError(t, err)
		assert.Equal(t, "body", out)
	})
}

func TestToPositiveInt(t *testing.T) {
	for _, raw := range []any{3, int64(3), float64(3)} {
		n, err := toPositiveInt(raw)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	}

	for _, raw := range []any{0, -1, 2.5, "3", nil} {
		_, err := toPositiveInt(raw)
		assert.Error(t, err, "%v", raw)
	}
}

func TestStats(t *testing.T) {
	out, err := Stats().Render(context.Background(), "", sampleData())
	require.NoError(t, err)

	assert.Contains(t, out, "| Repositories | 8 |\n")
	assert.Contains(t, out, "| Stars | 1,500 |\n")
	assert.Contains(t, out, "| Followers | 12,345 |\n")
	assert.Contains(t, out, "### Languages\n\n")
	assert.Contains(t, out, "`Go          ` "+strings.Repeat("█", 25)+" 67%\n")
	assert.Contains(t, out, "`Shell       ` "+strings.Repeat("█", 13)+strings.Repeat("░", 12)+" 33%\n")
}

func TestLanguageBars(t *testing.T) {
	var langs []profile.LanguageStats
	for i := range 10 {
		langs = append(langs, profile.LanguageStats{Name: string(rune('a' + i)), Count: 10 - i, Percentage: 10 - i})
	}

	lines := strings.Split(strings.TrimSuffix(LanguageBars(langs), "\n"), "\n")
	assert.Len(t, lines, 8)
	assert.Empty(t, LanguageBars(nil))
}

func TestLanguageBars_NegativeCounts(t *testing.T) {
	langs := []profile.LanguageStats{
		{Name: "Go", Count: 4, Percentage: 80},
		{Name: "Rust", Count: -1, Percentage: -10},
	}

	var out string
	require.NotPanics(t, func() { out = LanguageBars(langs) })

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], strings.Repeat("█", barWidth))
	assert.Contains(t, lines[1], strings.Repeat("░", barWidth))
	assert.Contains(t, lines[1], "-10%")
}
