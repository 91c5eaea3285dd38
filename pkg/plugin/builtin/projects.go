package builtin

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/harun/ghprofile/pkg/plugin"
	"github.com/harun/ghprofile/pkg/profile"
)

// DefaultProjectLimit caps the featured projects section
const DefaultProjectLimit = profile.DefaultTopRepos

// Projects appends a "Featured Projects" section built from the top
// repositories. Config key "limit" lowers or raises the number shown.
func Projects() *plugin.Plugin {
	var limit atomic.Int64
	limit.Store(DefaultProjectLimit)

	return &plugin.Plugin{
		Metadata: plugin.Metadata{
			ID:          "projects",
			Name:        "Projects Section",
			Description: "Adds a featured projects section to your profile",
			Version:     "1.0.0",
			Author:      author,
		},
		Init: func(_ context.Context, opts plugin.Options) error {
			raw, ok := opts.Config["limit"]
			if !ok {
				return nil
			}
			n, err := toPositiveInt(raw)
			if err != nil {
				return fmt.Errorf("invalid limit: %w", err)
			}
			limit.Store(int64(n))
			return nil
		},
		Render: func(_ context.Context, content string, data *profile.Data) (string, error) {
			return renderProjects(content, data, int(limit.Load())), nil
		},
	}
}

func renderProjects(content string, data *profile.Data, limit int) string {
	if data == nil || len(data.Stats.TopRepos) == 0 {
		return content
	}

	repos := data.Stats.TopRepos
	if len(repos) > limit {
		repos = repos[:limit]
	}

	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n## Featured Projects\n\n")

	for _, repo := range repos {
		fmt.Fprintf(&b, "### [%s](%s)\n", repo.Name, repo.URL)

		if desc := strings.TrimSpace(repo.Description); desc != "" {
			fmt.Fprintf(&b, "> %s\n\n", desc)
		}

		var facts []string
		if repo.Stars > 0 {
			facts = append(facts, fmt.Sprintf("⭐ %d", repo.Stars))
		}
		if repo.Forks > 0 {
			facts = append(facts, fmt.Sprintf("🍴 %d", repo.Forks))
		}
		if repo.Language != "" {
			facts = append(facts, "💻 "+repo.Language)
		}
		if len(facts) > 0 {
			b.WriteString(strings.Join(facts, " · "))
			b.WriteString("\n\n")
		}

		if len(repo.Topics) > 0 {
			topics := make([]string, len(repo.Topics))
			for i, topic := range repo.Topics {
				topics[i] = "`" + topic + "`"
			}
			b.WriteString(strings.Join(topics, " "))
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

// toPositiveInt accepts the numeric shapes JSON, YAML and viper produce
func toPositiveInt(raw any) (int, error) {
	var n int
	switch v := raw.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%v is not a whole number", v)
		}
		n = int(v)
	default:
		return 0, fmt.Errorf("expected a number, got %T", raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%d must be greater than zero", n)
	}
	return n, nil
}
