package plugin

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/harun/ghprofile/pkg/profile"
)

func testMetadata(id string) Metadata {
	return Metadata{
		ID:          id,
		Name:        "Plugin " + id,
		Description: "test plugin " + id,
		Version:     "1.0.0",
		Author:      "tester",
	}
}

// appender appends "-<id>" to the content during render
func appender(id string) *Plugin {
	return &Plugin{
		Metadata: testMetadata(id),
		Render: func(_ context.Context, content string, _ *profile.Data) (string, error) {
			return content + "-" + id, nil
		},
	}
}

func failingRender(id string) *Plugin {
	return &Plugin{
		Metadata: testMetadata(id),
		Render: func(context.Context, string, *profile.Data) (string, error) {
			return "", errors.New("boom")
		},
	}
}

func testData() *profile.Data {
	return &profile.Data{
		Profile: profile.Profile{Username: "octocat", Name: "The Octocat"},
		Repos: []profile.Repository{
			{Name: "hello-world", Stars: 10, Topics: []string{"demo"}},
		},
		Stats: profile.Stats{TotalStars: 10, TotalRepos: 1},
	}
}

type observation struct {
	pluginID string
	hook     Hook
	outcome  Outcome
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []observation
}

func (o *recordingObserver) ObserveHook(pluginID string, hook Hook, outcome Outcome, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observation{pluginID: pluginID, hook: hook, outcome: outcome})
}
