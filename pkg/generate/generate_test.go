package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/ghprofile/pkg/github"
	"github.com/harun/ghprofile/pkg/output"
	"github.com/harun/ghprofile/pkg/plugin"
	"github.com/harun/ghprofile/pkg/plugin/builtin"
	"github.com/harun/ghprofile/pkg/profile"
	"github.com/harun/ghprofile/pkg/templates"
)

type fakeClient struct {
	data  *github.Data
	err   error
	calls int
}

func (f *fakeClient) FetchAll(_ context.Context, login string) (*github.Data, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	data := *f.data
	data.User.Login = login
	return &data, nil
}

func testClient() *fakeClient {
	return &fakeClient{data: &github.Data{
		User: github.User{
			Name:     "The Octocat",
			Location: "San Francisco",
			HTMLURL:  "https://github.com/octocat",
		},
		Repos: []github.Repo{
			{Name: "hello-world", HTMLURL: "https://github.com/octocat/hello-world", Language: "Go", StargazersCount: 42},
			{Name: "dotfiles", HTMLURL: "https://github.com/octocat/dotfiles", Language: "Shell", StargazersCount: 1},
		},
	}}
}

// echoTemplate renders the user name and each repo name on its own line
func echoTemplates(t *testing.T) *templates.Registry {
	t.Helper()
	reg := templates.NewRegistry()
	require.NoError(t, reg.Register(&templates.Template{
		Metadata: templates.Metadata{ID: "echo", Name: "Echo", Category: templates.CategoryMinimal, Version: "1.0.0"},
		Render: func(data *profile.Data) (string, error) {
			lines := []string{"# " + data.Profile.Name}
			for _, repo := range data.Repos {
				lines = append(lines, repo.Name)
			}
			return strings.Join(lines, "\n"), nil
		},
	}, false))
	return reg
}

func suffix(id, text string) *plugin.Plugin {
	return &plugin.Plugin{
		Metadata: plugin.Metadata{ID: id, Name: id, Description: id, Version: "1.0.0", Author: "tester"},
		Render: func(_ context.Context, content string, _ *profile.Data) (string, error) {
			return content + text, nil
		},
	}
}

type recorder struct {
	mu          sync.Mutex
	generations []error
	assets      int
	enabled     int
}

func (r *recorder) ObserveGeneration(_ string, err error, _ time.Duration, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations = append(r.generations, err)
}

func (r *recorder) ObserveAssets(n int)     { r.assets += n }
func (r *recorder) SetPluginsEnabled(n int) { r.enabled = n }

func TestGenerate(t *testing.T) {
	t.Run("runs every phase in order", func(t *testing.T) {
		reg := plugin.NewRegistry(zerolog.Nop())
		reg.Register(&plugin.Plugin{
			Metadata: plugin.Metadata{ID: "upper", Name: "upper", Description: "upper", Version: "1.0.0", Author: "tester"},
			BeforeRender: func(_ context.Context, pc *plugin.Context) error {
				pc.Data.Profile.Name = strings.ToUpper(pc.Data.Profile.Name)
				return nil
			},
			AfterRender: func(_ context.Context, content string, _ *profile.Data) (string, error) {
				return content + "\n<!-- done -->", nil
			},
		})
		reg.Register(suffix("sig", "\n-- sig"))

		rec := &recorder{}
		gen := NewGenerator(testClient(), echoTemplates(t), zerolog.Nop(), WithRecorder(rec))

		out, err := gen.Generate(context.Background(), Request{Username: "octocat", TemplateID: "echo", Plugins: reg})
		require.NoError(t, err)
		assert.Equal(t, "# THE OCTOCAT\nhello-world\ndotfiles\n-- sig\n<!-- done -->", out)
		assert.Equal(t, []error{nil}, rec.generations)
		assert.Equal(t, 2, rec.enabled)
		assert.True(t, reg.IsInitialized())
	})

	t.Run("applies repository filters", func(t *testing.T) {
		gen := NewGenerator(testClient(), echoTemplates(t), zerolog.Nop())

		out, err := gen.Generate(context.Background(), Request{
			Username:   "octocat",
			TemplateID: "echo",
			Filter:     profile.Options{ExcludeRepos: []string{"dotfiles"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "# The Octocat\nhello-world", out)
	})

	t.Run("unknown template fails before fetching", func(t *testing.T) {
		client := testClient()
		rec := &recorder{}
		gen := NewGenerator(client, echoTemplates(t), zerolog.Nop(), WithRecorder(rec))

		_, err := gen.Generate(context.Background(), Request{Username: "octocat", TemplateID: "nope"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, templates.ErrTemplateNotFound))
		assert.Equal(t, 0, client.calls)
		require.Len(t, rec.generations, 1)
		assert.Error(t, rec.generations[0])
	})

	t.Run("fetch errors are wrapped", func(t *testing.T) {
		client := &fakeClient{err: github.ErrUserNotFound}
		gen := NewGenerator(client, echoTemplates(t), zerolog.Nop())

		_, err := gen.Generate(context.Background(), Request{Username: "ghost", TemplateID: "echo"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, github.ErrUserNotFound))
	})

	t.Run("failing plugin does not stop the run", func(t *testing.T) {
		reg := plugin.NewRegistry(zerolog.Nop())
		reg.Register(&plugin.Plugin{
			Metadata: plugin.Metadata{ID: "broken", Name: "broken", Description: "broken", Version: "1.0.0", Author: "tester"},
			Render: func(context.Context, string, *profile.Data) (string, error) {
				return "", errors.New("boom")
			},
		})
		reg.Register(suffix("after", "!"))

		gen := NewGenerator(testClient(), echoTemplates(t), zerolog.Nop())
		out, err := gen.Generate(context.Background(), Request{Username: "octocat", TemplateID: "echo", Plugins: reg})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(out, "dotfiles!"))
	})

	t.Run("plugin config reaches init", func(t *testing.T) {
		var seen map[string]any
		reg := plugin.NewRegistry(zerolog.Nop())
		reg.Register(&plugin.Plugin{
			Metadata: plugin.Metadata{ID: "cfg", Name: "cfg", Description: "cfg", Version: "1.0.0", Author: "tester"},
			Init: func(_ context.Context, opts plugin.Options) error {
				seen = opts.Config
				return nil
			},
		})

		gen := NewGenerator(testClient(), echoTemplates(t), zerolog.Nop())
		_, err := gen.Generate(context.Background(), Request{
			Username:     "octocat",
			TemplateID:   "echo",
			Plugins:      reg,
			PluginConfig: map[string]map[string]any{"cfg": {"limit": 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"limit": 2}, seen)
	})

	t.Run("built-in plugins on a built-in template", func(t *testing.T) {
		reg := plugin.NewRegistry(zerolog.Nop())
		for _, p := range builtin.All() {
			reg.Register(p)
		}

		gen := NewGenerator(testClient(), templates.NewRegistry(), zerolog.Nop())
		out, err := gen.Generate(context.Background(), Request{Username: "octocat", TemplateID: "default", Plugins: reg})
		require.NoError(t, err)
		assert.Contains(t, out, "## Connect")
		assert.Contains(t, out, "## Featured Projects")
		assert.Contains(t, out, "## GitHub Stats")
		assert.Less(t, strings.Index(out, "## Connect"), strings.Index(out, "## GitHub Stats"))
	})
}

type staticFetcher struct{}

func (staticFetcher) Fetch(context.Context, string) ([]byte, error) {
	return []byte("img"), nil
}

func TestRun(t *testing.T) {
	t.Run("writes output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "README.md")
		gen := NewGenerator(testClient(), echoTemplates(t), zerolog.Nop())

		result, err := gen.Run(context.Background(), RunRequest{
			Request: Request{Username: "octocat", TemplateID: "echo"},
			Output:  path,
		})
		require.NoError(t, err)
		assert.Equal(t, path, result.Path)
		assert.False(t, result.Overwritten)
		assert.NotEmpty(t, result.RunID)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "# The Octocat\nhello-world\ndotfiles", string(content))
	})

	t.Run("respects overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "README.md")
		require.NoError(t, os.WriteFile(path, []byte("keep"), 0644))
		gen := NewGenerator(testClient(), echoTemplates(t), zerolog.Nop())

		_, err := gen.Run(context.Background(), RunRequest{
			Request: Request{Username: "octocat", TemplateID: "echo"},
			Output:  path,
		})
		assert.True(t, errors.Is(err, output.ErrFileExists))

		result, err := gen.Run(context.Background(), RunRequest{
			Request:   Request{Username: "octocat", TemplateID: "echo"},
			Output:    path,
			Overwrite: true,
		})
		require.NoError(t, err)
		assert.True(t, result.Overwritten)
	})

	t.Run("localizes assets", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "README.md")

		tmpl := templates.NewRegistry()
		require.NoError(t, tmpl.Register(&templates.Template{
			Metadata: templates.Metadata{ID: "badge", Name: "Badge", Category: templates.CategoryMinimal, Version: "1.0.0"},
			Render: func(*profile.Data) (string, error) {
				return "![stars](https://img.shields.io/badge/stars-42-blue)", nil
			},
		}, false))

		rec := &recorder{}
		gen := NewGenerator(testClient(), tmpl, zerolog.Nop(), WithAssetFetcher(staticFetcher{}), WithRecorder(rec))
		result, err := gen.Run(context.Background(), RunRequest{
			Request:     Request{Username: "octocat", TemplateID: "badge"},
			Output:      path,
			LocalAssets: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Assets)
		assert.Equal(t, 1, rec.assets)

		name := output.AssetName("https://img.shields.io/badge/stars-42-blue")
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "![stars](./assets/"+name+")", string(content))
		assert.FileExists(t, filepath.Join(dir, "assets", name))
	})
}
