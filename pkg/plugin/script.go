package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/ghprofile/pkg/profile"
)

// Environment variables exported to every script hook
const (
	EnvHook      = "GH_PROFILE_HOOK"
	EnvPluginID  = "GH_PROFILE_PLUGIN_ID"
	EnvPluginDir = "GH_PROFILE_PLUGIN_DIR"
	EnvConfig    = "GH_PROFILE_CONFIG_"
)

// scriptPlugin executes manifest hook commands through /bin/sh
type scriptPlugin struct {
	manifest *Manifest
	logger   zerolog.Logger

	// options reads the current registry options; nil falls back to the
	// config captured by init
	options func(id string) (Options, bool)

	mu     sync.RWMutex
	config map[string]any
}

// ScriptOption configures a script plugin
type ScriptOption func(*scriptPlugin)

// WithOptionsSource makes render hooks read their config from source, so a
// plugin enabled after Initialize still sees its configuration
func WithOptionsSource(source func(id string) (Options, bool)) ScriptOption {
	return func(s *scriptPlugin) {
		s.options = source
	}
}

// NewScriptPlugin builds a Plugin whose hooks run the manifest's shell
// commands. Script plugins always implement init so they can capture their
// configuration; the init command itself is optional.
//
// Hook protocol:
//   - init: must exit 0
//   - beforeRender: profile data as JSON on stdin; non-empty stdout replaces it
//   - render, afterRender: content on stdin; stdout is the new content, empty
//     stdout keeps the previous content
func NewScriptPlugin(manifest *Manifest, logger zerolog.Logger, opts ...ScriptOption) *Plugin {
	s := &scriptPlugin{
		manifest: manifest,
		logger:   logger.With().Str("component", "script-plugin").Str("plugin_id", manifest.ID).Logger(),
		config:   map[string]any{},
	}
	for _, opt := range opts {
		opt(s)
	}

	p := &Plugin{
		Metadata: manifest.Metadata,
		Init:     s.init,
	}
	if _, ok := manifest.Hooks[string(HookBeforeRender)]; ok {
		p.BeforeRender = s.beforeRender
	}
	if _, ok := manifest.Hooks[string(HookRender)]; ok {
		p.Render = s.contentHook(HookRender)
	}
	if _, ok := manifest.Hooks[string(HookAfterRender)]; ok {
		p.AfterRender = s.contentHook(HookAfterRender)
	}
	return p
}

func (s *scriptPlugin) init(ctx context.Context, opts Options) error {
	s.mu.Lock()
	s.config = cloneConfig(opts.Config)
	s.mu.Unlock()

	if _, ok := s.manifest.Hooks[string(HookInit)]; !ok {
		return nil
	}
	_, err := s.run(ctx, HookInit, nil, opts.Config)
	return err
}

func (s *scriptPlugin) beforeRender(ctx context.Context, pc *Context) error {
	input, err := json.Marshal(pc.Data)
	if err != nil {
		return fmt.Errorf("failed to encode profile data: %w", err)
	}

	output, err := s.run(ctx, HookBeforeRender, input, pc.Config)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(output)) == 0 {
		return nil
	}

	var data profile.Data
	if err := json.Unmarshal(output, &data); err != nil {
		return fmt.Errorf("failed to decode hook output: %w", err)
	}
	pc.Data = &data
	return nil
}

func (s *scriptPlugin) contentHook(hook Hook) RenderFunc {
	return func(ctx context.Context, content string, _ *profile.Data) (string, error) {
		output, err := s.run(ctx, hook, []byte(content), s.currentConfig())
		if err != nil {
			return "", err
		}
		if len(bytes.TrimSpace(output)) == 0 {
			return "", ErrUnchanged
		}
		return string(output), nil
	}
}

func (s *scriptPlugin) currentConfig() map[string]any {
	if s.options != nil {
		if opts, ok := s.options(s.manifest.ID); ok {
			return opts.Config
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *scriptPlugin) run(ctx context.Context, hook Hook, stdin []byte, config map[string]any) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	runCtx, cancel := context.WithTimeout(ctx, s.manifest.HookTimeout())
	defer cancel()

	cmd := exec.CommandContext(runCtx, "/bin/sh", "-c", s.manifest.Hooks[string(hook)])
	cmd.Dir = s.manifest.Dir
	cmd.WaitDelay = time.Second
	cmd.Env = buildHookEnvironment(s.manifest, hook, config)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	errText := strings.TrimSpace(stderr.String())
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s hook timed out after %s", hook, s.manifest.HookTimeout())
		}
		if errText != "" {
			return nil, fmt.Errorf("%s hook failed: %w: %s", hook, err, errText)
		}
		return nil, fmt.Errorf("%s hook failed: %w", hook, err)
	}

	if errText != "" {
		s.logger.Debug().
			Str("hook", string(hook)).
			Str("stderr", errText).
			Msg("Script hook executed")
	}

	return stdout.Bytes(), nil
}

func buildHookEnvironment(manifest *Manifest, hook Hook, config map[string]any) []string {
	env := append([]string{}, os.Environ()...)
	env = append(env,
		EnvHook+"="+string(hook),
		EnvPluginID+"="+manifest.ID,
		EnvPluginDir+"="+manifest.Dir,
	)

	for _, key := range sortedKeys(config) {
		env = append(env, EnvConfig+normalizeEnvKey(key)+"="+envValue(config[key]))
	}
	return env
}

func envValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func normalizeEnvKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "UNKNOWN"
	}

	upper := strings.ToUpper(key)
	builder := strings.Builder{}
	builder.Grow(len(upper))
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
			continue
		}
		builder.WriteRune('_')
	}
	return builder.String()
}
