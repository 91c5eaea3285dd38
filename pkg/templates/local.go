package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/harun/ghprofile/pkg/profile"
)

// Files every local template directory must contain
const (
	MetaFile     = "meta.json"
	TemplateFile = "template.md"
)

var requiredMetaFields = []string{"id", "name", "description", "category", "version"}

// funcs are available to local templates
var funcs = template.FuncMap{
	"default": func(def, val string) string {
		if val == "" {
			return def
		}
		return val
	},
	"join":   strings.Join,
	"lower":  strings.ToLower,
	"upper":  strings.ToUpper,
	"trim":   strings.TrimSpace,
	"repeat": strings.Repeat,
	"comma":  func(n int) string { return humanize.Comma(int64(n)) },
}

// LoadLocal loads every template directory under dir. Directories missing
// required files, with invalid metadata or unparsable templates are logged
// and skipped. A missing dir yields no templates.
func LoadLocal(dir string, logger zerolog.Logger) []*Template {
	log := logger.With().Str("component", "template-loader").Logger()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("dir", dir).Msg("Templates directory not found")
		} else {
			log.Error().Err(err).Str("dir", dir).Msg("Failed to read templates directory")
		}
		return nil
	}

	var templates []*Template
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		templateDir := filepath.Join(dir, entry.Name())
		t, err := loadTemplate(templateDir)
		if err != nil {
			log.Warn().Err(err).Str("dir", templateDir).Msg("Skipping local template")
			continue
		}
		templates = append(templates, t)
	}
	return templates
}

// RegisterLocal loads templates from dir into the registry and returns how
// many were added. Templates clashing with a registered id are skipped.
func (r *Registry) RegisterLocal(dir string, logger zerolog.Logger) int {
	added := 0
	for _, t := range LoadLocal(dir, logger) {
		if err := r.Register(t, false); err != nil {
			logger.Warn().Err(err).Str("template", t.Metadata.ID).Msg("Skipping local template")
			continue
		}
		added++
	}
	return added
}

func loadTemplate(dir string) (*Template, error) {
	metaPath := filepath.Join(dir, MetaFile)
	bodyPath := filepath.Join(dir, TemplateFile)

	for _, path := range []string{metaPath, bodyPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("invalid template structure: missing %s", filepath.Base(path))
		}
	}

	meta, err := readMetadata(metaPath)
	if err != nil {
		return nil, err
	}
	meta.Source = SourceLocal
	meta.Path = dir

	body, err := os.ReadFile(bodyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TemplateFile, err)
	}

	tmpl, err := template.New(meta.ID).Funcs(funcs).Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", TemplateFile, err)
	}

	return &Template{
		Metadata: meta,
		Render: func(data *profile.Data) (string, error) {
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, data); err != nil {
				return "", fmt.Errorf("failed to render template %s: %w", meta.ID, err)
			}
			return buf.String(), nil
		},
	}, nil
}

func readMetadata(path string) (Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(content, &fields); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}

	var missing []string
	for _, field := range requiredMetaFields {
		if _, ok := fields[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return Metadata{}, fmt.Errorf("invalid template metadata: missing required fields: %s", strings.Join(missing, ", "))
	}

	var meta Metadata
	if err := json.Unmarshal(content, &meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return meta, nil
}
