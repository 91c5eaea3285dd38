// Package templates holds the README templates gh-profile can render.
package templates

import (
	"errors"

	"github.com/harun/ghprofile/pkg/profile"
)

var (
	// ErrTemplateNotFound is returned when no template has the requested id
	ErrTemplateNotFound = errors.New("template not found")

	// ErrDuplicateTemplate is returned when a template id is registered twice
	ErrDuplicateTemplate = errors.New("template already registered")
)

// Category groups templates for listing
type Category string

const (
	CategoryDeveloper Category = "developer"
	CategoryDesigner  Category = "designer"
	CategoryFounder   Category = "founder"
	CategoryGeneric   Category = "generic"
	CategoryMinimal   Category = "minimal"
	CategoryShowcase  Category = "showcase"
)

// Categories lists every valid category
var Categories = []Category{
	CategoryDeveloper,
	CategoryDesigner,
	CategoryFounder,
	CategoryGeneric,
	CategoryMinimal,
	CategoryShowcase,
}

// ValidCategory reports whether c is a known category
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Source says where a template came from
type Source string

const (
	SourceBuiltIn Source = "built-in"
	SourceLocal   Source = "local"
)

// Metadata describes a template
type Metadata struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Category    Category `json:"category" yaml:"category"`
	Version     string   `json:"version" yaml:"version"`
	Author      string   `json:"author,omitempty" yaml:"author,omitempty"`
	Source      Source   `json:"source,omitempty" yaml:"source,omitempty"`
	// Path is the template directory for local templates
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// RenderFunc turns normalized profile data into markdown
type RenderFunc func(data *profile.Data) (string, error)

// Template is a named markdown renderer
type Template struct {
	Metadata Metadata
	Render   RenderFunc
}

// ID is shorthand for Metadata.ID
func (t *Template) ID() string {
	return t.Metadata.ID
}

func static(fn func(data *profile.Data) string) RenderFunc {
	return func(data *profile.Data) (string, error) {
		return fn(data), nil
	}
}
