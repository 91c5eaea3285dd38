package templates

import (
	"fmt"
	"regexp"

	"github.com/harun/ghprofile/pkg/profile"
)

const redacted = "[REDACTED]"

var (
	// Labelled lines such as "email: a@b.c" lose everything after the label
	sensitiveLines = regexp.MustCompile(`(?im)\b(email|location|phone|address|private):.*$`)

	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// Preview renders t with data and redacts personal details
func Preview(t *Template, data *profile.Data) (string, error) {
	if t == nil || t.Render == nil {
		return "", fmt.Errorf("failed to generate preview: template has no render function")
	}

	out, err := t.Render(data)
	if err != nil {
		return "", fmt.Errorf("failed to generate preview: %w", err)
	}
	return Sanitize(out), nil
}

// Sanitize redacts labelled sensitive fields and bare email addresses
func Sanitize(content string) string {
	content = sensitiveLines.ReplaceAllString(content, "${1}: "+redacted)
	return emailPattern.ReplaceAllString(content, redacted)
}
