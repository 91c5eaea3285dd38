package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"

	"github.com/harun/ghprofile/internal/config"
	"github.com/harun/ghprofile/pkg/github"
	"github.com/harun/ghprofile/pkg/output"
	"github.com/harun/ghprofile/pkg/plugin"
	"github.com/harun/ghprofile/pkg/templates"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitGeneral         = 1
	ExitInvalidArgument = 2
	ExitValidation      = 3
	ExitNetwork         = 4
	ExitFilesystem      = 5
)

// usageError marks bad flags or arguments
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error returned by a command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *usageError
	if errors.As(err, &usage) || errors.Is(err, templates.ErrTemplateNotFound) {
		return ExitInvalidArgument
	}

	var validation *plugin.ValidationError
	if errors.Is(err, config.ErrInvalidConfig) || errors.As(err, &validation) {
		return ExitValidation
	}

	var apiErr *github.APIError
	var urlErr *url.Error
	var netErr net.Error
	if errors.Is(err, github.ErrUserNotFound) || errors.As(err, &apiErr) ||
		errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return ExitNetwork
	}

	var pathErr *fs.PathError
	if errors.Is(err, output.ErrFileExists) || errors.As(err, &pathErr) {
		return ExitFilesystem
	}

	return ExitGeneral
}
