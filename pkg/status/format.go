package status

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
)

// FileFormatter defines how per-file outcomes should be formatted for display
type FileFormatter interface {
	// FormatFileOutcome formats a terminal copy-task outcome
	FormatFileOutcome(res FileResult) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOutcome formats a copy-task outcome with a colored prefix symbol
func (f *DefaultFileFormatter) FormatFileOutcome(res FileResult) string {
	name := filepath.Base(res.Destination)

	switch res.Outcome {
	case OutcomeCopied:
		return fmt.Sprintf("%s %s (%d bytes)", color.GreenString("✓"), name, res.Bytes)
	case OutcomeSkipped:
		return fmt.Sprintf("%s %s", color.HiBlackString("-"), name)
	case OutcomeFailed:
		return fmt.Sprintf("%s %s", color.RedString("✗"), name)
	default:
		return fmt.Sprintf("? %s", name)
	}
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
