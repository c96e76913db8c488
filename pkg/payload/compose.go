// Package payload assembles the text that gets pasted into a chat surface:
// the selected skill's body under a short label, followed by the control
// skill squeezed into a one-line italic footnote.
package payload

import (
	"strings"

	"github.com/jingkaihe/aiskills/pkg/skills"
)

// Options controls payload composition
type Options struct {
	// IncludeControl appends the control skill footnote when one exists
	IncludeControl bool
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{IncludeControl: true}
}

// Compose builds the payload for the selected skill. The control skill is
// appended only when it exists, differs from the selection and opts allow it.
func Compose(result *skills.ScanResult, selected *skills.Skill, opts Options) string {
	var b strings.Builder

	b.WriteString("**⚡ ")
	b.WriteString(selected.Name)
	b.WriteString("**\n\n")
	b.WriteString(selected.Body())
	b.WriteString("\n\n")

	if footnote := controlFootnote(result, selected, opts); footnote != "" {
		b.WriteString("---\n_")
		b.WriteString(footnote)
		b.WriteString("_\n")
	}

	return b.String()
}

func controlFootnote(result *skills.ScanResult, selected *skills.Skill, opts Options) string {
	if !opts.IncludeControl || result == nil {
		return ""
	}

	control := result.Control()
	if control == nil || control == selected || control.Filename == selected.Filename {
		return ""
	}

	return Flatten(control.Body())
}
