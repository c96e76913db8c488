// Package skills discovers skill snippets stored as *.skill.md files.
// Each file may start with a "---" delimited header carrying a name and a
// description. The first file prefixed with "00-" is the control skill that
// gets appended to every other skill's payload.
package skills

import "strings"

const (
	// FileSuffix is the compound suffix every skill file carries
	FileSuffix = ".skill.md"
	// ControlPrefix marks the control skill
	ControlPrefix = "00-"
)

// Skill represents one parsed skill file
type Skill struct {
	Name        string // From the name: header, else the filename
	Description string // From the description: header, else empty
	Filename    string // Base name of the source file
	Path        string // Full path of the source file
	Content     string // Full raw content, header included
}

// IsControl reports whether the filename carries the control prefix. Only
// the first such file of a scan is the control skill, see ScanResult.Control.
func (s *Skill) IsControl() bool {
	return strings.HasPrefix(s.Filename, ControlPrefix)
}

// Slug returns the filename without the skill suffix
func (s *Skill) Slug() string {
	return strings.TrimSuffix(s.Filename, FileSuffix)
}

// Body returns the skill content with the header stripped
func (s *Skill) Body() string {
	return Body(s.Content)
}
