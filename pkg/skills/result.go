package skills

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// ScanResult holds the skills found in one directory, in filename order
type ScanResult struct {
	Dir    string
	Skills []*Skill
}

// Control returns the first skill carrying the control prefix, or nil
func (r *ScanResult) Control() *Skill {
	for _, s := range r.Skills {
		if s.IsControl() {
			return s
		}
	}
	return nil
}

// Selectable returns the skills offered for selection: everything but the
// control skill. Further 00- files are ordinary skills.
func (r *ScanResult) Selectable() []*Skill {
	control := r.Control()
	selectable := make([]*Skill, 0, len(r.Skills))
	for _, s := range r.Skills {
		if s != control {
			selectable = append(selectable, s)
		}
	}
	return selectable
}

// FindByName looks up a selectable skill by name (case-insensitive),
// filename, or filename without the skill suffix
func (r *ScanResult) FindByName(name string) (*Skill, error) {
	for _, s := range r.Selectable() {
		if strings.EqualFold(s.Name, name) || s.Filename == name || s.Slug() == name {
			return s, nil
		}
	}
	return nil, errors.Errorf("skill '%s' not found", name)
}

// Match filters selectable skills whose name or filename matches the glob.
// An empty pattern matches everything.
func (r *ScanResult) Match(pattern string) ([]*Skill, error) {
	if pattern == "" {
		return r.Selectable(), nil
	}

	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid pattern '%s'", pattern)
	}

	var matched []*Skill
	for _, s := range r.Selectable() {
		if g.Match(strings.ToLower(s.Name)) || g.Match(strings.ToLower(s.Filename)) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}
