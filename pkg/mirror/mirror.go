// Package mirror keeps a second tool's prompt directory in step with the
// skills directory. Every selectable skill gets a *.prompt.md entry there,
// a symlink when the platform allows it and a copy otherwise.
package mirror

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/jingkaihe/aiskills/pkg/logger"
	"github.com/jingkaihe/aiskills/pkg/skills"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
)

// PromptSuffix replaces the skill suffix in mirrored file names
const PromptSuffix = ".prompt.md"

// Mode describes how a skill was mirrored
type Mode string

const (
	ModeLinked Mode = "linked"
	ModeCopied Mode = "copied"
)

// State is the mirror status of one skill
type State string

const (
	StateLinked  State = "linked"
	StateCopied  State = "copied"
	StateStale   State = "stale"
	StateMissing State = "missing"
)

// Mirror manages the prompts directory
type Mirror struct {
	dir      string
	resolve  DirResolver
	patterns []string
	symlink  func(oldname, newname string) error
}

// Option is a function that configures a Mirror
type Option func(*Mirror) error

// WithPromptsDir pins the prompts directory instead of resolving it per platform
func WithPromptsDir(dir string) Option {
	return func(m *Mirror) error {
		if dir == "" {
			return nil
		}
		expanded, err := skills.ExpandPath(dir)
		if err != nil {
			return err
		}
		m.dir = expanded
		return nil
	}
}

// WithDirResolver replaces the platform directory resolution
func WithDirResolver(resolve DirResolver) Option {
	return func(m *Mirror) error {
		m.resolve = resolve
		return nil
	}
}

// WithPatterns adds doublestar patterns of extra prompt files that unsync removes
func WithPatterns(patterns ...string) Option {
	return func(m *Mirror) error {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return errors.Errorf("invalid pattern '%s'", p)
			}
		}
		m.patterns = append(m.patterns, patterns...)
		return nil
	}
}

// New creates a Mirror. Without WithPromptsDir the directory comes from the resolver.
func New(opts ...Option) (*Mirror, error) {
	m := &Mirror{
		resolve: DefaultPromptsDir,
		symlink: os.Symlink,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, errors.Wrap(err, "failed to apply mirror option")
		}
	}

	if m.dir == "" {
		dir, err := m.resolve()
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve prompts directory")
		}
		m.dir = dir
	}

	return m, nil
}

// Dir returns the prompts directory
func (m *Mirror) Dir() string {
	return m.dir
}

// TargetName rewrites a skill filename to its prompt filename
func TargetName(filename string) string {
	return strings.TrimSuffix(filename, skills.FileSuffix) + PromptSuffix
}

func (m *Mirror) targetPath(s *skills.Skill) string {
	return filepath.Join(m.dir, TargetName(s.Filename))
}

// SyncedSkill records one mirrored skill
type SyncedSkill struct {
	Skill  *skills.Skill
	Target string
	Mode   Mode
}

// SyncReport summarises a sync run
type SyncReport struct {
	Synced []SyncedSkill
	Failed []*skills.Skill
}

// Sync mirrors every skill in list; pass the selectable skills so the
// control skill stays out. Failures for individual skills do
// not stop the run; they are collected into the returned error.
func (m *Mirror) Sync(ctx context.Context, list []*skills.Skill) (*SyncReport, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create prompts directory %s", m.dir)
	}

	report := &SyncReport{}
	var result *multierror.Error

	for _, s := range list {
		target := m.targetPath(s)
		mode, err := m.place(s.Path, target)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "%s", s.Name))
			report.Failed = append(report.Failed, s)
			continue
		}

		logger.G(ctx).WithFields(map[string]interface{}{
			"skill":  s.Filename,
			"target": target,
			"mode":   mode,
		}).Debug("mirrored skill")
		report.Synced = append(report.Synced, SyncedSkill{Skill: s, Target: target, Mode: mode})
	}

	return report, result.ErrorOrNil()
}

// place replaces target with a symlink to source, copying when linking fails.
// Link targets are absolute since a relative one would resolve against the
// prompts directory.
func (m *Mirror) place(source, target string) (Mode, error) {
	source, err := filepath.Abs(source)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve skill path")
	}

	if _, err := os.Lstat(target); err == nil {
		if err := os.Remove(target); err != nil {
			return "", errors.Wrap(err, "failed to remove existing prompt file")
		}
	}

	if err := m.symlink(source, target); err == nil {
		return ModeLinked, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", errors.Wrap(err, "failed to read skill file")
	}
	if err := lockedfile.Write(target, bytes.NewReader(data), 0o644); err != nil {
		return "", errors.Wrap(err, "failed to copy skill file")
	}

	return ModeCopied, nil
}

// Owned lists the prompt files that belong to the given skills or match the
// extra patterns, sorted by name. A missing directory owns nothing.
func (m *Mirror) Owned(list []*skills.Skill) ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read prompts directory %s", m.dir)
	}

	names := make(map[string]bool, len(list))
	for _, s := range list {
		names[TargetName(s.Filename)] = true
	}

	var owned []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if names[entry.Name()] || m.matchesPattern(entry.Name()) {
			owned = append(owned, entry.Name())
		}
	}
	sort.Strings(owned)

	return owned, nil
}

func (m *Mirror) matchesPattern(name string) bool {
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Unsync removes the prompt files Owned reports and returns how many were removed
func (m *Mirror) Unsync(ctx context.Context, list []*skills.Skill) (int, error) {
	owned, err := m.Owned(list)
	if err != nil {
		return 0, err
	}

	removed := 0
	var result *multierror.Error
	for _, name := range owned {
		if err := os.Remove(filepath.Join(m.dir, name)); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "failed to remove %s", name))
			continue
		}
		logger.G(ctx).WithField("file", name).Debug("removed prompt file")
		removed++
	}

	return removed, result.ErrorOrNil()
}

// SkillStatus is the mirror state of one skill
type SkillStatus struct {
	Skill  *skills.Skill
	Target string
	State  State
}

// StatusReport describes the prompts directory relative to the skills
type StatusReport struct {
	Dir         string
	DirExists   bool
	PromptFiles int
	Skills      []SkillStatus
}

// Status inspects the prompts directory for every skill in list
func (m *Mirror) Status(_ context.Context, list []*skills.Skill) (*StatusReport, error) {
	report := &StatusReport{Dir: m.dir}

	entries, err := os.ReadDir(m.dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "failed to read prompts directory %s", m.dir)
	}
	report.DirExists = err == nil

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			report.PromptFiles++
		}
	}

	for _, s := range list {
		target := m.targetPath(s)
		state, err := stateOf(s, target)
		if err != nil {
			return nil, err
		}
		report.Skills = append(report.Skills, SkillStatus{Skill: s, Target: target, State: state})
	}

	return report, nil
}

func stateOf(s *skills.Skill, target string) (State, error) {
	info, err := os.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return StateMissing, nil
		}
		return "", errors.Wrapf(err, "failed to stat %s", target)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		dest, err := os.Readlink(target)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read link %s", target)
		}
		source, err := filepath.Abs(s.Path)
		if err != nil {
			return "", errors.Wrapf(err, "failed to resolve %s", s.Path)
		}
		if filepath.Clean(dest) == source {
			return StateLinked, nil
		}
		return StateStale, nil
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", target)
	}
	if string(data) == s.Content {
		return StateCopied, nil
	}
	return StateStale, nil
}

// Diff returns a unified diff from the mirrored prompt file to the current
// skill source. Linked and up to date copies produce an empty diff.
func (m *Mirror) Diff(s *skills.Skill) (string, error) {
	target := m.targetPath(s)
	data, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Errorf("skill '%s' is not mirrored", s.Name)
		}
		return "", errors.Wrapf(err, "failed to read %s", target)
	}

	return udiff.Unified(target, s.Path, string(data), s.Content), nil
}
