package skills

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jingkaihe/aiskills/pkg/logger"
	"github.com/pkg/errors"
)

// DefaultSkillsPath is used when no skills path is configured
const DefaultSkillsPath = "~/ai-skills/skills"

// ErrDirectoryNotFound is returned when the skills path is not an existing directory
var ErrDirectoryNotFound = errors.New("skills directory not found")

// Discovery scans one skills directory
type Discovery struct {
	dir string
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithSkillsPath sets the directory to scan. A leading ~/ is expanded and
// relative paths are resolved against the working directory, so every
// Skill.Path is absolute.
func WithSkillsPath(path string) Option {
	return func(d *Discovery) error {
		if path == "" {
			path = DefaultSkillsPath
		}
		expanded, err := ExpandPath(path)
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve skills path %s", expanded)
		}
		d.dir = abs
		return nil
	}
}

// NewDiscovery creates a new skill discovery instance
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}

	if len(opts) == 0 {
		opts = []Option{WithSkillsPath(DefaultSkillsPath)}
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Dir returns the resolved directory being scanned
func (d *Discovery) Dir() string {
	return d.dir
}

// DiscoverSkills reads every *.skill.md file in filename order. A missing
// directory yields an empty result together with ErrDirectoryNotFound.
func (d *Discovery) DiscoverSkills(ctx context.Context) (*ScanResult, error) {
	result := &ScanResult{Dir: d.dir}
	log := logger.G(ctx).WithField("dir", d.dir)

	info, err := os.Stat(d.dir)
	if err != nil || !info.IsDir() {
		return result, errors.Wrapf(ErrDirectoryNotFound, "%s", d.dir)
	}

	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return result, errors.Wrapf(err, "failed to read skills directory %s", d.dir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), FileSuffix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(d.dir, name)

		// Stat follows symlinks so linked skill files are picked up
		info, err := os.Stat(path)
		if err != nil {
			log.WithField("file", name).WithError(err).Debug("skipping unreadable skill entry")
			continue
		}
		if info.IsDir() {
			log.WithField("file", name).Debug("skipping directory with skill suffix")
			continue
		}

		skill, err := ParseFile(path)
		if err != nil {
			log.WithField("file", name).WithError(err).Debug("skipping skill file")
			continue
		}
		result.Skills = append(result.Skills, skill)
	}

	log.WithField("count", len(result.Skills)).Debug("discovered skills")
	return result, nil
}

// ExpandPath expands a leading ~ or ~/ to the user home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}

	return filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/")), nil
}
