//go:build !windows

package mirror

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jingkaihe/aiskills/pkg/skills"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	skillsDir  string
	promptsDir string
	result     *skills.ScanResult
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	skillsDir := filepath.Join(root, "skills")
	require.NoError(t, os.MkdirAll(skillsDir, 0o755))

	files := map[string]string{
		"00-control.skill.md": "---\nname: Control\n---\nBe brief.\n",
		"05-review.skill.md":  "---\nname: Review\n---\nCheck the diff.\n",
		"06-commit.skill.md":  "---\nname: Commit\n---\nWrite the message.\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(skillsDir, name), []byte(content), 0o644))
	}

	discovery, err := skills.NewDiscovery(skills.WithSkillsPath(skillsDir))
	require.NoError(t, err)
	result, err := discovery.DiscoverSkills(context.Background())
	require.NoError(t, err)

	return &fixture{
		skillsDir:  skillsDir,
		promptsDir: filepath.Join(root, "prompts"),
		result:     result,
	}
}

func newTestMirror(t *testing.T, f *fixture, opts ...Option) *Mirror {
	t.Helper()
	m, err := New(append([]Option{WithPromptsDir(f.promptsDir)}, opts...)...)
	require.NoError(t, err)
	return m
}

func forceCopy(m *Mirror) {
	m.symlink = func(string, string) error { return errors.New("symlinks not permitted") }
}

func TestNew(t *testing.T) {
	t.Run("uses resolver when no directory is pinned", func(t *testing.T) {
		m, err := New(WithDirResolver(func() (string, error) { return "/resolved/prompts", nil }))
		require.NoError(t, err)
		assert.Equal(t, "/resolved/prompts", m.Dir())
	})

	t.Run("pinned directory wins over resolver", func(t *testing.T) {
		m, err := New(
			WithPromptsDir("/pinned"),
			WithDirResolver(func() (string, error) { return "", errors.New("should not be called") }),
		)
		require.NoError(t, err)
		assert.Equal(t, "/pinned", m.Dir())
	})

	t.Run("resolver error", func(t *testing.T) {
		_, err := New(WithDirResolver(func() (string, error) { return "", errors.New("no home") }))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no home")
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := New(WithPromptsDir("/p"), WithPatterns("[abc"))
		assert.Error(t, err)
	})
}

func TestTargetName(t *testing.T) {
	assert.Equal(t, "05-review.prompt.md", TargetName("05-review.skill.md"))
	assert.Equal(t, "odd.prompt.md", TargetName("odd"))
}

func TestSyncCreatesSymlinks(t *testing.T) {
	f := newFixture(t)
	m := newTestMirror(t, f)

	report, err := m.Sync(context.Background(), f.result.Selectable())
	require.NoError(t, err)
	require.Len(t, report.Synced, 2)
	assert.Empty(t, report.Failed)

	for _, synced := range report.Synced {
		assert.Equal(t, ModeLinked, synced.Mode)
		info, err := os.Lstat(synced.Target)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&os.ModeSymlink)

		dest, err := os.Readlink(synced.Target)
		require.NoError(t, err)
		assert.Equal(t, synced.Skill.Path, dest)
	}

	_, err = os.Lstat(filepath.Join(f.promptsDir, "00-control.prompt.md"))
	assert.True(t, os.IsNotExist(err), "control skill is never mirrored")
}

func TestSyncFromRelativeSkillsPath(t *testing.T) {
	root := t.TempDir()
	skillsDir := filepath.Join(root, "skills")
	require.NoError(t, os.MkdirAll(skillsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skillsDir, "05-review.skill.md"), []byte("---\nname: Review\n---\nCheck the diff.\n"), 0o644))
	t.Chdir(root)

	discovery, err := skills.NewDiscovery(skills.WithSkillsPath("skills"))
	require.NoError(t, err)
	result, err := discovery.DiscoverSkills(context.Background())
	require.NoError(t, err)

	m, err := New(WithPromptsDir(filepath.Join(root, "prompts")))
	require.NoError(t, err)

	report, err := m.Sync(context.Background(), result.Selectable())
	require.NoError(t, err)
	require.Len(t, report.Synced, 1)
	assert.Equal(t, ModeLinked, report.Synced[0].Mode)

	data, err := os.ReadFile(filepath.Join(root, "prompts", "05-review.prompt.md"))
	require.NoError(t, err)
	assert.Equal(t, "---\nname: Review\n---\nCheck the diff.\n", string(data))

	status, err := m.Status(context.Background(), result.Selectable())
	require.NoError(t, err)
	require.Len(t, status.Skills, 1)
	assert.Equal(t, StateLinked, status.Skills[0].State)
}

func TestSyncLinksRelativeSourceAbsolutely(t *testing.T) {
	f := newFixture(t)
	m := newTestMirror(t, f)
	t.Chdir(filepath.Dir(f.skillsDir))

	review := *f.result.Selectable()[0]
	review.Path = filepath.Join("skills", review.Filename)

	report, err := m.Sync(context.Background(), []*skills.Skill{&review})
	require.NoError(t, err)
	require.Len(t, report.Synced, 1)

	dest, err := os.Readlink(report.Synced[0].Target)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dest))

	data, err := os.ReadFile(report.Synced[0].Target)
	require.NoError(t, err)
	assert.Equal(t, review.Content, string(data))
}

func TestSyncFallsBackToCopy(t *testing.T) {
	f := newFixture(t)
	m := newTestMirror(t, f)
	forceCopy(m)

	report, err := m.Sync(context.Background(), f.result.Selectable())
	require.NoError(t, err)
	require.Len(t, report.Synced, 2)

	target := filepath.Join(f.promptsDir, "05-review.prompt.md")
	info, err := os.Lstat(target)
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&os.ModeSymlink)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "---\nname: Review\n---\nCheck the diff.\n", string(data))
	assert.Equal(t, ModeCopied, report.Synced[0].Mode)
}

func TestSyncReplacesExistingTargets(t *testing.T) {
	f := newFixture(t)
	m := newTestMirror(t, f)
	require.NoError(t, os.MkdirAll(f.promptsDir, 0o755))
	target := filepath.Join(f.promptsDir, "05-review.prompt.md")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

	_, err := m.Sync(context.Background(), f.result.Selectable())
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Check the diff.")

	// second run is idempotent
	report, err := m.Sync(context.Background(), f.result.Selectable())
	require.NoError(t, err)
	assert.Len(t, report.Synced, 2)
}

func TestSyncCollectsFailures(t *testing.T) {
	f := newFixture(t)
	m := newTestMirror(t, f)
	forceCopy(m)

	missing := &skills.Skill{Name: "Ghost", Filename: "09-ghost.skill.md", Path: filepath.Join(f.skillsDir, "09-ghost.skill.md")}
	list := append(append([]*skills.Skill{}, f.result.Selectable()...), missing)

	report, err := m.Sync(context.Background(), list)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ghost")
	assert.Len(t, report.Synced, 2)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "Ghost", report.Failed[0].Name)
}

func TestUnsync(t *testing.T) {
	f := newFixture(t)
	m := newTestMirror(t, f, WithPatterns("legacy-*.prompt.md"))

	_, err := m.Sync(context.Background(), f.result.Selectable())
	require.NoError(t, err)

	foreign := filepath.Join(f.promptsDir, "someone-else.prompt.md")
	legacy := filepath.Join(f.promptsDir, "legacy-anatomy.prompt.md")
	require.NoError(t, os.WriteFile(foreign, []byte("keep"), 0o644))
	require.NoError(t, os.WriteFile(legacy, []byte("remove"), 0o644))

	owned, err := m.Owned(f.result.Selectable())
	require.NoError(t, err)
	assert.Equal(t, []string{"05-review.prompt.md", "06-commit.prompt.md", "legacy-anatomy.prompt.md"}, owned)

	removed, err := m.Unsync(context.Background(), f.result.Selectable())
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	_, err = os.Stat(foreign)
	assert.NoError(t, err, "files that are not ours stay")
	_, err = os.Lstat(legacy)
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(f.skillsDir, "05-review.skill.md"))
	assert.NoError(t, err, "removing a link leaves the source in place")
}

func TestUnsyncMissingDirectory(t *testing.T) {
	f := newFixture(t)
	m := newTestMirror(t, f)

	removed, err := m.Unsync(context.Background(), f.result.Selectable())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)

	t.Run("missing directory", func(t *testing.T) {
		m := newTestMirror(t, f)
		report, err := m.Status(context.Background(), f.result.Selectable())
		require.NoError(t, err)
		assert.False(t, report.DirExists)
		assert.Zero(t, report.PromptFiles)
		require.Len(t, report.Skills, 2)
		for _, s := range report.Skills {
			assert.Equal(t, StateMissing, s.State)
		}
	})

	t.Run("linked", func(t *testing.T) {
		m := newTestMirror(t, f)
		_, err := m.Sync(context.Background(), f.result.Selectable())
		require.NoError(t, err)

		report, err := m.Status(context.Background(), f.result.Selectable())
		require.NoError(t, err)
		assert.True(t, report.DirExists)
		assert.Equal(t, 2, report.PromptFiles)
		for _, s := range report.Skills {
			assert.Equal(t, StateLinked, s.State)
		}
	})

	t.Run("copied then stale", func(t *testing.T) {
		m := newTestMirror(t, f)
		forceCopy(m)
		_, err := m.Sync(context.Background(), f.result.Selectable())
		require.NoError(t, err)

		report, err := m.Status(context.Background(), f.result.Selectable())
		require.NoError(t, err)
		for _, s := range report.Skills {
			assert.Equal(t, StateCopied, s.State)
		}

		review, err := f.result.FindByName("Review")
		require.NoError(t, err)
		updated := *review
		updated.Content = "---\nname: Review\n---\nCheck the diff twice.\n"

		report, err = m.Status(context.Background(), []*skills.Skill{&updated})
		require.NoError(t, err)
		require.Len(t, report.Skills, 1)
		assert.Equal(t, StateStale, report.Skills[0].State)

		diff, err := m.Diff(&updated)
		require.NoError(t, err)
		assert.Contains(t, diff, "-Check the diff.")
		assert.Contains(t, diff, "+Check the diff twice.")
	})
}

func TestDiff(t *testing.T) {
	f := newFixture(t)
	m := newTestMirror(t, f)
	review, err := f.result.FindByName("Review")
	require.NoError(t, err)

	_, err = m.Diff(review)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not mirrored")

	_, err = m.Sync(context.Background(), f.result.Selectable())
	require.NoError(t, err)

	diff, err := m.Diff(review)
	require.NoError(t, err)
	assert.Empty(t, diff, "a linked skill never drifts")
}
