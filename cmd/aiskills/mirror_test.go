//go:build !windows

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/aiskills/pkg/mirror"
	"github.com/jingkaihe/aiskills/pkg/utils"
)

func TestRunSyncAndStatus(t *testing.T) {
	out := capturePresenter(t, "")
	cfg := testConfig(writeSkills(t, defaultSkillFiles()))
	m, err := newMirror(cfg)
	require.NoError(t, err)

	require.NoError(t, runSync(context.Background(), cfg, m))
	assert.Contains(t, out.String(), "Synced 2 skills to "+m.Dir())
	assert.Contains(t, out.String(), "Use /commit in chat")

	assert.FileExists(t, filepath.Join(m.Dir(), "review.prompt.md"))
	assert.FileExists(t, filepath.Join(m.Dir(), "commit.prompt.md"))
	assert.NoFileExists(t, filepath.Join(m.Dir(), "00-control.prompt.md"))

	result, err := scanSkills(context.Background(), cfg)
	require.NoError(t, err)
	report, err := m.Status(context.Background(), result.Selectable())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, m, report, false))
	assert.Contains(t, buf.String(), "Found 2 prompt file(s)")
	assert.Contains(t, buf.String(), "linked")
	assert.NotContains(t, buf.String(), "missing")
}

func TestWriteStatusDiff(t *testing.T) {
	capturePresenter(t, "")
	cfg := testConfig(writeSkills(t, defaultSkillFiles()))
	m, err := newMirror(cfg)
	require.NoError(t, err)

	// A plain file copy that drifted from its source
	require.NoError(t, os.MkdirAll(m.Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(m.Dir(), "review.prompt.md"), []byte("---\nname: Review\ndescription: Code review\n---\nOld text.\n"), 0o644))

	result, err := scanSkills(context.Background(), cfg)
	require.NoError(t, err)
	report, err := m.Status(context.Background(), result.Selectable())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, m, report, true))
	assert.Contains(t, buf.String(), "stale")
	assert.Contains(t, buf.String(), "missing")
	assert.Contains(t, buf.String(), "-Old text.")
	assert.Contains(t, buf.String(), "+Check the diff.")
}

func TestWriteStatusMissingDirectory(t *testing.T) {
	var buf bytes.Buffer
	report := &mirror.StatusReport{Dir: "/nowhere"}
	require.NoError(t, writeStatus(&buf, nil, report, true))
	assert.Equal(t, "Prompts directory: /nowhere\nDirectory does not exist\n", buf.String())
}

func TestRunUnsync(t *testing.T) {
	cfg := testConfig(writeSkills(t, defaultSkillFiles()))
	m, err := newMirror(cfg)
	require.NoError(t, err)

	capturePresenter(t, "")
	require.NoError(t, runSync(context.Background(), cfg, m))
	foreign := filepath.Join(m.Dir(), "someone-else.prompt.md")
	require.NoError(t, os.WriteFile(foreign, []byte("keep"), 0o644))

	t.Run("declined", func(t *testing.T) {
		out := capturePresenter(t, "n\n")
		require.NoError(t, runUnsync(context.Background(), cfg, m, false))
		assert.Contains(t, out.String(), "Remove 2 synced skill(s)")
		assert.Contains(t, out.String(), "Nothing removed")
		assert.FileExists(t, filepath.Join(m.Dir(), "review.prompt.md"))
	})

	t.Run("confirmed", func(t *testing.T) {
		out := capturePresenter(t, "y\n")
		require.NoError(t, runUnsync(context.Background(), cfg, m, false))
		assert.Contains(t, out.String(), "Removed 2 skills")
		assert.NoFileExists(t, filepath.Join(m.Dir(), "review.prompt.md"))
		assert.FileExists(t, foreign)
	})

	t.Run("nothing left", func(t *testing.T) {
		out := capturePresenter(t, "")
		require.NoError(t, runUnsync(context.Background(), cfg, m, true))
		assert.Contains(t, out.String(), "No synced skills found to remove")
	})
}

func TestRunUnsyncMissingDirectory(t *testing.T) {
	out := capturePresenter(t, "")
	cfg := testConfig(writeSkills(t, defaultSkillFiles()))
	m, err := newMirror(cfg)
	require.NoError(t, err)

	require.NoError(t, runUnsync(context.Background(), cfg, m, true))
	assert.Contains(t, out.String(), "No prompts directory found")
}

func TestRunSyncWatch(t *testing.T) {
	capturePresenter(t, "")
	skillsDir := writeSkills(t, defaultSkillFiles())
	cfg := testConfig(skillsDir)
	m, err := newMirror(cfg)
	require.NoError(t, err)
	require.NoError(t, runSync(context.Background(), cfg, m))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- runSyncWatch(ctx, cfg, m, 50*time.Millisecond)
	}()

	deploy := filepath.Join(m.Dir(), "deploy.prompt.md")
	// The watcher may not be registered yet, so keep touching the file
	ok := utils.WaitForCondition(5*time.Second, 100*time.Millisecond, func() bool {
		_ = os.WriteFile(filepath.Join(skillsDir, "deploy.skill.md"), []byte("---\nname: Deploy\n---\nShip it.\n"), 0o644)
		return utils.WaitForFiles(200*time.Millisecond, 20*time.Millisecond, deploy)
	})
	assert.True(t, ok, "watch did not sync the new skill")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
