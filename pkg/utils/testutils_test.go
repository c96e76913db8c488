package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForCondition(t *testing.T) {
	t.Run("met after a few polls", func(t *testing.T) {
		calls := 0
		ok := WaitForCondition(time.Second, 5*time.Millisecond, func() bool {
			calls++
			return calls >= 3
		})
		assert.True(t, ok)
		assert.Equal(t, 3, calls)
	})

	t.Run("times out", func(t *testing.T) {
		start := time.Now()
		ok := WaitForCondition(30*time.Millisecond, 5*time.Millisecond, func() bool { return false })
		assert.False(t, ok)
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("zero timeout checks once", func(t *testing.T) {
		calls := 0
		ok := WaitForCondition(0, time.Millisecond, func() bool {
			calls++
			return false
		})
		assert.False(t, ok)
		assert.Equal(t, 1, calls)
	})
}

func TestWaitForFiles(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need developer mode on windows")
	}
	dir := t.TempDir()
	prompt := filepath.Join(dir, "review.prompt.md")
	link := filepath.Join(dir, "dangling.prompt.md")

	assert.False(t, WaitForFiles(20*time.Millisecond, 5*time.Millisecond, prompt))

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = os.WriteFile(prompt, []byte("x"), 0o644)
		_ = os.Symlink(filepath.Join(dir, "missing.skill.md"), link)
	}()
	assert.True(t, WaitForFiles(2*time.Second, 5*time.Millisecond, prompt, link))

	require.NoError(t, os.Remove(prompt))
	assert.True(t, WaitForNoFiles(time.Second, 5*time.Millisecond, prompt))
	assert.False(t, WaitForNoFiles(20*time.Millisecond, 5*time.Millisecond, link))
}

func TestWaitForFileContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.prompt.md")
	require.NoError(t, os.WriteFile(path, []byte("---\nname: Review\n---\nOld\n"), 0o644))

	assert.False(t, WaitForFileContent(20*time.Millisecond, 5*time.Millisecond, path, "New"))

	require.NoError(t, os.WriteFile(path, []byte("---\nname: Review\n---\nNew\n"), 0o644))
	assert.True(t, WaitForFileContent(time.Second, 5*time.Millisecond, path, "name: Review", "New"))
}
