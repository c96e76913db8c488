package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/aiskills/pkg/config"
	"github.com/jingkaihe/aiskills/pkg/delivery"
	"github.com/jingkaihe/aiskills/pkg/presenter"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type fakeHost struct {
	payload string
	err     error
}

func (h *fakeHost) Open(_ context.Context, payload string) error {
	if h.err != nil {
		return h.err
	}
	h.payload = payload
	return nil
}

// writeSkills creates a skills directory holding the given files
func writeSkills(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func defaultSkillFiles() map[string]string {
	return map[string]string{
		"00-control.skill.md": "---\nname: Control\ndescription: Always on\n---\nBe brief.\n",
		"review.skill.md":     "---\nname: Review\ndescription: Code review\n---\nCheck the diff.\n",
		"commit.skill.md":     "---\nname: Commit\ndescription: Commit message\n---\nWrite the message.\n",
	}
}

func testConfig(skillsDir string) config.Config {
	return config.Config{
		SkillsPath:           skillsDir,
		AlwaysIncludeControl: true,
		Mirror:               config.MirrorConfig{PromptsDir: filepath.Join(filepath.Dir(skillsDir), "prompts")},
	}
}

// capturePresenter routes presenter output to a buffer for the test
func capturePresenter(t *testing.T, input string) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	original := presenter.Default()
	p := presenter.NewWithOptions(&out, &out, presenter.ColorNever).WithInput(bytes.NewBufferString(input))
	presenter.SetDefault(p)
	t.Cleanup(func() { presenter.SetDefault(original) })
	return &out
}

func stubDelivery(t *testing.T, clip delivery.Clipboard, host delivery.ChatHost) {
	t.Helper()
	originalClip, originalHost := systemClipboard, newChatHost
	systemClipboard = clip
	newChatHost = func(config.Config) delivery.ChatHost { return host }
	t.Cleanup(func() {
		systemClipboard, newChatHost = originalClip, originalHost
	})
}
