package delivery

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/jingkaihe/aiskills/pkg/logger"
	"github.com/jingkaihe/aiskills/pkg/osutil"
	"github.com/pkg/errors"
)

// DefaultChatCommand opens the editor chat panel with a pre-filled query
var DefaultChatCommand = []string{"code", "chat"}

const defaultHostTimeout = 30 * time.Second

// CommandHost delivers a payload by running an external command
type CommandHost struct {
	// Command is the program and leading arguments
	Command []string
	// Stdin passes the payload on standard input instead of as the last argument
	Stdin bool
	// Timeout bounds the command run, defaults to 30s
	Timeout time.Duration
}

// NewCommandHost creates a host for the given command, falling back to the default chat command
func NewCommandHost(command []string, stdin bool) *CommandHost {
	if len(command) == 0 {
		command = DefaultChatCommand
	}
	return &CommandHost{
		Command: command,
		Stdin:   stdin,
		Timeout: defaultHostTimeout,
	}
}

// Open runs the command with the payload
func (h *CommandHost) Open(ctx context.Context, payload string) error {
	if len(h.Command) == 0 || h.Command[0] == "" {
		return errors.New("no chat command configured")
	}

	path, err := exec.LookPath(h.Command[0])
	if err != nil {
		return errors.Wrapf(err, "chat command '%s' not found", h.Command[0])
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultHostTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{}, h.Command[1:]...)
	if !h.Stdin {
		args = append(args, payload)
	}

	cmd := exec.CommandContext(cmdCtx, path, args...)
	osutil.SetProcessGroup(cmd)
	osutil.SetProcessGroupKill(cmd)
	if h.Stdin {
		cmd.Stdin = strings.NewReader(payload)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.G(ctx).WithField("command", h.Command).Debug("opening chat host")

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return errors.Wrapf(err, "chat command failed: %s", msg)
		}
		return errors.Wrap(err, "chat command failed")
	}

	return nil
}
