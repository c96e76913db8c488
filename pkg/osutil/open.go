// Package osutil holds the platform specific bits of running helper programs.
package osutil

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/pkg/errors"
)

// OpenerCommand returns the program and arguments that reveal target in
// the platform file manager or default application
func OpenerCommand(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "explorer", []string{target}
	default:
		return "xdg-open", []string{target}
	}
}

// Open starts the platform opener for target without waiting for it
func Open(ctx context.Context, target string) error {
	name, args := OpenerCommand(runtime.GOOS, target)
	if _, err := exec.LookPath(name); err != nil {
		return errors.Wrapf(err, "%s not found", name)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to run %s", name)
	}
	return cmd.Process.Release()
}
