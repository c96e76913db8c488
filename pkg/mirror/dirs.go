package mirror

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// DirResolver returns the prompts directory of the mirrored tool
type DirResolver func() (string, error)

// PromptsDir computes the editor's user prompts directory for an OS.
// getenv is consulted for APPDATA on windows.
func PromptsDir(goos, homeDir string, getenv func(string) string) string {
	switch goos {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "Code", "User", "prompts")
	case "windows":
		appData := ""
		if getenv != nil {
			appData = getenv("APPDATA")
		}
		if appData == "" {
			appData = filepath.Join(homeDir, "AppData", "Roaming")
		}
		return filepath.Join(appData, "Code", "User", "prompts")
	default:
		return filepath.Join(homeDir, ".config", "Code", "User", "prompts")
	}
}

// DefaultPromptsDir resolves the prompts directory for the running OS
func DefaultPromptsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return PromptsDir(runtime.GOOS, homeDir, os.Getenv), nil
}
