// Package utils has polling helpers for tests that wait on the filesystem,
// such as a watch-triggered sync landing in the prompts directory.
package utils

import (
	"os"
	"strings"
	"time"
)

// WaitForCondition polls condition every interval until it holds or timeout
// passes, then checks one last time. A non-positive timeout checks once.
func WaitForCondition(timeout, interval time.Duration, condition func() bool) bool {
	if timeout <= 0 {
		return condition()
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}

	return condition()
}

// WaitForFiles waits until every path exists. Symlinks count even when dangling.
func WaitForFiles(timeout, interval time.Duration, paths ...string) bool {
	return WaitForCondition(timeout, interval, func() bool {
		for _, path := range paths {
			if _, err := os.Lstat(path); err != nil {
				return false
			}
		}
		return true
	})
}

// WaitForNoFiles waits until none of the paths exist
func WaitForNoFiles(timeout, interval time.Duration, paths ...string) bool {
	return WaitForCondition(timeout, interval, func() bool {
		for _, path := range paths {
			if _, err := os.Lstat(path); err == nil {
				return false
			}
		}
		return true
	})
}

// WaitForFileContent waits until path reads back containing every expected substring
func WaitForFileContent(timeout, interval time.Duration, path string, expected ...string) bool {
	return WaitForCondition(timeout, interval, func() bool {
		content, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		for _, want := range expected {
			if !strings.Contains(string(content), want) {
				return false
			}
		}
		return true
	})
}
