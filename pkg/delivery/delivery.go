// Package delivery hands a composed payload to its destination: a chat
// surface of a host application, or the system clipboard when the host is
// unavailable or rejects it.
package delivery

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/jingkaihe/aiskills/pkg/logger"
	"github.com/pkg/errors"
)

// Target identifies where a payload ended up
type Target int

const (
	// TargetHost means the chat surface accepted the payload
	TargetHost Target = iota
	// TargetClipboard means the payload was copied for a manual paste
	TargetClipboard
)

func (t Target) String() string {
	switch t {
	case TargetHost:
		return "host"
	case TargetClipboard:
		return "clipboard"
	default:
		return "unknown"
	}
}

// Clipboard writes text to the system clipboard
type Clipboard interface {
	WriteAll(text string) error
}

// ChatHost opens a chat input pre-filled with the payload
type ChatHost interface {
	Open(ctx context.Context, payload string) error
}

// Result describes a completed delivery
type Result struct {
	Target Target
	// HostErr is set when the host rejected the payload and the clipboard took over
	HostErr error
}

// FellBack reports whether the host was tried and the clipboard used instead
func (r Result) FellBack() bool {
	return r.Target == TargetClipboard && r.HostErr != nil
}

// SystemClipboard is the OS clipboard
type SystemClipboard struct{}

// WriteAll copies text to the OS clipboard
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// CopyToClipboard copies the payload to the clipboard
func CopyToClipboard(ctx context.Context, payload string, clip Clipboard) (Result, error) {
	if err := clip.WriteAll(payload); err != nil {
		return Result{}, errors.Wrap(err, "failed to write to clipboard")
	}

	logger.G(ctx).WithField("bytes", len(payload)).Debug("payload copied to clipboard")
	return Result{Target: TargetClipboard}, nil
}

// Deliver tries the chat host first and falls back to the clipboard. An
// error is returned only when neither destination accepted the payload.
func Deliver(ctx context.Context, payload string, host ChatHost, clip Clipboard) (Result, error) {
	if host != nil {
		hostErr := host.Open(ctx, payload)
		if hostErr == nil {
			logger.G(ctx).WithField("bytes", len(payload)).Debug("payload delivered to chat host")
			return Result{Target: TargetHost}, nil
		}

		logger.G(ctx).WithError(hostErr).Debug("chat host rejected payload, falling back to clipboard")
		result, err := CopyToClipboard(ctx, payload, clip)
		if err != nil {
			return Result{}, errors.Wrapf(err, "chat host failed (%v) and clipboard fallback failed", hostErr)
		}
		result.HostErr = hostErr
		return result, nil
	}

	return CopyToClipboard(ctx, payload, clip)
}
