package mirror

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jingkaihe/aiskills/pkg/logger"
	"github.com/jingkaihe/aiskills/pkg/skills"
	"github.com/pkg/errors"
)

// DefaultDebounce is the quiet period before a burst of changes triggers a resync
const DefaultDebounce = 500 * time.Millisecond

// FileEvent represents a skill file change
type FileEvent struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

// Watcher reports debounced changes to skill files in one directory
type Watcher struct {
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher starts watching dir. Call Run to consume events and Close when done.
func NewWatcher(dir string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", dir)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{dir: dir, debounce: debounce, watcher: fw}, nil
}

// Close stops the underlying watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run blocks until ctx is cancelled, calling onChange once per burst of
// skill file events with the events of that burst.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context, []FileEvent)) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending []FileEvent
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isSkillEvent(event) {
				continue
			}
			pending = append(pending, FileEvent{Path: event.Name, Op: event.Op, Time: time.Now()})

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case <-fire:
			events := pending
			pending = nil
			fire = nil
			logger.G(ctx).WithFields(map[string]interface{}{
				"dir":    w.dir,
				"events": len(events),
			}).Debug("skill files changed")
			onChange(ctx, events)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Warn("error watching skills directory")
		case <-ctx.Done():
			return nil
		}
	}
}

func isSkillEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(filepath.Base(event.Name), skills.FileSuffix) {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
