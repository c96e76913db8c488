package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/aiskills/pkg/config"
	"github.com/jingkaihe/aiskills/pkg/logger"
	"github.com/jingkaihe/aiskills/pkg/mirror"
	"github.com/jingkaihe/aiskills/pkg/osutil"
	"github.com/jingkaihe/aiskills/pkg/presenter"
	"github.com/jingkaihe/aiskills/pkg/telemetry"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror skills into the editor prompts directory",
	Long: `Link every selectable skill into the editor prompts directory as
<name>.prompt.md. When symlinks are not available the file is copied instead.

With --watch the skills directory is monitored and synced again after every
change until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		m, err := newMirror(cfg)
		if err != nil {
			return err
		}

		if err := runSync(cmd.Context(), cfg, m); err != nil {
			return err
		}

		watch, _ := cmd.Flags().GetBool("watch")
		if !watch {
			return nil
		}

		debounce, _ := cmd.Flags().GetDuration("debounce")
		return runSyncWatch(cmd.Context(), cfg, m, debounce)
	},
}

var unsyncCmd = &cobra.Command{
	Use:   "unsync",
	Short: "Remove mirrored skills from the editor prompts directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		m, err := newMirror(cfg)
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		return runUnsync(cmd.Context(), cfg, m, yes)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which skills are mirrored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		m, err := newMirror(cfg)
		if err != nil {
			return err
		}

		result, err := scanSkills(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		report, err := m.Status(cmd.Context(), result.Selectable())
		if err != nil {
			return err
		}

		showDiff, _ := cmd.Flags().GetBool("diff")
		return writeStatus(cmd.OutOrStdout(), m, report, showDiff)
	},
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Reveal the editor prompts directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		m, err := newMirror(cfg)
		if err != nil {
			return err
		}

		if _, err := os.Stat(m.Dir()); err != nil {
			presenter.Info(fmt.Sprintf("Prompts directory %s does not exist yet. Run 'aiskills sync' first", m.Dir()))
			return nil
		}

		if err := osutil.Open(cmd.Context(), m.Dir()); err != nil {
			return err
		}
		presenter.Info(m.Dir())
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolP("watch", "w", false, "Keep running and sync again whenever a skill file changes")
	syncCmd.Flags().Duration("debounce", mirror.DefaultDebounce, "Quiet period before a burst of changes triggers a sync")
	unsyncCmd.Flags().BoolP("yes", "y", false, "Remove without asking for confirmation")
	statusCmd.Flags().BoolP("diff", "d", false, "Show how stale copies differ from their skill")
}

func runSync(ctx context.Context, cfg config.Config, m *mirror.Mirror) error {
	result, err := scanSkills(ctx, cfg)
	if err != nil {
		return err
	}

	syncable := result.Selectable()
	if len(syncable) == 0 {
		return errors.Errorf("no skills found to sync in %s", result.Dir)
	}

	var report *mirror.SyncReport
	syncErr := telemetry.WithSpan(ctx, "mirror.sync", func(ctx context.Context) error {
		var err error
		report, err = m.Sync(ctx, syncable)
		return err
	}, attribute.String("mirror.dir", m.Dir()), attribute.Int("skills.count", len(syncable)))
	if report == nil {
		return syncErr
	}

	if syncErr != nil {
		presenter.Warning(fmt.Sprintf("Synced %d skills, %d failed", len(report.Synced), len(report.Failed)))
		return syncErr
	}

	copied := 0
	for _, s := range report.Synced {
		if s.Mode == mirror.ModeCopied {
			copied++
		}
	}

	msg := fmt.Sprintf("Synced %d skills to %s", len(report.Synced), m.Dir())
	if copied > 0 {
		msg += fmt.Sprintf(" (%d copied, re-run sync after editing them)", copied)
	}
	presenter.Success(msg)
	if len(report.Synced) > 0 {
		presenter.Info(fmt.Sprintf("Use /%s in chat", report.Synced[0].Skill.Slug()))
	}
	return nil
}

func runSyncWatch(ctx context.Context, cfg config.Config, m *mirror.Mirror, debounce time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			presenter.Warning("Stopping watch")
			cancel()
		case <-ctx.Done():
		}
	}()

	discoveryResult, err := scanSkills(ctx, cfg)
	if err != nil {
		return err
	}

	watcher, err := mirror.NewWatcher(discoveryResult.Dir, debounce)
	if err != nil {
		return err
	}
	defer watcher.Close()

	presenter.Info(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", discoveryResult.Dir))

	return watcher.Run(ctx, func(ctx context.Context, events []mirror.FileEvent) {
		for _, event := range events {
			logger.G(ctx).WithField("file", event.Path).WithField("op", event.Op.String()).Debug("skill file changed")
		}
		if err := runSync(ctx, cfg, m); err != nil {
			presenter.Error(err, "Sync failed")
		}
	})
}

func runUnsync(ctx context.Context, cfg config.Config, m *mirror.Mirror, yes bool) error {
	if _, err := os.Stat(m.Dir()); os.IsNotExist(err) {
		presenter.Info("No prompts directory found")
		return nil
	}

	// Ownership is decided by filename, so a missing skills directory only
	// leaves the configured patterns to match
	result, err := scanSkills(ctx, cfg)
	if err != nil && result == nil {
		return err
	}

	owned, err := m.Owned(result.Selectable())
	if err != nil {
		return err
	}
	if len(owned) == 0 {
		presenter.Info("No synced skills found to remove")
		return nil
	}

	if !yes && !presenter.Confirm(fmt.Sprintf("Remove %d synced skill(s) from %s?", len(owned), m.Dir())) {
		presenter.Info("Nothing removed")
		return nil
	}

	removed, err := m.Unsync(ctx, result.Selectable())
	if err != nil {
		presenter.Warning(fmt.Sprintf("Removed %d skills, some files could not be removed", removed))
		return err
	}
	presenter.Success(fmt.Sprintf("Removed %d skills from %s", removed, m.Dir()))
	return nil
}

var stateMarks = map[mirror.State]string{
	mirror.StateLinked:  "✓",
	mirror.StateCopied:  "✓",
	mirror.StateStale:   "!",
	mirror.StateMissing: "✗",
}

// writeStatus renders the status report and, when asked, the diff of every stale copy
func writeStatus(w io.Writer, m *mirror.Mirror, report *mirror.StatusReport, showDiff bool) error {
	fmt.Fprintf(w, "Prompts directory: %s\n", report.Dir)
	if !report.DirExists {
		fmt.Fprintln(w, "Directory does not exist")
		return nil
	}
	fmt.Fprintf(w, "Found %d prompt file(s)\n\n", report.PromptFiles)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tSKILL\tSTATE\tTARGET")
	for _, s := range report.Skills {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", stateMarks[s.State], s.Skill.Name, s.State, s.Target)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !showDiff {
		return nil
	}
	for _, s := range report.Skills {
		if s.State != mirror.StateStale {
			continue
		}
		diff, err := m.Diff(s.Skill)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%s", diff)
	}
	return nil
}
