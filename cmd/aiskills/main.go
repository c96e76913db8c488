package main

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/aiskills/pkg/config"
	"github.com/jingkaihe/aiskills/pkg/logger"
	"github.com/jingkaihe/aiskills/pkg/presenter"
)

var (
	configErr       error
	shutdownTracing = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "aiskills",
	Short: "Load reusable AI skill snippets into your chat",
	Long: `aiskills reads *.skill.md snippets from your skills directory and delivers
a composed payload to the clipboard or a chat host. The control skill (a file
prefixed with 00-) is appended to every payload as a one-line footnote.

Skills can also be mirrored into the editor prompts directory as *.prompt.md.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if configErr != nil {
			return configErr
		}

		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		if err := logger.SetLogLevel(cfg.LogLevel); err != nil {
			return errors.Wrap(err, "invalid log level")
		}
		logger.SetLogFormat(cfg.LogFormat)

		if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
			presenter.SetQuiet(quiet)
		}

		shutdown, err := initTracing(cmd.Context(), cfg)
		if err != nil {
			logger.G(cmd.Context()).WithError(err).Warn("failed to initialize tracing")
			return nil
		}
		shutdownTracing = shutdown
		return nil
	},
}

func flushTracing(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		logger.G(ctx).WithError(err).Warn("failed to flush traces")
	}
}

func init() {
	// A broken config file is reported by the first command that runs
	configErr = config.Init(viper.GetViper())

	rootCmd.PersistentFlags().String("skills-path", "", "Directory holding *.skill.md files (default ~/ai-skills/skills)")
	rootCmd.PersistentFlags().String("profile", "", "Named configuration profile to apply")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "Log level (panic, fatal, error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "Log format (fmt, json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress informational output")

	viper.BindPFlag("skills_path", rootCmd.PersistentFlags().Lookup("skills-path"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(withTracing(loadCmd))
	rootCmd.AddCommand(withTracing(showCmd))
	rootCmd.AddCommand(withTracing(listCmd))
	rootCmd.AddCommand(withTracing(checkCmd))
	rootCmd.AddCommand(withTracing(syncCmd))
	rootCmd.AddCommand(withTracing(unsyncCmd))
	rootCmd.AddCommand(withTracing(statusCmd))
	rootCmd.AddCommand(withTracing(openCmd))
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx := context.Background()
	err := rootCmd.ExecuteContext(ctx)
	flushTracing(ctx)
	if err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
