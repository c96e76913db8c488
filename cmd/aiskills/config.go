package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/aiskills/pkg/config"
	"github.com/jingkaihe/aiskills/pkg/mirror"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect aiskills configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration after merging defaults, the config file, AISKILLS_*
environment variables, flags and the active profile.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "# config file: %s\n", used)
		}
		return writeConfig(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

// writeConfig renders cfg as YAML with the resolved prompts directory filled in
func writeConfig(w io.Writer, cfg config.Config) error {
	if cfg.Mirror.PromptsDir == "" {
		if dir, err := mirror.DefaultPromptsDir(); err == nil {
			cfg.Mirror.PromptsDir = dir
		}
	}
	// Profiles are already merged into the top level
	cfg.Profiles = nil

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal configuration")
	}
	_, err = w.Write(out)
	return err
}
