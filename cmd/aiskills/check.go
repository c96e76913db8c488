package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/aiskills/pkg/presenter"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate skill headers strictly",
	Long: `Parse every skill header as YAML and report problems that the loader
tolerates: invalid YAML, missing name or description, empty bodies,
duplicate names and extra control files.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		result, err := scanSkills(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		findings := result.Lint()
		if len(findings) == 0 {
			presenter.Success(fmt.Sprintf("%d skills checked, no problems found", len(result.Skills)))
			return nil
		}

		presenter.Section("Problems")
		for _, f := range findings {
			presenter.Warning(f.String())
		}
		return errors.Errorf("%d problems found in %d skills", len(findings), len(result.Skills))
	},
}
