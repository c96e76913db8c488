package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/aiskills/pkg/presenter"
	"github.com/jingkaihe/aiskills/pkg/skills"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the skills in the skills directory",
	Long: `List skills with their names, filenames and descriptions.

Examples:
  aiskills list
  aiskills list --match 'code-*'
  aiskills list --all`,
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

		pattern, _ := cmd.Flags().GetString("match")
		all, _ := cmd.Flags().GetBool("all")

		list := result.Selectable()
		if pattern != "" {
			if list, err = result.Match(pattern); err != nil {
				return err
			}
		}
		if all && pattern == "" {
			list = result.Skills
		}

		if len(list) == 0 {
			presenter.Info(fmt.Sprintf("No skills found in %s", result.Dir))
			return nil
		}

		presenter.Section(fmt.Sprintf("Skills in %s", result.Dir))
		return writeSkillTable(cmd.OutOrStdout(), list, result.Control())
	},
}

func init() {
	listCmd.Flags().StringP("match", "m", "", "Only list skills whose name or filename matches the glob")
	listCmd.Flags().BoolP("all", "a", false, "Include the control skill")
}

// writeSkillTable renders one row per skill, marking the control skill
func writeSkillTable(w io.Writer, list []*skills.Skill, control *skills.Skill) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "NAME\tFILE\tDESCRIPTION")
	fmt.Fprintln(tw, "----\t----\t-----------")

	for _, s := range list {
		name := s.Name
		if s == control {
			name += " (control)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, s.Filename, s.Description)
	}

	return tw.Flush()
}
