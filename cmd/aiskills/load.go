package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/aiskills/pkg/config"
	"github.com/jingkaihe/aiskills/pkg/delivery"
	"github.com/jingkaihe/aiskills/pkg/logger"
	"github.com/jingkaihe/aiskills/pkg/payload"
	"github.com/jingkaihe/aiskills/pkg/presenter"
	"github.com/jingkaihe/aiskills/pkg/skills"
	"github.com/jingkaihe/aiskills/pkg/telemetry"
	"github.com/jingkaihe/aiskills/pkg/tui"
)

// LoadConfig holds the flags of the load command
type LoadConfig struct {
	Chat      bool
	Print     bool
	NoControl bool
}

// NewLoadConfig creates a new LoadConfig with default values
func NewLoadConfig() *LoadConfig {
	return &LoadConfig{
		Chat:      false,
		Print:     false,
		NoControl: false,
	}
}

// Validate rejects flag combinations that name two destinations
func (c *LoadConfig) Validate() error {
	if c.Chat && c.Print {
		return errors.New("--chat and --print cannot be used together")
	}
	return nil
}

// Swapped in tests
var (
	pickSkill                          = tui.Pick
	systemClipboard delivery.Clipboard = delivery.SystemClipboard{}
	newChatHost                        = func(cfg config.Config) delivery.ChatHost {
		return delivery.NewCommandHost(cfg.Chat.Command, cfg.Chat.Stdin)
	}
)

var loadCmd = &cobra.Command{
	Use:   "load [skill]",
	Short: "Load a skill into the clipboard or chat",
	Long: `Compose the payload of a skill and copy it to the clipboard. Without a skill
name an interactive picker lists every selectable skill.

The control skill, if present, is appended as a one-line italic footnote.

Examples:
  aiskills load
  aiskills load review
  aiskills load review --chat
  aiskills load review --print | pbcopy`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		flags := getLoadConfigFromFlags(cmd)
		if err := flags.Validate(); err != nil {
			return err
		}
		return runLoad(cmd.Context(), cfg, flags, args)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <skill>",
	Short: "Print the composed payload of a skill",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		flags := getLoadConfigFromFlags(cmd)
		flags.Print = true
		return runLoad(cmd.Context(), cfg, flags, args)
	},
}

func init() {
	defaults := NewLoadConfig()
	loadCmd.Flags().Bool("chat", defaults.Chat, "Open the chat host pre-filled with the payload, falling back to the clipboard")
	loadCmd.Flags().BoolP("print", "p", defaults.Print, "Write the payload to stdout instead of the clipboard")
	loadCmd.Flags().Bool("no-control", defaults.NoControl, "Leave out the control skill footnote")

	showCmd.Flags().Bool("no-control", defaults.NoControl, "Leave out the control skill footnote")
}

// getLoadConfigFromFlags extracts load configuration from command flags
func getLoadConfigFromFlags(cmd *cobra.Command) *LoadConfig {
	config := NewLoadConfig()

	if chat, err := cmd.Flags().GetBool("chat"); err == nil {
		config.Chat = chat
	}
	if printPayload, err := cmd.Flags().GetBool("print"); err == nil {
		config.Print = printPayload
	}
	if noControl, err := cmd.Flags().GetBool("no-control"); err == nil {
		config.NoControl = noControl
	}

	return config
}

func runLoad(ctx context.Context, cfg config.Config, flags *LoadConfig, args []string) error {
	result, err := scanSkills(ctx, cfg)
	if err != nil {
		return err
	}

	selected, err := selectSkill(ctx, result, args)
	if err != nil {
		return err
	}
	if selected == nil {
		presenter.Info("No skill selected")
		return nil
	}

	opts := payload.DefaultOptions()
	opts.IncludeControl = cfg.AlwaysIncludeControl && !flags.NoControl

	var text string
	_ = telemetry.WithSpan(ctx, "payload.compose", func(context.Context) error {
		text = payload.Compose(result, selected, opts)
		return nil
	}, attribute.String("skill.name", selected.Name), attribute.Bool("payload.control", opts.IncludeControl))

	logger.G(ctx).WithField("skill", selected.Filename).WithField("bytes", len(text)).Debug("composed payload")

	if flags.Print {
		presenter.Payload(text)
		return nil
	}

	if !flags.Chat {
		if _, err := delivery.CopyToClipboard(ctx, text, systemClipboard); err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("Skill %q copied to clipboard", selected.Name))
		return nil
	}

	res, err := delivery.Deliver(ctx, text, newChatHost(cfg), systemClipboard)
	if err != nil {
		return err
	}
	if res.FellBack() {
		logger.G(ctx).WithError(res.HostErr).Debug("chat host rejected payload")
		presenter.Warning(fmt.Sprintf("Chat host unavailable: %v", res.HostErr))
		presenter.Success(fmt.Sprintf("%s ready in the clipboard. Paste it into the chat, add context, then send", selected.Name))
		return nil
	}
	presenter.Success(fmt.Sprintf("%s loaded into chat. Add context and send", selected.Name))
	return nil
}

// selectSkill resolves the named skill or asks the picker. A dismissed
// picker yields nil without an error.
func selectSkill(ctx context.Context, result *skills.ScanResult, args []string) (*skills.Skill, error) {
	if len(result.Selectable()) == 0 {
		return nil, errors.Errorf("no skills found in %s", result.Dir)
	}

	if len(args) > 0 {
		return result.FindByName(args[0])
	}

	return pickSkill(ctx, result.Selectable())
}
