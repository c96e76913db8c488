package main

import (
	"context"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/aiskills/pkg/config"
	"github.com/jingkaihe/aiskills/pkg/mirror"
	"github.com/jingkaihe/aiskills/pkg/skills"
	"github.com/jingkaihe/aiskills/pkg/telemetry"
)

// loadConfig returns the effective configuration with the profile applied
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// scanSkills reads the configured skills directory. A missing directory
// comes back as skills.ErrDirectoryNotFound for the caller to report.
func scanSkills(ctx context.Context, cfg config.Config) (*skills.ScanResult, error) {
	discovery, err := skills.NewDiscovery(skills.WithSkillsPath(cfg.SkillsPath))
	if err != nil {
		return nil, err
	}

	var result *skills.ScanResult
	err = telemetry.WithSpan(ctx, "skills.scan", func(ctx context.Context) error {
		var scanErr error
		result, scanErr = discovery.DiscoverSkills(ctx)
		if result != nil {
			telemetry.SetAttributes(ctx, attribute.Int("skills.count", len(result.Skills)))
		}
		return scanErr
	}, attribute.String("skills.dir", discovery.Dir()))

	return result, err
}

// newMirror builds the prompts directory mirror from configuration
func newMirror(cfg config.Config) (*mirror.Mirror, error) {
	return mirror.New(
		mirror.WithPromptsDir(cfg.Mirror.PromptsDir),
		mirror.WithPatterns(cfg.Mirror.Patterns...),
	)
}
