// Package config loads aiskills settings from config files, environment
// variables and flags through viper, with optional named profiles layered
// on top of the base settings.
package config

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jingkaihe/aiskills/pkg/skills"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. AISKILLS_SKILLS_PATH
	EnvPrefix = "AISKILLS"

	DefaultSkillsPath = skills.DefaultSkillsPath
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "fmt"
)

// Config holds every aiskills setting
type Config struct {
	SkillsPath           string        `mapstructure:"skills_path" yaml:"skills_path"`
	AlwaysIncludeControl bool          `mapstructure:"always_include_control" yaml:"always_include_control"`
	Chat                 ChatConfig    `mapstructure:"chat" yaml:"chat"`
	Mirror               MirrorConfig  `mapstructure:"mirror" yaml:"mirror"`
	LogLevel             string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat            string        `mapstructure:"log_format" yaml:"log_format"`
	Tracing              TracingConfig `mapstructure:"tracing" yaml:"tracing"`

	Profile  string                            `mapstructure:"profile" yaml:"profile,omitempty"`
	Profiles map[string]map[string]interface{} `mapstructure:"profiles" yaml:"profiles,omitempty"`
}

// ChatConfig configures the chat host command
type ChatConfig struct {
	Command []string `mapstructure:"command" yaml:"command"`
	Stdin   bool     `mapstructure:"stdin" yaml:"stdin"`
}

// MirrorConfig configures the prompts directory mirror
type MirrorConfig struct {
	PromptsDir string   `mapstructure:"prompts_dir" yaml:"prompts_dir,omitempty"`
	Patterns   []string `mapstructure:"patterns" yaml:"patterns,omitempty"`
}

// TracingConfig configures OpenTelemetry tracing
type TracingConfig struct {
	Enabled bool    `mapstructure:"enabled" yaml:"enabled"`
	Sampler string  `mapstructure:"sampler" yaml:"sampler"`
	Ratio   float64 `mapstructure:"ratio" yaml:"ratio"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("skills_path", DefaultSkillsPath)
	v.SetDefault("always_include_control", true)
	v.SetDefault("chat.command", []string{"code", "chat"})
	v.SetDefault("chat.stdin", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.sampler", "ratio")
	v.SetDefault("tracing.ratio", 1.0)
}

// Init wires environment variables and config file lookup into v. A
// missing config file is not an error.
func Init(v *viper.Viper) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.aiskills")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// Load unmarshals v and applies the active profile, if any
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if cfg.SkillsPath == "" {
		cfg.SkillsPath = DefaultSkillsPath
	}

	profile := cfg.Profile
	if profile == "" || profile == "default" {
		return cfg, nil
	}

	settings, ok := cfg.Profiles[profile]
	if !ok {
		return cfg, errors.Errorf("profile '%s' not found", profile)
	}
	if err := applyProfile(&cfg, settings); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyProfile(cfg *Config, settings map[string]interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ZeroFields:       false,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create profile decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to apply profile configuration")
	}

	return nil
}
