// Package config loads runtime settings from defaults, an optional YAML file
// and HEXSKIRMISH_* environment variables, in rising order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/milk9111/hexskirmish/command"
	"github.com/milk9111/hexskirmish/ecs/component"
	"github.com/milk9111/hexskirmish/prefabs"
)

const EnvPrefix = "HEXSKIRMISH"

// Draw policies accepted by draw_policy.
const (
	DrawNeutral    = "neutral"
	DrawRandom     = "random"
	DrawConditions = "conditions"
	DrawPrompt     = "prompt"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Scenario   string `mapstructure:"scenario"`
	Script     string `mapstructure:"script"`
	DrawPolicy string `mapstructure:"draw_policy"`
	Seed       int64  `mapstructure:"seed"`
	Addr       string `mapstructure:"addr"`
	LogLevel   string `mapstructure:"log_level"`
	Watch      bool   `mapstructure:"watch"`
}

// SetDefaults registers every key so environment variables resolve even
// without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("scenario", prefabs.DefaultScenario)
	v.SetDefault("script", "")
	v.SetDefault("draw_policy", DrawNeutral)
	v.SetDefault("seed", 1)
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("watch", false)
}

// Load reads settings into v (a fresh instance when nil). An empty path
// skips the config file.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(c.DrawPolicy) {
	case DrawNeutral, DrawRandom, DrawConditions, DrawPrompt:
	default:
		return fmt.Errorf("%w: draw_policy %q", ErrInvalidConfig, c.DrawPolicy)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Rules builds the combat rules for the configured draw policy. The prompt
// policy's column source is returned so a driver can feed it.
func (c Config) Rules() (command.Rules, *command.PromptColumn) {
	switch strings.ToLower(c.DrawPolicy) {
	case DrawRandom:
		return command.Rules{Draw: command.NewRandomColumn(c.Seed)}, nil
	case DrawConditions:
		return command.Rules{Draw: command.ConditionColumns{}}, nil
	case DrawPrompt:
		p := &command.PromptColumn{}
		return command.Rules{Draw: p}, p
	}
	return command.Rules{Draw: command.FixedColumn(component.ColumnNeutral)}, nil
}

// NewLogger builds a console logger on stderr at level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	cfg := zap.Config{
		Level:       lvl,
		Development: lvl.Level() == zapcore.DebugLevel,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}
