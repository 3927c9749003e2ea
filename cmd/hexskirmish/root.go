package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/milk9111/hexskirmish/config"
)

var (
	cfgFile string
	v       = viper.New()
	cfg     config.Config
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "hexskirmish",
	Short: "Headless driver for hex skirmish scenarios",
	Long: `Loads a scenario from prefabs/, plays it with its monster script and
serves the running session for inspection. The graphical viewer is the
module's root binary.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(v, cfgFile); err != nil {
			return err
		}
		logger, err = config.NewLogger(cfg.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (yaml)")
	f.String("scenario", "", "scenario file in prefabs/")
	f.String("script", "", "monster script in prefabs/scripts/, overrides the scenario's")
	f.String("draw-policy", "", "modifier column policy: neutral, random, conditions or prompt")
	f.Int64("seed", 0, "seed for the random draw policy")
	f.String("log-level", "", "debug, info, warn or error")

	for key, name := range map[string]string{
		"scenario":    "scenario",
		"script":      "script",
		"draw_policy": "draw-policy",
		"seed":        "seed",
		"log_level":   "log-level",
	} {
		_ = v.BindPFlag(key, f.Lookup(name))
	}
}
