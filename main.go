package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
	"golang.design/x/clipboard"

	"github.com/milk9111/hexskirmish/common"
	"github.com/milk9111/hexskirmish/config"
	"github.com/milk9111/hexskirmish/prefabs"
)

func main() {
	configPath := flag.String("config", "", "config file (yaml)")
	scenarioName := flag.String("scenario", "", "scenario in prefabs/ (overrides config)")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	cfg, err := config.Load(nil, *configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *scenarioName != "" {
		cfg.Scenario = *scenarioName
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	game, err := NewGame(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open scenario", zap.String("scenario", cfg.Scenario), zap.Error(err))
	}

	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable, history copy disabled", zap.Error(err))
	} else {
		game.clipboard = true
	}

	if cfg.Watch {
		if dirs := prefabs.OverrideDirs(); len(dirs) > 0 {
			w, err := prefabs.NewWatcher(dirs...)
			if err != nil {
				logger.Warn("failed to watch prefabs", zap.Error(err))
			} else {
				defer w.Close()
				game.watcher = w
			}
		}
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.BaseWidth, common.BaseHeight)
	ebiten.SetWindowTitle("hexskirmish")

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("game exited", zap.Error(err))
	}
}
