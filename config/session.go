package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/hexskirmish/command"
	"github.com/milk9111/hexskirmish/prefabs"
	"github.com/milk9111/hexskirmish/scenario"
	"github.com/milk9111/hexskirmish/script"
)

// Game is everything a driver needs to play the configured scenario.
type Game struct {
	Session  *scenario.Session
	Producer *script.Producer
	// Prompt is set when draw_policy is "prompt".
	Prompt *command.PromptColumn
}

// Open loads the configured scenario and its script. The script key
// overrides the one named in the scenario; a scenario without either has no
// producer.
func (c Config) Open(logger *zap.Logger) (*Game, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	spec, err := prefabs.LoadScenario(c.Scenario)
	if err != nil {
		return nil, err
	}
	rules, prompt := c.Rules()
	session, err := scenario.New(spec, scenario.WithRules(rules), scenario.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", c.Scenario, err)
	}

	g := &Game{Session: session, Prompt: prompt}
	name := c.Script
	if name == "" {
		name = spec.Script
	}
	if name != "" {
		if g.Producer, err = script.Load(name, script.WithLogger(logger)); err != nil {
			return nil, err
		}
	}
	return g, nil
}
