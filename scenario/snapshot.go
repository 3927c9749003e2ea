package scenario

import (
	"fmt"
	"slices"

	"github.com/milk9111/hexskirmish/command"
	"github.com/milk9111/hexskirmish/ecs"
	"github.com/milk9111/hexskirmish/ecs/component"
)

// Snapshot is a read-only, JSON-friendly view of a session.
type Snapshot struct {
	Scenario string        `json:"scenario"`
	Round    int           `json:"round"`
	Phase    string        `json:"phase"`
	Figures  []FigureView  `json:"figures"`
	History  []CommandView `json:"history"`
	Pending  []CommandView `json:"pending"`
}

type FigureView struct {
	Name       string   `json:"name"`
	Entity     string   `json:"entity"`
	Team       string   `json:"team"`
	Q          int      `json:"q"`
	R          int      `json:"r"`
	Health     int      `json:"health"`
	MaxHealth  int      `json:"max_health"`
	Range      int      `json:"range"`
	Attack     int      `json:"attack"`
	Conditions []string `json:"conditions"`
	Immunities []string `json:"immunities,omitempty"`
	TrayRow    int      `json:"tray_row"`
	Targeting  string   `json:"targeting,omitempty"`
	Modifiers  []string `json:"modifiers,omitempty"`
}

type CommandView struct {
	Kind command.Kind `json:"kind"`
	Text string       `json:"text"`
}

// Snapshot captures the session. History is most recent first.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Scenario: s.spec.Name,
		Round:    s.rounds,
		Phase:    s.round.Current(),
		Figures:  make([]FigureView, 0, len(s.order)),
		History:  make([]CommandView, 0, s.queue.HistoryLen()),
	}
	for _, name := range s.order {
		if v, ok := s.FigureView(name); ok {
			snap.Figures = append(snap.Figures, v)
		}
	}
	for c := range s.queue.History() {
		snap.History = append(snap.History, s.describe(c))
	}
	for _, c := range s.queue.Pending() {
		snap.Pending = append(snap.Pending, s.describe(c))
	}
	return snap
}

// FigureView reports one figure. Figures whose entity is gone are skipped.
func (s *Session) FigureView(name string) (FigureView, bool) {
	e, ok := s.figures[name]
	if !ok || !ecs.IsAlive(s.world, e) {
		return FigureView{}, false
	}
	w := s.world
	fig := ecs.MustGet(w, e, component.FigureComponent.Kind())
	hp := ecs.MustGet(w, e, component.HealthComponent.Kind())
	cond := ecs.MustGet(w, e, component.ConditionsComponent.Kind())
	tray := ecs.MustGet(w, e, component.ModifierTrayComponent.Kind())
	pos := ecs.MustGet(w, e, component.HexPositionComponent.Kind())
	pa := ecs.MustGet(w, e, component.PendingAttackComponent.Kind())

	v := FigureView{
		Name:       fig.Name,
		Entity:     e.String(),
		Team:       fig.Team.String(),
		Q:          pos.Coord.Q,
		R:          pos.Coord.R,
		Health:     hp.Current,
		MaxHealth:  hp.Max,
		Range:      command.EffectiveRange(cond, fig.Range),
		Attack:     fig.Attack,
		Conditions: cond.Names(),
		TrayRow:    tray.ActiveRow,
	}
	for _, k := range cond.Immunities() {
		v.Immunities = append(v.Immunities, k.String())
	}
	if pa.Attack != nil {
		v.Targeting = s.names[ecs.Entity(pa.Attack.Target)]
	}
	for _, m := range pa.Modifiers {
		v.Modifiers = append(v.Modifiers, m.String())
	}
	return v, true
}

// describe renders c with figure names instead of entity handles.
func (s *Session) describe(c command.Command) CommandView {
	n := s.Name
	var text string
	switch c := c.(type) {
	case command.MoveCommand:
		text = fmt.Sprintf("%s moves to %s", n(c.Figure), c.To)
		if c.Movement != command.MoveDefault {
			text += " (" + c.Movement.String() + ")"
		}
	case command.AttackCommand:
		text = fmt.Sprintf("%s attacks %s for %d", n(c.Source), n(c.Target), c.Value)
	case command.RollModifierCommand:
		text = fmt.Sprintf("%s draws a modifier", n(c.Figure))
		if c.Modifier != nil {
			text = fmt.Sprintf("%s draws %s", n(c.Figure), c.Modifier)
		}
	case command.ApplyAttackCommand:
		text = fmt.Sprintf("%s resolves its attack", n(c.Source))
		if c.Damage != nil {
			text = fmt.Sprintf("%s resolves its attack for %d", n(c.Source), *c.Damage)
		}
	case command.SufferDamageCommand:
		text = fmt.Sprintf("%s suffers %d damage", n(c.Target), c.Damage)
		if c.Actual != nil && *c.Actual != c.Damage {
			text += fmt.Sprintf(" (%d taken)", *c.Actual)
		}
	case command.HealCommand:
		text = fmt.Sprintf("%s heals %s for %d", n(c.Source), n(c.Target), c.Amount)
	case command.AddConditionCommand:
		text = fmt.Sprintf("%s gains %s", n(c.Figure), c.Condition)
	case command.RemoveConditionCommand:
		text = fmt.Sprintf("%s loses %s", n(c.Figure), c.Condition)
	default:
		text = c.String()
	}
	return CommandView{Kind: c.Kind(), Text: text}
}

// LivingTeams lists, sorted, the teams that still have a figure above zero
// health.
func (s Snapshot) LivingTeams() []string {
	var teams []string
	for _, f := range s.Figures {
		if f.Health > 0 && !slices.Contains(teams, f.Team) {
			teams = append(teams, f.Team)
		}
	}
	slices.Sort(teams)
	return teams
}
