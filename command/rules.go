package command

import (
	"math/rand"

	"github.com/milk9111/hexskirmish/ecs"
	"github.com/milk9111/hexskirmish/ecs/component"
)

// DrawSource picks the tray column a figure draws from. Returning false means
// the choice is not available yet; the roll then stays pending in the queue.
type DrawSource interface {
	Column(w *ecs.World, figure ecs.Entity) (component.TrayColumn, bool)
}

// ShieldHook reduces incoming attack damage for target. It runs after the
// modifiers are applied; nil leaves damage unchanged.
type ShieldHook func(w *ecs.World, target ecs.Entity, damage int) int

// Rules are the pluggable parts of combat resolution.
type Rules struct {
	Draw   DrawSource
	Shield ShieldHook
}

// DefaultRules always draws the neutral column and applies no shield.
func DefaultRules() Rules {
	return Rules{Draw: FixedColumn(component.ColumnNeutral)}
}

func (r *Rules) column(w *ecs.World, figure ecs.Entity) (component.TrayColumn, bool) {
	if r == nil || r.Draw == nil {
		return component.ColumnNeutral, true
	}
	return r.Draw.Column(w, figure)
}

func (r *Rules) shield(w *ecs.World, target ecs.Entity, damage int) int {
	if r == nil || r.Shield == nil {
		return damage
	}
	return max(r.Shield(w, target, damage), 0)
}

// FixedColumn always draws the same column.
type FixedColumn component.TrayColumn

func (f FixedColumn) Column(*ecs.World, ecs.Entity) (component.TrayColumn, bool) {
	return component.TrayColumn(f), true
}

// RandomColumn picks a column uniformly from a seeded source, so a run is
// reproducible from its seed.
type RandomColumn struct {
	rng *rand.Rand
}

func NewRandomColumn(seed int64) *RandomColumn {
	return &RandomColumn{rng: rand.New(rand.NewSource(seed))}
}

func (r *RandomColumn) Column(*ecs.World, ecs.Entity) (component.TrayColumn, bool) {
	return component.TrayColumn(r.rng.Intn(3)), true
}

// ConditionColumns draws Minus for a muddled figure and Plus for a
// strengthened one; both or neither cancel out to Neutral.
type ConditionColumns struct{}

func (ConditionColumns) Column(w *ecs.World, figure ecs.Entity) (component.TrayColumn, bool) {
	cond := ecs.MustGet(w, figure, component.ConditionsComponent.Kind())
	muddled, strong := cond.Has(component.Muddle), cond.Has(component.Strengthen)
	switch {
	case muddled && !strong:
		return component.ColumnMinus, true
	case strong && !muddled:
		return component.ColumnPlus, true
	}
	return component.ColumnNeutral, true
}

// PromptColumn waits for a driver to supply each column, e.g. from a key press
// or a physical card. Until Provide is called a roll stays pending.
type PromptColumn struct {
	choices []component.TrayColumn
}

// Provide queues the column for the next roll.
func (p *PromptColumn) Provide(col component.TrayColumn) {
	p.choices = append(p.choices, col)
}

// Waiting reports whether no column has been supplied.
func (p *PromptColumn) Waiting() bool {
	return len(p.choices) == 0
}

func (p *PromptColumn) Column(*ecs.World, ecs.Entity) (component.TrayColumn, bool) {
	if len(p.choices) == 0 {
		return 0, false
	}
	col := p.choices[0]
	p.choices = p.choices[1:]
	return col, true
}
