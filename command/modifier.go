package command

import (
	"fmt"

	"github.com/milk9111/hexskirmish/ecs"
	"github.com/milk9111/hexskirmish/ecs/component"
)

// RollModifierCommand draws from the figure's modifier tray and appends the
// result to its pending attack.
type RollModifierCommand struct {
	Figure ecs.Entity `json:"figure"`

	Column      *component.TrayColumn `json:"column,omitempty"`
	PreviousRow *int                  `json:"previous_row,omitempty"`
	Modifier    *component.Modifier   `json:"modifier,omitempty"`
}

func RollModifier(figure ecs.Entity) RollModifierCommand {
	return RollModifierCommand{Figure: figure}
}

func (RollModifierCommand) Kind() Kind { return KindRollModifier }
func (RollModifierCommand) sealed()    {}

func (c RollModifierCommand) String() string {
	if c.Modifier != nil {
		return fmt.Sprintf("roll modifier for %s: %s", c.Figure, c.Modifier)
	}
	return fmt.Sprintf("roll modifier for %s", c.Figure)
}

func (c RollModifierCommand) execute(w *ecs.World, r *Rules) (Command, Result) {
	tray := ecs.MustGet(w, c.Figure, component.ModifierTrayComponent.Kind())
	pa := ecs.MustGet(w, c.Figure, component.PendingAttackComponent.Kind())

	var col component.TrayColumn
	if c.Column != nil {
		// Redo after undo replays the column drawn the first time.
		col = *c.Column
	} else {
		var ok bool
		if col, ok = r.column(w, c.Figure); !ok {
			return c, pending()
		}
	}

	row := tray.ActiveRow
	m := tray.Draw(col)
	pa.Modifiers = append(pa.Modifiers, m)

	c.Column = &col
	c.PreviousRow = &row
	c.Modifier = &m
	return c, done()
}

func (c RollModifierCommand) undo(w *ecs.World) Command {
	if c.PreviousRow == nil {
		panic(notExecuted(c))
	}
	tray := ecs.MustGet(w, c.Figure, component.ModifierTrayComponent.Kind())
	pa := ecs.MustGet(w, c.Figure, component.PendingAttackComponent.Kind())

	tray.SetRow(*c.PreviousRow)
	if n := len(pa.Modifiers); n > 0 {
		pa.Modifiers = pa.Modifiers[:n-1]
		if len(pa.Modifiers) == 0 {
			pa.Modifiers = nil
		}
	}
	return RollModifierCommand{Figure: c.Figure, Column: c.Column}
}
