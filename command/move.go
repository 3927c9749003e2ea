package command

import (
	"fmt"

	"github.com/milk9111/hexskirmish/ecs"
	"github.com/milk9111/hexskirmish/ecs/component"
	"github.com/milk9111/hexskirmish/hex"
)

// MovementKind is carried for reactions and terrain rules; movement itself
// does not interpret it.
type MovementKind uint8

const (
	MoveDefault MovementKind = iota
	MoveJump
	MoveFly
)

func (k MovementKind) String() string {
	switch k {
	case MoveJump:
		return "jump"
	case MoveFly:
		return "fly"
	default:
		return "default"
	}
}

// MoveCommand relocates a figure. Start is captured on execution. Occupancy,
// movement points and terrain cost are the caller's to check.
type MoveCommand struct {
	Figure   ecs.Entity   `json:"figure"`
	To       hex.Coord    `json:"to"`
	Movement MovementKind `json:"movement"`
	Start    *hex.Coord   `json:"start,omitempty"`
}

func Move(figure ecs.Entity, to hex.Coord) MoveCommand {
	return MoveCommand{Figure: figure, To: to}
}

// WithMovement returns a copy using kind.
func (c MoveCommand) WithMovement(kind MovementKind) MoveCommand {
	c.Movement = kind
	return c
}

func (MoveCommand) Kind() Kind { return KindMove }
func (MoveCommand) sealed()    {}

func (c MoveCommand) String() string {
	return fmt.Sprintf("move %s to %s", c.Figure, c.To)
}

func (c MoveCommand) execute(w *ecs.World) (Command, Result) {
	pos := ecs.MustGet(w, c.Figure, component.HexPositionComponent.Kind())
	start := pos.Coord
	relocate(w, c.Figure, pos, c.To)
	c.Start = &start
	return c, done()
}

func (c MoveCommand) undo(w *ecs.World) Command {
	if c.Start == nil {
		panic(notExecuted(c))
	}
	pos := ecs.MustGet(w, c.Figure, component.HexPositionComponent.Kind())
	relocate(w, c.Figure, pos, *c.Start)
	c.Start = nil
	return c
}

// relocate keeps the grid index and the figure's position in step.
func relocate(w *ecs.World, figure ecs.Entity, pos *component.HexPosition, to hex.Coord) {
	if err := w.Grid().Move(pos.Coord, to, pos.Layer, uint64(figure)); err != nil {
		panic(fmt.Errorf("command: move %s: %w", figure, err))
	}
	pos.Coord = to
}
