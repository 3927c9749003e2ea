// Package command implements the reversible action engine: every game action
// is a Command value that can be executed against a world, recorded, undone
// and replayed. Executing a command may produce follow-up commands, which the
// Queue schedules ahead of anything already pending.
package command

import (
	"errors"
	"fmt"

	"github.com/milk9111/hexskirmish/ecs"
)

var (
	ErrUnknownCommand = errors.New("command: unknown command")
	ErrNotExecuted    = errors.New("command: undo of a command that never executed")
)

// Kind names a command variant.
type Kind string

const (
	KindMove            Kind = "move"
	KindAttack          Kind = "attack"
	KindRollModifier    Kind = "roll_modifier"
	KindApplyAttack     Kind = "apply_attack"
	KindSufferDamage    Kind = "suffer_damage"
	KindHeal            Kind = "heal"
	KindAddCondition    Kind = "add_condition"
	KindRemoveCondition Kind = "remove_condition"
)

// Command is the closed set of game actions. Implementations are value types
// declared in this package; each carries its inputs plus whatever state it
// captures while executing so it can be undone exactly.
type Command interface {
	Kind() Kind
	fmt.Stringer
	sealed()
}

// Status tells the queue what to do with a command after it executed.
type Status uint8

const (
	// StatusDone moves the command into history and schedules its follow-ups.
	StatusDone Status = iota
	// StatusPending leaves the command at the front of the queue, untouched by
	// history, because it is waiting on input from outside the engine.
	StatusPending
)

func (s Status) String() string {
	if s == StatusPending {
		return "pending"
	}
	return "done"
}

type Result struct {
	Status   Status
	FollowUp []Command
}

func done(follow ...Command) Result {
	return Result{Status: StatusDone, FollowUp: follow}
}

func pending() Result {
	return Result{Status: StatusPending}
}

// execute runs c against w and returns the command as mutated by execution.
func execute(w *ecs.World, r *Rules, c Command) (Command, Result) {
	switch c := c.(type) {
	case MoveCommand:
		return c.execute(w)
	case AttackCommand:
		return c.execute(w)
	case RollModifierCommand:
		return c.execute(w, r)
	case ApplyAttackCommand:
		return c.execute(w, r)
	case SufferDamageCommand:
		return c.execute(w)
	case HealCommand:
		return c.execute(w)
	case AddConditionCommand:
		return c.execute(w)
	case RemoveConditionCommand:
		return c.execute(w)
	}
	panic(fmt.Errorf("%w: %T", ErrUnknownCommand, c))
}

// undo reverts what c changed in w and returns c as it looked before it was
// executed, ready to be executed again.
func undo(w *ecs.World, c Command) Command {
	switch c := c.(type) {
	case MoveCommand:
		return c.undo(w)
	case AttackCommand:
		return c.undo(w)
	case RollModifierCommand:
		return c.undo(w)
	case ApplyAttackCommand:
		return c.undo(w)
	case SufferDamageCommand:
		return c.undo(w)
	case HealCommand:
		return c.undo(w)
	case AddConditionCommand:
		return c.undo(w)
	case RemoveConditionCommand:
		return c.undo(w)
	}
	panic(fmt.Errorf("%w: %T", ErrUnknownCommand, c))
}

func notExecuted(c Command) error {
	return fmt.Errorf("%w: %s", ErrNotExecuted, c)
}
