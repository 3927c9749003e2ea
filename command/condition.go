package command

import (
	"fmt"

	"github.com/milk9111/hexskirmish/ecs"
	"github.com/milk9111/hexskirmish/ecs/component"
)

// AddConditionCommand applies a condition. Changed records whether the figure
// actually gained it, so undo never strips a condition that was already there.
type AddConditionCommand struct {
	Figure    ecs.Entity              `json:"figure"`
	Condition component.ConditionKind `json:"condition"`

	Changed  bool `json:"changed"`
	executed bool
}

func AddCondition(figure ecs.Entity, kind component.ConditionKind) AddConditionCommand {
	return AddConditionCommand{Figure: figure, Condition: kind}
}

func (AddConditionCommand) Kind() Kind { return KindAddCondition }
func (AddConditionCommand) sealed()    {}

func (c AddConditionCommand) String() string {
	return fmt.Sprintf("add %s to %s", c.Condition, c.Figure)
}

func (c AddConditionCommand) execute(w *ecs.World) (Command, Result) {
	cond := ecs.MustGet(w, c.Figure, component.ConditionsComponent.Kind())
	c.Changed = cond.Add(c.Condition)
	c.executed = true
	return c, done()
}

func (c AddConditionCommand) undo(w *ecs.World) Command {
	if !c.executed {
		panic(notExecuted(c))
	}
	cond := ecs.MustGet(w, c.Figure, component.ConditionsComponent.Kind())
	if c.Changed {
		cond.Remove(c.Condition)
	}
	return AddCondition(c.Figure, c.Condition)
}

// RemoveConditionCommand clears a condition; undo restores it only if this
// command was the one that removed it.
type RemoveConditionCommand struct {
	Figure    ecs.Entity              `json:"figure"`
	Condition component.ConditionKind `json:"condition"`

	Changed  bool `json:"changed"`
	executed bool
}

func RemoveCondition(figure ecs.Entity, kind component.ConditionKind) RemoveConditionCommand {
	return RemoveConditionCommand{Figure: figure, Condition: kind}
}

func (RemoveConditionCommand) Kind() Kind { return KindRemoveCondition }
func (RemoveConditionCommand) sealed()    {}

func (c RemoveConditionCommand) String() string {
	return fmt.Sprintf("remove %s from %s", c.Condition, c.Figure)
}

func (c RemoveConditionCommand) execute(w *ecs.World) (Command, Result) {
	cond := ecs.MustGet(w, c.Figure, component.ConditionsComponent.Kind())
	c.Changed = cond.Remove(c.Condition)
	c.executed = true
	return c, done()
}

func (c RemoveConditionCommand) undo(w *ecs.World) Command {
	if !c.executed {
		panic(notExecuted(c))
	}
	cond := ecs.MustGet(w, c.Figure, component.ConditionsComponent.Kind())
	if c.Changed {
		cond.Add(c.Condition)
	}
	return RemoveCondition(c.Figure, c.Condition)
}
