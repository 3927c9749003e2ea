package command

import (
	"fmt"

	"github.com/milk9111/hexskirmish/ecs"
	"github.com/milk9111/hexskirmish/ecs/component"
)

// SufferDamageCommand takes hit points from a target. Actual is what the
// target really lost after clamping, and is what undo gives back.
type SufferDamageCommand struct {
	Source ecs.Entity `json:"source"`
	Target ecs.Entity `json:"target"`
	Damage int        `json:"damage"`

	Actual *int `json:"actual,omitempty"`
}

func SufferDamage(source, target ecs.Entity, damage int) SufferDamageCommand {
	return SufferDamageCommand{Source: source, Target: target, Damage: damage}
}

func (SufferDamageCommand) Kind() Kind { return KindSufferDamage }
func (SufferDamageCommand) sealed()    {}

func (c SufferDamageCommand) String() string {
	return fmt.Sprintf("%s suffers %d damage", c.Target, c.Damage)
}

func (c SufferDamageCommand) execute(w *ecs.World) (Command, Result) {
	health := ecs.MustGet(w, c.Target, component.HealthComponent.Kind())
	actual := health.Suffer(c.Damage)
	c.Actual = &actual
	return c, done()
}

func (c SufferDamageCommand) undo(w *ecs.World) Command {
	if c.Actual == nil {
		panic(notExecuted(c))
	}
	health := ecs.MustGet(w, c.Target, component.HealthComponent.Kind())
	health.Current += *c.Actual
	c.Actual = nil
	return c
}

// HealCommand restores hit points. A poisoned target gains nothing.
type HealCommand struct {
	Source ecs.Entity `json:"source"`
	Target ecs.Entity `json:"target"`
	Amount int        `json:"amount"`

	Actual *int `json:"actual,omitempty"`
}

func Heal(source, target ecs.Entity, amount int) HealCommand {
	return HealCommand{Source: source, Target: target, Amount: amount}
}

func (HealCommand) Kind() Kind { return KindHeal }
func (HealCommand) sealed()    {}

func (c HealCommand) String() string {
	return fmt.Sprintf("%s heals %s for %d", c.Source, c.Target, c.Amount)
}

func (c HealCommand) execute(w *ecs.World) (Command, Result) {
	health := ecs.MustGet(w, c.Target, component.HealthComponent.Kind())
	cond := ecs.MustGet(w, c.Target, component.ConditionsComponent.Kind())

	actual := 0
	if !cond.Has(component.Poison) {
		actual = health.Heal(c.Amount)
	}
	c.Actual = &actual
	return c, done()
}

func (c HealCommand) undo(w *ecs.World) Command {
	if c.Actual == nil {
		panic(notExecuted(c))
	}
	health := ecs.MustGet(w, c.Target, component.HealthComponent.Kind())
	health.Current -= *c.Actual
	c.Actual = nil
	return c
}
