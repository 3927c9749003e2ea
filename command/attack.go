package command

import (
	"errors"
	"fmt"

	"github.com/milk9111/hexskirmish/ecs"
	"github.com/milk9111/hexskirmish/ecs/component"
)

var ErrNoPendingAttack = errors.New("command: no pending attack")

// AttackCommand starts resolving an attack: it records the intent on the
// source and schedules a modifier roll followed by the damage application.
type AttackCommand struct {
	Source ecs.Entity `json:"source"`
	Target ecs.Entity `json:"target"`
	Value  int        `json:"value"`

	Prior *component.PendingAttack `json:"prior,omitempty"`
}

func Attack(source, target ecs.Entity, value int) AttackCommand {
	return AttackCommand{Source: source, Target: target, Value: value}
}

func (AttackCommand) Kind() Kind { return KindAttack }
func (AttackCommand) sealed()    {}

func (c AttackCommand) String() string {
	return fmt.Sprintf("attack %s -> %s for %d", c.Source, c.Target, c.Value)
}

func (c AttackCommand) execute(w *ecs.World) (Command, Result) {
	pa := ecs.MustGet(w, c.Source, component.PendingAttackComponent.Kind())
	prior := pa.Clone()
	c.Prior = &prior

	pa.Attack = &component.Attack{Target: uint64(c.Target), Value: c.Value}
	pa.Modifiers = nil

	return c, done(RollModifier(c.Source), ApplyAttack(c.Source))
}

func (c AttackCommand) undo(w *ecs.World) Command {
	if c.Prior == nil {
		panic(notExecuted(c))
	}
	pa := ecs.MustGet(w, c.Source, component.PendingAttackComponent.Kind())
	*pa = c.Prior.Clone()
	c.Prior = nil
	return c
}

// ApplyAttackCommand turns the source's pending attack into concrete damage
// and hands it to the target. The pending attack is consumed.
type ApplyAttackCommand struct {
	Source ecs.Entity `json:"source"`

	Damage *int                     `json:"damage,omitempty"`
	Prior  *component.PendingAttack `json:"prior,omitempty"`
}

func ApplyAttack(source ecs.Entity) ApplyAttackCommand {
	return ApplyAttackCommand{Source: source}
}

func (ApplyAttackCommand) Kind() Kind { return KindApplyAttack }
func (ApplyAttackCommand) sealed()    {}

func (c ApplyAttackCommand) String() string {
	if c.Damage != nil {
		return fmt.Sprintf("apply attack of %s (%d damage)", c.Source, *c.Damage)
	}
	return fmt.Sprintf("apply attack of %s", c.Source)
}

func (c ApplyAttackCommand) execute(w *ecs.World, r *Rules) (Command, Result) {
	pa := ecs.MustGet(w, c.Source, component.PendingAttackComponent.Kind())
	if pa.Attack == nil {
		panic(fmt.Errorf("%w on %s", ErrNoPendingAttack, c.Source))
	}
	target := ecs.Entity(pa.Attack.Target)
	cond := ecs.MustGet(w, target, component.ConditionsComponent.Kind())

	damage := ResolveDamage(pa.Attack.Value, cond.Has(component.Poison), pa.Modifiers)
	damage = r.shield(w, target, damage)

	prior := pa.Clone()
	c.Prior = &prior
	c.Damage = &damage
	pa.Clear()

	return c, done(SufferDamage(c.Source, target, damage))
}

func (c ApplyAttackCommand) undo(w *ecs.World) Command {
	if c.Prior == nil {
		panic(notExecuted(c))
	}
	pa := ecs.MustGet(w, c.Source, component.PendingAttackComponent.Kind())
	*pa = c.Prior.Clone()
	c.Prior = nil
	c.Damage = nil
	return c
}

// ResolveDamage adds the poison bonus to base, folds the result through mods
// left to right and floors it at zero.
func ResolveDamage(base int, poisoned bool, mods []component.Modifier) int {
	damage := base
	if poisoned {
		damage++
	}
	for _, m := range mods {
		damage = m.Apply(damage)
	}
	return max(damage, 0)
}

// EffectiveRange is the range a figure can attack at: a disarmed figure
// cannot attack at all.
func EffectiveRange(cond *component.Conditions, base int) int {
	if cond.Has(component.Disarm) {
		return 0
	}
	return base
}
