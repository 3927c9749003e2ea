package component

import "slices"

// Attack is the intent an attack command records on its source.
type Attack struct {
	Target uint64 `json:"target"`
	Value  int    `json:"value"`
}

// PendingAttack is the transient state of an attack being resolved: the
// intent plus every modifier drawn for it so far.
type PendingAttack struct {
	Attack    *Attack    `json:"attack,omitempty"`
	Modifiers []Modifier `json:"modifiers,omitempty"`
}

var PendingAttackComponent = NewComponent[PendingAttack]("pending_attack")

// Clone returns a deep copy so a snapshot can be restored verbatim.
func (p PendingAttack) Clone() PendingAttack {
	out := PendingAttack{Modifiers: slices.Clone(p.Modifiers)}
	if p.Attack != nil {
		a := *p.Attack
		out.Attack = &a
	}
	return out
}

// Clear drops the attack and its modifiers.
func (p *PendingAttack) Clear() {
	p.Attack = nil
	p.Modifiers = nil
}

// Equal compares content, not identity.
func (p PendingAttack) Equal(o PendingAttack) bool {
	if (p.Attack == nil) != (o.Attack == nil) {
		return false
	}
	if p.Attack != nil && *p.Attack != *o.Attack {
		return false
	}
	return slices.Equal(p.Modifiers, o.Modifiers)
}
