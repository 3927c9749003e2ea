package component

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrUnknownCondition = errors.New("component: unknown condition")

// ConditionKind is a status that alters combat until removed.
type ConditionKind uint8

const (
	Invisible ConditionKind = iota
	Strengthen
	Wound
	Poison
	Immobilize
	Disarm
	Muddle

	conditionKindCount
)

var conditionNames = [conditionKindCount]string{
	Invisible:  "invisible",
	Strengthen: "strengthen",
	Wound:      "wound",
	Poison:     "poison",
	Immobilize: "immobilize",
	Disarm:     "disarm",
	Muddle:     "muddle",
}

func (k ConditionKind) String() string {
	if k >= conditionKindCount {
		return fmt.Sprintf("condition(%d)", uint8(k))
	}
	return conditionNames[k]
}

// ConditionKinds lists every known condition in declaration order.
func ConditionKinds() []ConditionKind {
	out := make([]ConditionKind, 0, conditionKindCount)
	for k := ConditionKind(0); k < conditionKindCount; k++ {
		out = append(out, k)
	}
	return out
}

// ParseConditionKind matches a condition name case-insensitively.
func ParseConditionKind(s string) (ConditionKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range conditionNames {
		if n == name {
			return ConditionKind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCondition, s)
}

func (k ConditionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ConditionKind) UnmarshalText(b []byte) error {
	v, err := ParseConditionKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Conditions holds the active statuses of a figure and the statuses it can
// never receive. Immunities are fixed at creation; an immune kind is never
// active.
type Conditions struct {
	active     uint16
	immunities uint16
}

var ConditionsComponent = NewComponent[Conditions]("conditions")

func NewConditions(immunities ...ConditionKind) *Conditions {
	c := &Conditions{}
	for _, k := range immunities {
		c.immunities |= bit(k)
	}
	return c
}

func bit(k ConditionKind) uint16 {
	return 1 << uint16(k)
}

// Add activates k unless the figure is immune or already has it. It reports
// whether anything changed.
func (c *Conditions) Add(k ConditionKind) bool {
	if c == nil || c.IsImmune(k) || c.Has(k) {
		return false
	}
	c.active |= bit(k)
	return true
}

// Remove deactivates k and reports whether it was active.
func (c *Conditions) Remove(k ConditionKind) bool {
	if c == nil || !c.Has(k) {
		return false
	}
	c.active &^= bit(k)
	return true
}

func (c *Conditions) Has(k ConditionKind) bool {
	return c != nil && c.active&bit(k) != 0
}

func (c *Conditions) IsImmune(k ConditionKind) bool {
	return c != nil && c.immunities&bit(k) != 0
}

// Active returns the active conditions in declaration order.
func (c *Conditions) Active() []ConditionKind {
	return c.list(c.activeMask())
}

// Immunities returns the immunities in declaration order.
func (c *Conditions) Immunities() []ConditionKind {
	if c == nil {
		return nil
	}
	return c.list(c.immunities)
}

func (c *Conditions) activeMask() uint16 {
	if c == nil {
		return 0
	}
	return c.active
}

func (c *Conditions) list(mask uint16) []ConditionKind {
	out := []ConditionKind{}
	for _, k := range ConditionKinds() {
		if mask&bit(k) != 0 {
			out = append(out, k)
		}
	}
	return out
}

// Equal reports whether both sets match; used by snapshot comparisons.
func (c *Conditions) Equal(o *Conditions) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.active == o.active && c.immunities == o.immunities
}

// Names renders the active set for logs and inspection payloads.
func (c *Conditions) Names() []string {
	active := c.Active()
	out := make([]string, 0, len(active))
	for _, k := range active {
		out = append(out, k.String())
	}
	slices.Sort(out)
	return out
}
