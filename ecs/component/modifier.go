package component

import (
	"fmt"
	"strconv"
	"strings"
)

// ModifierOp is the arithmetic a modifier applies to attack damage.
type ModifierOp uint8

const (
	OpAdd ModifierOp = iota
	OpMultiply
)

// Modifier adjusts an attack's damage. Values are small signed integers.
type Modifier struct {
	Op    ModifierOp `json:"op"`
	Value int        `json:"value"`
}

func AddModifier(v int) Modifier      { return Modifier{Op: OpAdd, Value: v} }
func MultiplyModifier(v int) Modifier { return Modifier{Op: OpMultiply, Value: v} }

func Zero() Modifier     { return AddModifier(0) }
func PlusOne() Modifier  { return AddModifier(1) }
func MinusOne() Modifier { return AddModifier(-1) }
func PlusTwo() Modifier  { return AddModifier(2) }
func MinusTwo() Modifier { return AddModifier(-2) }
func Miss() Modifier     { return MultiplyModifier(0) }
func Crit() Modifier     { return MultiplyModifier(2) }

// Apply returns value adjusted by m.
func (m Modifier) Apply(value int) int {
	switch m.Op {
	case OpMultiply:
		return value * m.Value
	default:
		return value + m.Value
	}
}

// String renders the card notation: +1, -2, 0, x0, x2.
func (m Modifier) String() string {
	if m.Op == OpMultiply {
		return "x" + strconv.Itoa(m.Value)
	}
	if m.Value > 0 {
		return "+" + strconv.Itoa(m.Value)
	}
	return strconv.Itoa(m.Value)
}

func (m Modifier) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// TrayColumn selects which modifier of the active row is drawn.
type TrayColumn uint8

const (
	ColumnMinus TrayColumn = iota
	ColumnNeutral
	ColumnPlus

	trayColumnCount
)

func (c TrayColumn) String() string {
	switch c {
	case ColumnMinus:
		return "minus"
	case ColumnNeutral:
		return "neutral"
	case ColumnPlus:
		return "plus"
	default:
		return fmt.Sprintf("column(%d)", uint8(c))
	}
}

// ParseTrayColumn accepts the names produced by TrayColumn.String and the
// signs "-", "0", "+".
func ParseTrayColumn(s string) (TrayColumn, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minus", "-":
		return ColumnMinus, nil
	case "neutral", "0":
		return ColumnNeutral, nil
	case "plus", "+":
		return ColumnPlus, nil
	}
	return 0, fmt.Errorf("component: unknown tray column %q", s)
}

// TrayRow holds one modifier per column.
type TrayRow [trayColumnCount]Modifier

// DefaultTrayRows is the number of rows in DefaultModifierTray.
const DefaultTrayRows = 6

// ModifierTray is a figure's modifier deck laid out as rows; every draw reads
// the active row and advances to the next one, wrapping around.
type ModifierTray struct {
	ActiveRow int       `json:"active_row"`
	Table     []TrayRow `json:"table"`
}

var ModifierTrayComponent = NewComponent[ModifierTray]("modifier_tray")

// NewModifierTray panics on an empty table: a tray must have something to draw.
func NewModifierTray(rows []TrayRow) *ModifierTray {
	if len(rows) == 0 {
		panic("component: modifier tray needs at least one row")
	}
	table := make([]TrayRow, len(rows))
	copy(table, rows)
	return &ModifierTray{Table: table}
}

// DefaultModifierTray returns the starting tray every figure uses unless its
// prefab overrides it.
func DefaultModifierTray() *ModifierTray {
	return NewModifierTray([]TrayRow{
		{MinusOne(), Zero(), PlusOne()},
		{Miss(), Zero(), PlusOne()},
		{MinusOne(), PlusOne(), PlusTwo()},
		{MinusTwo(), Zero(), Crit()},
		{MinusOne(), MinusOne(), PlusOne()},
		{Miss(), PlusOne(), Crit()},
	})
}

// Rows returns the number of rows in the table.
func (t *ModifierTray) Rows() int {
	if t == nil {
		return 0
	}
	return len(t.Table)
}

// Get reads the active row without advancing.
func (t *ModifierTray) Get(col TrayColumn) Modifier {
	return t.Table[t.ActiveRow][col]
}

// Draw reads the active row and advances the cursor regardless of column.
func (t *ModifierTray) Draw(col TrayColumn) Modifier {
	m := t.Get(col)
	t.ActiveRow = (t.ActiveRow + 1) % len(t.Table)
	return m
}

// SetRow moves the cursor; used to rewind a draw.
func (t *ModifierTray) SetRow(row int) {
	if row < 0 || row >= len(t.Table) {
		panic(fmt.Sprintf("component: tray row %d out of range [0,%d)", row, len(t.Table)))
	}
	t.ActiveRow = row
}
