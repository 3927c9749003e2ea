package prefabs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/milk9111/hexskirmish/ecs/component"
)

var ErrInvalidModifier = errors.New("prefabs: invalid modifier")

// ParseModifier reads the notation used in tray tables: "+1", "-2", "0" add;
// "x2", "x0" multiply; "miss" and "crit" are aliases for x0 and x2.
func ParseModifier(s string) (component.Modifier, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	switch t {
	case "miss":
		return component.Miss(), nil
	case "crit":
		return component.Crit(), nil
	case "":
		return component.Modifier{}, fmt.Errorf("%w: empty", ErrInvalidModifier)
	}

	op := component.OpAdd
	if rest, ok := strings.CutPrefix(t, "x"); ok {
		op, t = component.OpMultiply, rest
	}
	v, err := strconv.Atoi(t)
	if err != nil || (op == component.OpMultiply && v < 0) {
		return component.Modifier{}, fmt.Errorf("%w: %q", ErrInvalidModifier, s)
	}
	return component.Modifier{Op: op, Value: v}, nil
}

// ParseTray builds tray rows from minus/neutral/plus triples. No rows means
// the figure uses the default tray, reported as nil.
func ParseTray(rows [][]string) ([]component.TrayRow, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]component.TrayRow, len(rows))
	for i, row := range rows {
		if len(row) != len(out[i]) {
			return nil, fmt.Errorf("%w: tray row %d has %d entries, want %d", ErrInvalidModifier, i, len(row), len(out[i]))
		}
		for j, s := range row {
			m, err := ParseModifier(s)
			if err != nil {
				return nil, fmt.Errorf("tray row %d: %w", i, err)
			}
			out[i][j] = m
		}
	}
	return out, nil
}
