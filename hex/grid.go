package hex

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrOccupied     = errors.New("hex: cell occupied")
	ErrNotOccupant  = errors.New("hex: not the occupant")
	ErrInvalidLayer = errors.New("hex: invalid layer")
)

// Layer separates what may share a cell: a ground tile, an overlay (traps,
// obstacles) and a figure can all sit on the same coordinate.
type Layer uint8

const (
	Ground Layer = iota
	Overlay
	Figure

	layerCount
)

func (l Layer) String() string {
	switch l {
	case Ground:
		return "ground"
	case Overlay:
		return "overlay"
	case Figure:
		return "figure"
	default:
		return fmt.Sprintf("layer(%d)", uint8(l))
	}
}

// Valid reports whether l is one of the known layers.
func (l Layer) Valid() bool {
	return l < layerCount
}

// ParseLayer accepts the names produced by Layer.String.
func ParseLayer(s string) (Layer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ground":
		return Ground, nil
	case "overlay":
		return Overlay, nil
	case "figure":
		return Figure, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLayer, s)
}

// Grid maps a coordinate on each layer to at most one occupant. Occupants are
// opaque handles; the hex package does not know about entities.
type Grid struct {
	layers [layerCount]map[Coord]uint64
}

// NewGrid creates an empty index.
func NewGrid() *Grid {
	g := &Grid{}
	for i := range g.layers {
		g.layers[i] = make(map[Coord]uint64)
	}
	return g
}

func (g *Grid) layer(l Layer) map[Coord]uint64 {
	if !l.Valid() {
		panic(fmt.Errorf("%w: %d", ErrInvalidLayer, l))
	}
	if g.layers[l] == nil {
		g.layers[l] = make(map[Coord]uint64)
	}
	return g.layers[l]
}

// Insert places id at c. Inserting the current occupant again is a no-op;
// any other occupant yields ErrOccupied and leaves the grid untouched.
func (g *Grid) Insert(c Coord, l Layer, id uint64) error {
	m := g.layer(l)
	if cur, ok := m[c]; ok {
		if cur == id {
			return nil
		}
		return fmt.Errorf("%w: %s on %s held by %d", ErrOccupied, c, l, cur)
	}
	m[c] = id
	return nil
}

// Remove clears c and returns what was there.
func (g *Grid) Remove(c Coord, l Layer) (uint64, bool) {
	m := g.layer(l)
	id, ok := m[c]
	if ok {
		delete(m, c)
	}
	return id, ok
}

// Lookup returns the occupant of c, if any.
func (g *Grid) Lookup(c Coord, l Layer) (uint64, bool) {
	if g == nil {
		return 0, false
	}
	id, ok := g.layer(l)[c]
	return id, ok
}

// Move relocates id from one cell to another on the same layer. Either both
// halves happen or neither does.
func (g *Grid) Move(from, to Coord, l Layer, id uint64) error {
	m := g.layer(l)
	if cur, ok := m[from]; !ok || cur != id {
		return fmt.Errorf("%w: %d at %s on %s", ErrNotOccupant, id, from, l)
	}
	if from == to {
		return nil
	}
	if cur, ok := m[to]; ok && cur != id {
		return fmt.Errorf("%w: %s on %s held by %d", ErrOccupied, to, l, cur)
	}
	delete(m, from)
	m[to] = id
	return nil
}

// Len returns the number of occupied cells on l.
func (g *Grid) Len(l Layer) int {
	if g == nil {
		return 0
	}
	return len(g.layer(l))
}

// Cell is one occupied coordinate.
type Cell struct {
	Coord Coord  `json:"coord"`
	ID    uint64 `json:"id"`
}

// Occupants lists the occupied cells of l sorted by (R, Q) so output is stable.
func (g *Grid) Occupants(l Layer) []Cell {
	if g == nil {
		return nil
	}
	m := g.layer(l)
	out := make([]Cell, 0, len(m))
	for c, id := range m {
		out = append(out, Cell{Coord: c, ID: id})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Coord.R != out[j].Coord.R {
			return out[i].Coord.R < out[j].Coord.R
		}
		return out[i].Coord.Q < out[j].Coord.Q
	})
	return out
}
