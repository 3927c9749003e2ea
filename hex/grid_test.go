package hex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Coord
		want int
	}{
		{"same", Coord{0, 0}, Coord{0, 0}, 0},
		{"neighbour", Coord{0, 0}, Coord{1, -1}, 1},
		{"straight_line", Coord{0, 0}, Coord{3, 0}, 3},
		{"mixed", Coord{-2, 1}, Coord{1, -1}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
			assert.Equal(t, tt.want, Distance(tt.b, tt.a))
		})
	}
}

func TestNeighborsAreAdjacent(t *testing.T) {
	c := Coord{Q: 2, R: -1}
	for _, n := range c.Neighbors() {
		assert.Equal(t, 1, Distance(c, n), "neighbour %s", n)
	}
}

func TestSpiral(t *testing.T) {
	cells := Spiral(Coord{}, 2)
	require.Len(t, cells, 19)

	seen := make(map[Coord]bool, len(cells))
	for _, c := range cells {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
		assert.LessOrEqual(t, Distance(Coord{}, c), 2)
	}
	for _, c := range Ring(Coord{}, 2) {
		assert.Equal(t, 2, Distance(Coord{}, c))
	}
}

func TestGridInsertRemoveLookup(t *testing.T) {
	g := NewGrid()
	c := Coord{Q: 1, R: 1}

	require.NoError(t, g.Insert(c, Figure, 7))
	require.NoError(t, g.Insert(c, Figure, 7), "re-inserting the occupant is a no-op")
	require.NoError(t, g.Insert(c, Ground, 99), "layers are independent")

	err := g.Insert(c, Figure, 8)
	require.ErrorIs(t, err, ErrOccupied)

	id, ok := g.Lookup(c, Figure)
	require.True(t, ok)
	assert.Equal(t, uint64(7), id)

	id, ok = g.Remove(c, Figure)
	require.True(t, ok)
	assert.Equal(t, uint64(7), id)

	_, ok = g.Lookup(c, Figure)
	assert.False(t, ok)
	assert.Equal(t, 1, g.Len(Ground))
}

func TestGridMove(t *testing.T) {
	g := NewGrid()
	a, b, c := Coord{0, 0}, Coord{1, 0}, Coord{2, 0}
	require.NoError(t, g.Insert(a, Figure, 1))
	require.NoError(t, g.Insert(c, Figure, 2))

	require.NoError(t, g.Move(a, b, Figure, 1))
	_, ok := g.Lookup(a, Figure)
	assert.False(t, ok)
	id, _ := g.Lookup(b, Figure)
	assert.Equal(t, uint64(1), id)

	err := g.Move(b, c, Figure, 1)
	require.ErrorIs(t, err, ErrOccupied)
	id, _ = g.Lookup(b, Figure)
	assert.Equal(t, uint64(1), id, "failed move leaves the grid untouched")

	require.ErrorIs(t, g.Move(a, b, Figure, 1), ErrNotOccupant)
}

func TestOccupantsSorted(t *testing.T) {
	g := NewGrid()
	require.NoError(t, g.Insert(Coord{1, 1}, Overlay, 3))
	require.NoError(t, g.Insert(Coord{0, 1}, Overlay, 2))
	require.NoError(t, g.Insert(Coord{5, -1}, Overlay, 1))

	got := g.Occupants(Overlay)
	require.Len(t, got, 3)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{got[0].ID, got[1].ID, got[2].ID})
}

func TestParseLayer(t *testing.T) {
	for _, l := range []Layer{Ground, Overlay, Figure} {
		got, err := ParseLayer(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	_, err := ParseLayer("sky")
	assert.ErrorIs(t, err, ErrInvalidLayer)
}
