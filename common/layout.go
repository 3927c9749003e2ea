package common

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/hexskirmish/hex"
)

const (
	BaseWidth  = 1280
	BaseHeight = 720

	// HexSize is the centre-to-corner distance of a board cell in pixels.
	HexSize = 44
)

var sqrt3 = math.Sqrt(3)

// Layout maps pointy-top axial coordinates to screen space.
type Layout struct {
	Size   float64
	Origin cp.Vector
}

// DefaultLayout centres the board in the left part of the base resolution,
// leaving room for the side panel.
func DefaultLayout() Layout {
	return Layout{Size: HexSize, Origin: cp.Vector{X: BaseWidth * 0.4, Y: BaseHeight / 2}}
}

func (l Layout) ToPixel(c hex.Coord) cp.Vector {
	x := l.Size * (sqrt3*float64(c.Q) + sqrt3/2*float64(c.R))
	y := l.Size * 1.5 * float64(c.R)
	return l.Origin.Add(cp.Vector{X: x, Y: y})
}

// FromPixel returns the cell containing p.
func (l Layout) FromPixel(p cp.Vector) hex.Coord {
	d := p.Sub(l.Origin)
	q := (sqrt3/3*d.X - d.Y/3) / l.Size
	r := (2.0 / 3 * d.Y) / l.Size
	return roundAxial(q, r)
}

// Corners returns the six corners of c, clockwise from the upper right.
func (l Layout) Corners(c hex.Coord) [6]cp.Vector {
	center := l.ToPixel(c)
	var out [6]cp.Vector
	for i := range out {
		angle := math.Pi / 180 * (60*float64(i) - 30)
		out[i] = center.Add(cp.ForAngle(angle).Mult(l.Size))
	}
	return out
}

func roundAxial(q, r float64) hex.Coord {
	s := -q - r
	rq, rr, rs := math.Round(q), math.Round(r), math.Round(s)
	dq, dr, ds := math.Abs(rq-q), math.Abs(rr-r), math.Abs(rs-s)
	switch {
	case dq > dr && dq > ds:
		rq = -rr - rs
	case dr > ds:
		rr = -rq - rs
	}
	return hex.Coord{Q: int(rq), R: int(rr)}
}
