package moc2d

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Lattice tiles universes on a regular rectangular grid centered at
// (X0, Y0) with uniform pitch (PitchX, PitchY). Universes[j][i] is the
// universe id of the lattice cell in column i, row j, with row 0 at the
// bottom. A lattice is also a universe for descent purposes and shares
// its id with its entry in the universe registry.
type Lattice struct {
	ID     int
	NumX   int
	NumY   int
	PitchX Real
	PitchY Real
	X0     Real
	Y0     Real

	Universes [][]int // [NumY][NumX], row 0 = bottom

	fsrMap [][]int
}

// NewLattice creates a lattice from a bottom-to-top universe grid.
func NewLattice(id, numX, numY int, pitchX, pitchY, x0, y0 Real, universes [][]int) *Lattice {
	return &Lattice{
		ID:        id,
		NumX:      numX,
		NumY:      numY,
		PitchX:    pitchX,
		PitchY:    pitchY,
		X0:        x0,
		Y0:        y0,
		Universes: universes,
	}
}

// Lower-left corner of the tiling in the lattice's frame.
func (l *Lattice) xMin() Real { return l.X0 - Real(l.NumX)*l.PitchX/2 }
func (l *Lattice) yMin() Real { return l.Y0 - Real(l.NumY)*l.PitchY/2 }

// UniverseAt returns the universe id of lattice cell (i, j).
func (l *Lattice) UniverseAt(i, j int) int { return l.Universes[j][i] }

// FSROffset returns the FSR map entry of lattice cell (i, j).
func (l *Lattice) FSROffset(i, j int) int { return l.fsrMap[j][i] }

// findCell locates the chain's tail within the lattice: it computes the
// lattice cell indices from the tail point, stamps the tail as a
// lattice frame, translates into the cell-local frame, and descends
// into the contained universe. Returns nil when the point lies outside
// the lattice bounds.
func (l *Lattice) findCell(coords *LocalCoords, g *Geometry) *Cell {
	tail := coords.Tail()
	p := tail.Point

	i := int(math.Floor((p.X - l.xMin()) / l.PitchX))
	j := int(math.Floor((p.Y - l.yMin()) / l.PitchY))
	if i < 0 || i >= l.NumX || j < 0 || j >= l.NumY {
		return nil
	}

	tail.kind = coordLattice
	tail.Lattice = l.ID
	tail.LatX = i
	tail.LatY = j

	// Center of lattice cell (i, j) in the lattice frame.
	cx := l.xMin() + (Real(i)+0.5)*l.PitchX
	cy := l.yMin() + (Real(j)+0.5)*l.PitchY

	child := l.UniverseAt(i, j)
	coords.push(CoordFrame{
		Point:    v2.Vec{X: p.X - cx, Y: p.Y - cy},
		Universe: child,
	})
	return g.universes[child].dispatchFindCell(coords, g)
}

// findNextLatticeCell advances a chain whose tail sits in this lattice
// across the boundary of its current lattice cell along the trajectory
// phi, then relocates it. Returns nil when the crossing leaves the
// lattice entirely (the caller ascends to the next outer lattice).
func (l *Lattice) findNextLatticeCell(coords *LocalCoords, phi Real, g *Geometry) *Cell {
	tail := coords.Tail()
	p := tail.Point
	cos := math.Cos(phi)
	sin := math.Sin(phi)

	// Distance to the exit edges of the current (i, j) cell along the
	// trajectory. The point may already sit a TinyMove past an edge
	// when an inner lattice stepped it across a shared boundary; the
	// resulting tiny negative distance self-corrects at the nudge.
	xLo := l.xMin() + Real(tail.LatX)*l.PitchX
	yLo := l.yMin() + Real(tail.LatY)*l.PitchY
	dist := math.Inf(1)
	if cos > 0 {
		dist = math.Min(dist, (xLo+l.PitchX-p.X)/cos)
	} else if cos < 0 {
		dist = math.Min(dist, (xLo-p.X)/cos)
	}
	if sin > 0 {
		dist = math.Min(dist, (yLo+l.PitchY-p.Y)/sin)
	} else if sin < 0 {
		dist = math.Min(dist, (yLo-p.Y)/sin)
	}
	if !isFinite(dist) {
		return nil
	}

	// Move to the edge plus a tiny bit into the next region.
	coords.UpdateMostLocal(p.Add(v2.Vec{X: cos, Y: sin}.MulScalar(dist)))
	coords.AdjustCoords(cos*TinyMove, sin*TinyMove)
	return l.findCell(coords, g)
}

// computeFSRMaps labels the lattice cells depth-first, rows bottom to
// top, and returns the subtree's total FSR count.
func (l *Lattice) computeFSRMaps(g *Geometry) int {
	l.fsrMap = make([][]int, l.NumY)
	count := 0
	for j := 0; j < l.NumY; j++ {
		l.fsrMap[j] = make([]int, l.NumX)
		for i := 0; i < l.NumX; i++ {
			l.fsrMap[j][i] = count
			count += g.universes[l.UniverseAt(i, j)].computeFSRMaps(g)
		}
	}
	return count
}

func (l *Lattice) String() string {
	return fmt.Sprintf("Lattice(id=%d, %dx%d, pitch=(%g, %g), center=(%g, %g))",
		l.ID, l.NumX, l.NumY, l.PitchX, l.PitchY, l.X0, l.Y0)
}
