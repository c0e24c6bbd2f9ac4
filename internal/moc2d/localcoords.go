package moc2d

import (
	"fmt"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// coordKind tags what kind of container a coordinate frame describes.
type coordKind int

const (
	coordUniverse coordKind = iota
	coordLattice
)

// CoordFrame is one level of a point's position in the universe tree.
// Point is expressed in the frame of the enclosing container. For a
// lattice frame, LatX/LatY are the lattice cell indices; for a universe
// frame, Cell is the id of the cell resolved at that level.
type CoordFrame struct {
	Point    v2.Vec
	kind     coordKind
	Universe int
	Lattice  int
	LatX     int
	LatY     int
	Cell     int
}

// LocalCoords is a chain of coordinate frames from the root universe
// down to the deepest level a point has been located in. Frames are
// stored in a slice: index 0 is the head (root frame), the last index
// the tail. Pruning truncates; every level deeper than a frame is a
// descendant of it.
type LocalCoords struct {
	frames []CoordFrame
}

// NewLocalCoords starts a chain at p in the frame of universe id.
func NewLocalCoords(p v2.Vec, universe int) *LocalCoords {
	return &LocalCoords{frames: []CoordFrame{{Point: p, Universe: universe}}}
}

// Head returns the root-level frame (world coordinates).
func (lc *LocalCoords) Head() *CoordFrame { return &lc.frames[0] }

// Tail returns the deepest frame in the chain.
func (lc *LocalCoords) Tail() *CoordFrame { return &lc.frames[len(lc.frames)-1] }

// Depth returns the number of frames in the chain.
func (lc *LocalCoords) Depth() int { return len(lc.frames) }

// Frame returns the frame at level i (0 = head).
func (lc *LocalCoords) Frame(i int) *CoordFrame { return &lc.frames[i] }

// push appends a child frame, descending one universe level.
func (lc *LocalCoords) push(f CoordFrame) {
	lc.frames = append(lc.frames, f)
}

// Truncate prunes the chain to n frames, destroying all deeper levels.
func (lc *LocalCoords) Truncate(n int) {
	if n < 1 {
		n = 1
	}
	if n < len(lc.frames) {
		lc.frames = lc.frames[:n]
	}
}

// Prune destroys every frame below the head.
func (lc *LocalCoords) Prune() { lc.Truncate(1) }

// AdjustCoords translates every frame by the same world vector. The
// lattice tilings are axis-aligned, so a world displacement is the same
// displacement in every local frame.
func (lc *LocalCoords) AdjustCoords(dx, dy Real) {
	for i := range lc.frames {
		lc.frames[i].Point.X += dx
		lc.frames[i].Point.Y += dy
	}
}

// UpdateMostLocal moves the tail to p (in the tail's local frame) and
// shifts every ancestor by the same delta so the chain stays
// consistent up to the head.
func (lc *LocalCoords) UpdateMostLocal(p v2.Vec) {
	tail := lc.Tail()
	lc.AdjustCoords(p.X-tail.Point.X, p.Y-tail.Point.Y)
}

// Clone deep-copies the chain.
func (lc *LocalCoords) Clone() *LocalCoords {
	frames := make([]CoordFrame, len(lc.frames))
	copy(frames, lc.frames)
	return &LocalCoords{frames: frames}
}

// CopyTo overwrites dst with a deep copy of this chain.
func (lc *LocalCoords) CopyTo(dst *LocalCoords) {
	dst.frames = append(dst.frames[:0], lc.frames...)
}

// deepestLattice returns the index of the deepest lattice frame, or -1
// if the chain crosses no lattice.
func (lc *LocalCoords) deepestLattice() int {
	for i := len(lc.frames) - 1; i >= 0; i-- {
		if lc.frames[i].kind == coordLattice {
			return i
		}
	}
	return -1
}

// sameLatticeCells reports whether two chains agree on the lattice cell
// indices at every level where both have a lattice frame. A crossing
// that lands in a different lattice cell must be handled as a lattice
// escape, not a plain surface crossing.
func sameLatticeCells(a, b *LocalCoords) bool {
	n := len(a.frames)
	if len(b.frames) < n {
		n = len(b.frames)
	}
	for i := 0; i < n; i++ {
		if a.frames[i].kind != coordLattice || b.frames[i].kind != coordLattice {
			continue
		}
		if a.frames[i].LatX != b.frames[i].LatX || a.frames[i].LatY != b.frames[i].LatY {
			return false
		}
	}
	return true
}

func (lc *LocalCoords) String() string {
	var sb strings.Builder
	for i, f := range lc.frames {
		if i > 0 {
			sb.WriteString(" -> ")
		}
		if f.kind == coordLattice {
			fmt.Fprintf(&sb, "lat %d (%d,%d) @(%g,%g)", f.Lattice, f.LatX, f.LatY, f.Point.X, f.Point.Y)
		} else {
			fmt.Fprintf(&sb, "univ %d cell %d @(%g,%g)", f.Universe, f.Cell, f.Point.X, f.Point.Y)
		}
	}
	return sb.String()
}
