package moc2d

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// subdivideCells replaces every material cell carrying sector or ring
// counts by a synthetic child universe of refined material cells; the
// original cell becomes a fill cell pointing at it. The pass is
// idempotent: refined cells carry no subdivision counts and converted
// cells are no longer material cells.
func (g *Geometry) subdivideCells() {
	// Synthetic universes are appended to the order slice while we
	// iterate; their cells are never subdivided again.
	for n := 0; n < len(g.universeOrder); n++ {
		u := g.universes[g.universeOrder[n]]
		if u.Kind != UniverseSimple {
			continue
		}
		for _, cid := range u.Cells {
			c := g.cells[cid]
			if c.Kind != CellMaterial || (c.Sectors == 0 && c.Rings == 0) {
				continue
			}
			g.subdivide(c)
		}
	}
}

// subdivide cuts one material cell into rings and sectors.
func (g *Geometry) subdivide(c *Cell) {
	circle := c.circleSurface(g.surfaces)
	var cx, cy Real
	if circle != nil {
		cx, cy = circle.X0, circle.Y0
	}

	// Each entry is the halfspace set of one ring (or the whole cell
	// when no ring refinement applies).
	ringSets := [][]Halfspace{c.Surfaces}
	if c.Rings > 1 {
		if circle == nil {
			logs.Warn(errors.New("ring subdivision requires a circle surface; skipped").
				WithTag("cell_id", c.ID))
		} else {
			ringSets = g.ringHalfspaces(c, circle)
		}
	}

	var sectorPlanes []int
	if c.Sectors >= 2 {
		sectorPlanes = g.sectorPlanes(c.Sectors, cx, cy)
	}

	child := NewUniverse(g.nextUniverseID())
	g.registerUniverse(child)

	for _, ring := range ringSets {
		if len(sectorPlanes) == 0 {
			g.addRefinedCell(child, c.Material, ring)
			continue
		}
		for k := range sectorPlanes {
			hs := make([]Halfspace, len(ring), len(ring)+2)
			copy(hs, ring)
			hs = append(hs,
				Halfspace{Surface: sectorPlanes[k], Sign: 1},
				Halfspace{Surface: sectorPlanes[(k+1)%len(sectorPlanes)], Sign: -1},
			)
			g.addRefinedCell(child, c.Material, hs)
		}
	}

	c.Kind = CellFill
	c.Fill = child.ID
	c.Material = 0
	c.Sectors = 0
	c.Rings = 0
	logs.WithTag("cell_id", c.ID).
		WithTag("universe_id", child.ID).
		Debug("subdivided cell into synthetic universe")
}

// ringHalfspaces builds the halfspace sets of equal-area annuli inside
// the cell's circle. Ring 0 is the innermost disk; every ring keeps the
// parent's other halfspaces.
func (g *Geometry) ringHalfspaces(c *Cell, circle *Surface) [][]Halfspace {
	n := c.Rings
	// Intermediate circles; boundary i separates ring i-1 from ring i.
	bounds := make([]int, n-1)
	for i := 1; i < n; i++ {
		r := circle.R * math.Sqrt(Real(i)/Real(n))
		s := NewCircle(g.nextSurfaceID(), circle.X0, circle.Y0, r, BoundaryNone)
		g.AddSurface(s)
		bounds[i-1] = s.ID
	}

	sets := make([][]Halfspace, n)
	for i := 0; i < n; i++ {
		hs := make([]Halfspace, len(c.Surfaces), len(c.Surfaces)+2)
		copy(hs, c.Surfaces)
		if i < n-1 {
			hs = append(hs, Halfspace{Surface: bounds[i], Sign: -1})
		}
		if i > 0 {
			hs = append(hs, Halfspace{Surface: bounds[i-1], Sign: 1})
		}
		sets[i] = hs
	}
	return sets
}

// sectorPlanes creates the azimuthal cut planes through (cx, cy) at
// angles k*2pi/n. Sector k lies between plane k and plane k+1.
func (g *Geometry) sectorPlanes(n int, cx, cy Real) []int {
	planes := make([]int, n)
	for k := 0; k < n; k++ {
		theta := 2 * math.Pi * Real(k) / Real(n)
		sin, cos := math.Sin(theta), math.Cos(theta)
		// Line through (cx, cy) along (cos, sin):
		// -sin*(x-cx) + cos*(y-cy) = 0.
		s := NewPlane(g.nextSurfaceID(), -sin, cos, sin*cx-cos*cy, BoundaryNone)
		g.AddSurface(s)
		planes[k] = s.ID
	}
	return planes
}

func (g *Geometry) addRefinedCell(u *Universe, material int, hs []Halfspace) {
	cell := NewCellBasic(g.nextCellID(), u.ID, material, 0, 0)
	cell.Surfaces = hs
	g.cells[cell.ID] = cell
	u.AddCell(cell.ID)
}

// Fresh ids for synthetic primitives, one past the largest in use.

func (g *Geometry) nextSurfaceID() int {
	next := 0
	for id := range g.surfaces {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

func (g *Geometry) nextCellID() int {
	next := 0
	for id := range g.cells {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

func (g *Geometry) nextUniverseID() int {
	next := 0
	for id := range g.universes {
		if id >= next {
			next = id + 1
		}
	}
	return next
}
