package moc2d

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Halfspace selects one side of a surface: Sign is +1 or -1 and the
// selected side is where Sign * Evaluate(p) >= 0.
type Halfspace struct {
	Surface int
	Sign    int
}

// CellKind enumerates the closed set of cell variants.
type CellKind int

const (
	// CellMaterial is a cell filled with a material (a flat source
	// region leaf, possibly subdivided into sectors and rings first).
	CellMaterial CellKind = iota
	// CellFill is a cell filled with another universe.
	CellFill
)

// Cell is a region of a universe defined by the intersection of signed
// halfspaces. Cells reference surfaces, materials, and universes by id
// only; the geometry registry resolves them at use time.
type Cell struct {
	ID       int
	Universe int // id of the universe this cell belongs to
	Kind     CellKind
	Material int // CellMaterial only
	Fill     int // CellFill only: id of the filling universe
	Surfaces []Halfspace

	// Subdivision counts, consumed by InitializeFlatSourceRegions.
	Sectors int
	Rings   int
}

// NewCellBasic creates a material cell.
func NewCellBasic(id, universe, material int, sectors, rings int) *Cell {
	return &Cell{
		ID:       id,
		Universe: universe,
		Kind:     CellMaterial,
		Material: material,
		Sectors:  sectors,
		Rings:    rings,
	}
}

// NewCellFill creates a cell filled by another universe.
func NewCellFill(id, universe, fill int) *Cell {
	return &Cell{ID: id, Universe: universe, Kind: CellFill, Fill: fill}
}

// AddSurface appends a halfspace constraint.
func (c *Cell) AddSurface(sign, surfaceID int) {
	c.Surfaces = append(c.Surfaces, Halfspace{Surface: surfaceID, Sign: sign})
}

// Contains reports whether p satisfies every halfspace of the cell.
// Points exactly on a surface count as inside for both sides.
func (c *Cell) Contains(p v2.Vec, surfaces map[int]*Surface) bool {
	for _, hs := range c.Surfaces {
		if Real(hs.Sign)*surfaces[hs.Surface].Evaluate(p) < 0 {
			return false
		}
	}
	return true
}

// MinSurfaceDist returns the smallest strictly positive distance from p
// along (cos phi, sin phi) to any of the cell's surfaces, together with
// the intersection point. Returns +Inf when the ray leaves the cell
// without crossing one of its surfaces (the enclosing lattice decides
// what happens next).
func (c *Cell) MinSurfaceDist(p v2.Vec, phi Real, surfaces map[int]*Surface) (Real, v2.Vec) {
	min := math.Inf(1)
	for _, hs := range c.Surfaces {
		if d := surfaces[hs.Surface].Intersection(p, phi); d < min {
			min = d
		}
	}
	if !isFinite(min) {
		return min, p
	}
	step := v2.Vec{X: math.Cos(phi), Y: math.Sin(phi)}.MulScalar(min)
	return min, p.Add(step)
}

// circleSurface returns the innermost circle halfspace of the cell with
// sign -1 (the inside), if any. Ring and sector subdivision centers on
// it.
func (c *Cell) circleSurface(surfaces map[int]*Surface) *Surface {
	var best *Surface
	for _, hs := range c.Surfaces {
		s := surfaces[hs.Surface]
		if hs.Sign < 0 && s.Kind == SurfaceCircle {
			if best == nil || s.R < best.R {
				best = s
			}
		}
	}
	return best
}

func (c *Cell) String() string {
	if c.Kind == CellMaterial {
		return fmt.Sprintf("Cell(id=%d, universe=%d, material=%d, surfaces=%d)",
			c.ID, c.Universe, c.Material, len(c.Surfaces))
	}
	return fmt.Sprintf("Cell(id=%d, universe=%d, fill=%d, surfaces=%d)",
		c.ID, c.Universe, c.Fill, len(c.Surfaces))
}
