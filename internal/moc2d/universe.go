package moc2d

import (
	"fmt"
)

// UniverseKind discriminates simple universes from lattices. A lattice
// is registered in the universe registry under its own id with kind
// UniverseLattice; its grid data lives in the lattice registry.
type UniverseKind int

const (
	UniverseSimple UniverseKind = iota
	UniverseLattice
)

// Universe groups cells under a shared local coordinate system. Cells
// are held by id in insertion order; the first cell containing a point
// wins (a consistent geometry makes the choice unambiguous at interior
// points). The FSR map assigns each cell the prefix count of flat
// source regions in the subtree rooted at the cells before it.
type Universe struct {
	ID    int
	Kind  UniverseKind
	Cells []int

	fsrMap map[int]int
}

// NewUniverse creates an empty simple universe.
func NewUniverse(id int) *Universe {
	return &Universe{ID: id, Kind: UniverseSimple, fsrMap: map[int]int{}}
}

// AddCell appends a cell id to the universe.
func (u *Universe) AddCell(id int) {
	u.Cells = append(u.Cells, id)
}

// FSROffset returns the FSR map entry for a cell of this universe.
func (u *Universe) FSROffset(cellID int) int { return u.fsrMap[cellID] }

// findCell locates the coordinate chain's tail within this universe,
// descending through fill cells until a material cell is reached. The
// tail frame is stamped with the resolved cell id at every level.
// Returns nil if no cell of the universe contains the point.
func (u *Universe) findCell(coords *LocalCoords, g *Geometry) *Cell {
	tail := coords.Tail()
	p := tail.Point

	for _, id := range u.Cells {
		cell := g.cells[id]
		if !cell.Contains(p, g.surfaces) {
			continue
		}
		tail.kind = coordUniverse
		tail.Cell = id
		if cell.Kind == CellMaterial {
			return cell
		}
		coords.push(CoordFrame{Point: p, Universe: cell.Fill})
		return g.universes[cell.Fill].dispatchFindCell(coords, g)
	}
	return nil
}

// dispatchFindCell routes point location to the simple or lattice
// traversal depending on this universe's kind.
func (u *Universe) dispatchFindCell(coords *LocalCoords, g *Geometry) *Cell {
	if u.Kind == UniverseLattice {
		return g.lattices[u.ID].findCell(coords, g)
	}
	return u.findCell(coords, g)
}

// computeFSRMaps performs the depth-first prefix-sum labeling of the
// subtree rooted at this universe and returns its total FSR count.
func (u *Universe) computeFSRMaps(g *Geometry) int {
	if u.Kind == UniverseLattice {
		return g.lattices[u.ID].computeFSRMaps(g)
	}
	u.fsrMap = map[int]int{}
	count := 0
	for _, id := range u.Cells {
		u.fsrMap[id] = count
		cell := g.cells[id]
		if cell.Kind == CellMaterial {
			count++
		} else {
			count += g.universes[cell.Fill].computeFSRMaps(g)
		}
	}
	return count
}

func (u *Universe) String() string {
	return fmt.Sprintf("Universe(id=%d, cells=%v)", u.ID, u.Cells)
}
