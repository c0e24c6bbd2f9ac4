package moc2d

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// Geometry owns every primitive of the problem, keyed by id, and the
// derived flat source region numbering. Registration is strict on id
// for materials, cells, universes, and lattices and idempotent for
// surfaces. After InitializeFlatSourceRegions the geometry is frozen:
// traversal queries treat it as read-only and are safe to run from
// multiple goroutines as long as each uses its own coordinate chains.
type Geometry struct {
	materials map[int]*Material
	surfaces  map[int]*Surface
	cells     map[int]*Cell
	universes map[int]*Universe
	lattices  map[int]*Lattice

	// Insertion order of universes, for deterministic passes over the
	// registry (map iteration order would leak into FSR numbering).
	universeOrder []int

	numGroups int
	numFSRs   int
	fsrToCell []int
	fsrToMat  []int

	xMin, yMin Real
	xMax, yMax Real
	bcTop      bool
	bcBottom   bool
	bcLeft     bool
	bcRight    bool

	// Observed segment length extremes. Guarded separately so frozen
	// geometries can segmentize tracks from multiple goroutines.
	segMu        sync.Mutex
	maxSegLength Real
	minSegLength Real
}

// NewGeometry creates an empty geometry with an inverted bounding box
// and reflective default boundary conditions.
func NewGeometry() *Geometry {
	return &Geometry{
		materials:    map[int]*Material{},
		surfaces:     map[int]*Surface{},
		cells:        map[int]*Cell{},
		universes:    map[int]*Universe{},
		lattices:     map[int]*Lattice{},
		xMin:         math.Inf(1),
		yMin:         math.Inf(1),
		xMax:         math.Inf(-1),
		yMax:         math.Inf(-1),
		bcTop:        true,
		bcBottom:     true,
		bcLeft:       true,
		bcRight:      true,
		minSegLength: math.Inf(1),
	}
}

// Accessors over the frozen state.

func (g *Geometry) Width() Real            { return g.xMax - g.xMin }
func (g *Geometry) Height() Real           { return g.yMax - g.yMin }
func (g *Geometry) XMin() Real             { return g.xMin }
func (g *Geometry) XMax() Real             { return g.xMax }
func (g *Geometry) YMin() Real             { return g.yMin }
func (g *Geometry) YMax() Real             { return g.yMax }
func (g *Geometry) BCTop() bool            { return g.bcTop }
func (g *Geometry) BCBottom() bool         { return g.bcBottom }
func (g *Geometry) BCLeft() bool           { return g.bcLeft }
func (g *Geometry) BCRight() bool          { return g.bcRight }
func (g *Geometry) NumFSRs() int           { return g.numFSRs }
func (g *Geometry) NumMaterials() int      { return len(g.materials) }
func (g *Geometry) MaxSegmentLength() Real { return g.maxSegLength }
func (g *Geometry) MinSegmentLength() Real { return g.minSegLength }

// NumEnergyGroups returns the group count shared by every material.
func (g *Geometry) NumEnergyGroups() int { return g.numGroups }

// FSRToCell maps a flat source region id to its material cell id.
func (g *Geometry) FSRToCell() []int { return g.fsrToCell }

// FSRToMaterial maps a flat source region id to its material id.
func (g *Geometry) FSRToMaterial() []int { return g.fsrToMat }

// Material returns the material with the given id.
func (g *Geometry) Material(id int) (*Material, error) {
	m, ok := g.materials[id]
	if !ok {
		return nil, errors.New("unknown material").
			WithType(ErrTypeMissingReference).
			WithTag("kind", "material").
			WithTag("id", id)
	}
	return m, nil
}

// Surface returns the surface with the given id.
func (g *Geometry) Surface(id int) (*Surface, error) {
	s, ok := g.surfaces[id]
	if !ok {
		return nil, errors.New("unknown surface").
			WithType(ErrTypeMissingReference).
			WithTag("kind", "surface").
			WithTag("id", id)
	}
	return s, nil
}

// Cell returns the cell with the given id.
func (g *Geometry) Cell(id int) (*Cell, error) {
	c, ok := g.cells[id]
	if !ok {
		return nil, errors.New("unknown cell").
			WithType(ErrTypeMissingReference).
			WithTag("kind", "cell").
			WithTag("id", id)
	}
	return c, nil
}

// Universe returns the universe with the given id.
func (g *Geometry) Universe(id int) (*Universe, error) {
	u, ok := g.universes[id]
	if !ok {
		return nil, errors.New("unknown universe").
			WithType(ErrTypeMissingReference).
			WithTag("kind", "universe").
			WithTag("id", id)
	}
	return u, nil
}

// Lattice returns the lattice with the given id.
func (g *Geometry) Lattice(id int) (*Lattice, error) {
	l, ok := g.lattices[id]
	if !ok {
		return nil, errors.New("unknown lattice").
			WithType(ErrTypeMissingReference).
			WithTag("kind", "lattice").
			WithTag("id", id)
	}
	return l, nil
}

// AddMaterial registers a material. The group count must match every
// previously added material and the cross sections must satisfy the
// total-consistency identity.
func (g *Geometry) AddMaterial(m *Material) error {
	if _, ok := g.materials[m.ID]; ok {
		return errors.New("material already registered").
			WithType(ErrTypeDuplicateID).
			WithTag("kind", "material").
			WithTag("id", m.ID)
	}
	if m.NumGroups() == 0 {
		return errors.New("material contains no nuclear data").
			WithType(ErrTypeEnergyGroupMismatch).
			WithTag("material_id", m.ID)
	}
	if g.numGroups == 0 {
		g.numGroups = m.NumGroups()
	} else if g.numGroups != m.NumGroups() {
		return errors.Newf("material spans %d energy groups, geometry has %d", m.NumGroups(), g.numGroups).
			WithType(ErrTypeEnergyGroupMismatch).
			WithTag("material_id", m.ID).
			WithTag("expected", g.numGroups).
			WithTag("got", m.NumGroups())
	}
	if err := m.CheckSigmaT(); err != nil {
		return err
	}
	g.materials[m.ID] = m
	logs.WithTag("id", m.ID).Debug("added material to geometry")
	return nil
}

// AddSurface registers a surface. Re-adding an existing id is a no-op.
// Reflective and vacuum surfaces with finite extents grow the bounding
// box and set the boundary condition bit of the edges they extend.
func (g *Geometry) AddSurface(s *Surface) {
	if _, ok := g.surfaces[s.ID]; ok {
		return
	}
	g.surfaces[s.ID] = s
	logs.WithTag("id", s.ID).Debug("added surface to geometry")

	if s.Boundary == BoundaryNone {
		return
	}
	reflective := s.Boundary == BoundaryReflective
	if v := s.XMin(); v < g.xMin && !math.IsInf(v, -1) {
		g.xMin = v
		g.bcLeft = reflective
	}
	if v := s.XMax(); v > g.xMax && !math.IsInf(v, 1) {
		g.xMax = v
		g.bcRight = reflective
	}
	if v := s.YMin(); v < g.yMin && !math.IsInf(v, -1) {
		g.yMin = v
		g.bcBottom = reflective
	}
	if v := s.YMax(); v > g.yMax && !math.IsInf(v, 1) {
		g.yMax = v
		g.bcTop = reflective
	}
}

// AddCell registers a cell, attaches it to its universe (created on
// first use), and checks that every referenced surface and material
// exists.
func (g *Geometry) AddCell(c *Cell) error {
	if _, ok := g.cells[c.ID]; ok {
		return errors.New("cell already registered").
			WithType(ErrTypeDuplicateID).
			WithTag("kind", "cell").
			WithTag("id", c.ID)
	}
	if c.Kind == CellMaterial {
		if _, ok := g.materials[c.Material]; !ok {
			return errors.New("cell references unknown material").
				WithType(ErrTypeMissingReference).
				WithTag("kind", "material").
				WithTag("id", c.Material).
				WithTag("cell_id", c.ID)
		}
	}
	for _, hs := range c.Surfaces {
		if _, ok := g.surfaces[hs.Surface]; !ok {
			return errors.New("cell references unknown surface").
				WithType(ErrTypeMissingReference).
				WithTag("kind", "surface").
				WithTag("id", hs.Surface).
				WithTag("cell_id", c.ID)
		}
	}

	g.cells[c.ID] = c
	logs.WithTag("id", c.ID).Debug("added cell to geometry")

	u, ok := g.universes[c.Universe]
	if !ok {
		u = NewUniverse(c.Universe)
		g.registerUniverse(u)
		logs.WithTag("id", c.Universe).Debug("created universe for cell")
	}
	u.AddCell(c.ID)
	return nil
}

// AddUniverse registers an empty universe under a strict id.
func (g *Geometry) AddUniverse(u *Universe) error {
	if _, ok := g.universes[u.ID]; ok {
		return errors.New("universe already registered").
			WithType(ErrTypeDuplicateID).
			WithTag("kind", "universe").
			WithTag("id", u.ID)
	}
	g.registerUniverse(u)
	logs.WithTag("id", u.ID).Debug("added universe to geometry")
	return nil
}

func (g *Geometry) registerUniverse(u *Universe) {
	g.universes[u.ID] = u
	g.universeOrder = append(g.universeOrder, u.ID)
}

// AddLattice registers a lattice in both the lattice and universe
// registries under the same id. Every universe the grid references
// must already exist.
func (g *Geometry) AddLattice(l *Lattice) error {
	if _, ok := g.lattices[l.ID]; ok {
		return errors.New("lattice already registered").
			WithType(ErrTypeDuplicateID).
			WithTag("kind", "lattice").
			WithTag("id", l.ID)
	}
	if _, ok := g.universes[l.ID]; ok {
		return errors.New("universe id already taken by lattice").
			WithType(ErrTypeDuplicateID).
			WithTag("kind", "universe").
			WithTag("id", l.ID)
	}
	if len(l.Universes) != l.NumY {
		return errors.Newf("lattice grid has %d rows, want %d", len(l.Universes), l.NumY).
			WithType(ErrTypeMissingReference).
			WithTag("kind", "lattice").
			WithTag("id", l.ID)
	}
	for j, row := range l.Universes {
		if len(row) != l.NumX {
			return errors.Newf("lattice grid row %d has %d columns, want %d", j, len(row), l.NumX).
				WithType(ErrTypeMissingReference).
				WithTag("kind", "lattice").
				WithTag("id", l.ID)
		}
		for _, uid := range row {
			if _, ok := g.universes[uid]; !ok {
				return errors.New("lattice contains unknown universe").
					WithType(ErrTypeMissingReference).
					WithTag("kind", "universe").
					WithTag("id", uid).
					WithTag("lattice_id", l.ID)
			}
		}
	}

	g.lattices[l.ID] = l
	g.registerUniverse(&Universe{ID: l.ID, Kind: UniverseLattice})
	logs.WithTag("id", l.ID).Debug("added lattice to geometry")
	return nil
}

// InitializeFlatSourceRegions subdivides cells, performs the
// depth-first FSR labeling from the root universe, and builds the
// FSR-to-cell and FSR-to-material maps. It is the transition point
// after which the geometry is read-only; re-running it reproduces the
// identical numbering.
func (g *Geometry) InitializeFlatSourceRegions() error {
	if err := g.checkFillReferences(); err != nil {
		return err
	}
	g.subdivideCells()

	root, ok := g.universes[RootUniverse]
	if !ok {
		return errors.New("geometry has no root universe").
			WithType(ErrTypeMissingReference).
			WithTag("kind", "universe").
			WithTag("id", RootUniverse)
	}
	g.numFSRs = root.computeFSRMaps(g)
	logs.WithTag("num_fsrs", g.numFSRs).Info("initialized flat source regions")

	g.fsrToCell = make([]int, g.numFSRs)
	g.fsrToMat = make([]int, g.numFSRs)
	for r := 0; r < g.numFSRs; r++ {
		cell, err := g.findCellByFSR(root, r)
		if err != nil {
			return err
		}
		g.fsrToCell[r] = cell.ID
		g.fsrToMat[r] = cell.Material
	}
	fsrCount.Set(float64(g.numFSRs))
	return nil
}

// checkFillReferences verifies that every fill cell points at a
// registered universe before traversal structures are derived.
func (g *Geometry) checkFillReferences() error {
	for _, uid := range g.universeOrder {
		for _, cid := range g.universes[uid].Cells {
			c := g.cells[cid]
			if c.Kind != CellFill {
				continue
			}
			if _, ok := g.universes[c.Fill]; !ok {
				return errors.New("fill cell references unknown universe").
					WithType(ErrTypeMissingReference).
					WithTag("kind", "universe").
					WithTag("id", c.Fill).
					WithTag("cell_id", c.ID)
			}
		}
	}
	return nil
}

// FindCell locates the chain's head point, rebuilding the chain from
// the root universe down to the terminal material cell. Returns nil if
// the point is outside the geometry or in a hole.
func (g *Geometry) FindCell(coords *LocalCoords) *Cell {
	coords.Prune()
	u, ok := g.universes[coords.Head().Universe]
	if !ok {
		return nil
	}
	return u.dispatchFindCell(coords, g)
}

// FindFirstCell nudges the chain by TinyMove along the trajectory so a
// track starts strictly inside a flat source region, then locates it.
func (g *Geometry) FindFirstCell(coords *LocalCoords, phi Real) *Cell {
	coords.AdjustCoords(math.Cos(phi)*TinyMove, math.Sin(phi)*TinyMove)
	return g.FindCell(coords)
}

// FindNextCell advances the chain to the next cell crossed along the
// trajectory phi. The chain is updated to the far side of the crossed
// boundary. Returns nil when the ray leaves the geometry; in that case
// the chain holds the exit point.
func (g *Geometry) FindNextCell(coords *LocalCoords, phi Real) *Cell {
	cell := g.FindCell(coords)
	if cell == nil {
		return nil
	}

	tail := coords.Tail()
	d, ipt := cell.MinSurfaceDist(tail.Point, phi, g.surfaces)
	if isFinite(d) {
		test := coords.Clone()
		coords.UpdateMostLocal(ipt)
		coords.AdjustCoords(math.Cos(phi)*TinyMove, math.Sin(phi)*TinyMove)

		next := g.FindCell(coords)
		if next != nil && sameLatticeCells(test, coords) {
			return next
		}
		// The crossing leaves the current lattice cell or the
		// geometry. With a lattice ancestor the pre-move chain is
		// restored so the lattice traversal can step from the old
		// point; without one the ray has left the world and the chain
		// keeps the exit point.
		if test.deepestLattice() < 0 {
			return nil
		}
		test.CopyTo(coords)
	}

	// Ascend through enclosing lattices until one yields a successor
	// cell. Reaching the root without one means the ray left the
	// geometry.
	for {
		k := coords.deepestLattice()
		if k < 0 {
			return nil
		}
		coords.Truncate(k + 1)
		lat := g.lattices[coords.Tail().Lattice]
		if c := lat.findNextLatticeCell(coords, phi, g); c != nil {
			return c
		}
		if k == 0 {
			// The root universe is this lattice; there is nothing to
			// ascend to.
			return nil
		}
		coords.Truncate(k)
	}
}

// FindFSRID accumulates the FSR map offsets along the chain from head
// to tail, yielding the global flat source region id of the tail.
func (g *Geometry) FindFSRID(coords *LocalCoords) int {
	id := 0
	for i := 0; i < coords.Depth(); i++ {
		f := coords.Frame(i)
		if f.kind == coordLattice {
			id += g.lattices[f.Lattice].FSROffset(f.LatX, f.LatY)
		} else {
			id += g.universes[f.Universe].FSROffset(f.Cell)
		}
	}
	return id
}

// FindCellByFSR inverts the FSR numbering: it descends the universe
// tree from the root and returns the material cell labeled fsrID.
func (g *Geometry) FindCellByFSR(fsrID int) (*Cell, error) {
	if fsrID < 0 || fsrID >= g.numFSRs {
		return nil, errors.Newf("fsr id out of range [0, %d)", g.numFSRs).
			WithType(ErrTypeFSRLookup).
			WithTag("fsr_id", fsrID)
	}
	return g.findCellByFSR(g.universes[RootUniverse], fsrID)
}

// findCellByFSR picks, at each level, the child with the largest FSR
// map entry not exceeding the remaining id, subtracts it, and recurses.
// A material child with a nonzero remainder means the map and the tree
// contradict each other.
func (g *Geometry) findCellByFSR(u *Universe, fsrID int) (*Cell, error) {
	if u.Kind == UniverseLattice {
		lat := g.lattices[u.ID]
		best := -1
		var bi, bj int
		for j := 0; j < lat.NumY; j++ {
			for i := 0; i < lat.NumX; i++ {
				if m := lat.FSROffset(i, j); m <= fsrID && m >= best {
					best = m
					bi, bj = i, j
				}
			}
		}
		if best < 0 {
			return nil, errors.New("no lattice cell matches fsr id").
				WithType(ErrTypeFSRLookup).
				WithTag("fsr_id", fsrID).
				WithTag("lattice_id", lat.ID)
		}
		return g.findCellByFSR(g.universes[lat.UniverseAt(bi, bj)], fsrID-best)
	}

	var chosen *Cell
	best := -1
	for _, cid := range u.Cells {
		if m := u.fsrMap[cid]; m <= fsrID && m >= best {
			best = m
			chosen = g.cells[cid]
		}
	}
	if chosen == nil {
		return nil, errors.New("no cell matches fsr id").
			WithType(ErrTypeFSRLookup).
			WithTag("fsr_id", fsrID).
			WithTag("universe_id", u.ID)
	}
	remaining := fsrID - best
	if chosen.Kind == CellMaterial {
		if remaining != 0 {
			return nil, errors.Newf("fsr map inversion left remainder %d at material cell", remaining).
				WithType(ErrTypeFSRLookup).
				WithTag("fsr_id", fsrID).
				WithTag("cell_id", chosen.ID)
		}
		return chosen, nil
	}
	return g.findCellByFSR(g.universes[chosen.Fill], remaining)
}

// Segmentize walks the track through the geometry and appends one
// segment per flat source region crossed, in ray order.
func (g *Geometry) Segmentize(t *Track) error {
	segStart := NewLocalCoords(t.Start, RootUniverse)
	segEnd := NewLocalCoords(t.Start, RootUniverse)

	curr := g.FindFirstCell(segEnd, t.Phi)
	if curr == nil {
		return errors.New("track starts outside the geometry").
			WithType(ErrTypeOutOfGeometry).
			WithTag("x", t.Start.X).
			WithTag("y", t.Start.Y).
			WithTag("phi", t.Phi)
	}

	for curr != nil {
		segEnd.CopyTo(segStart)

		prev := curr
		curr = g.FindNextCell(segEnd, t.Phi)

		a := segStart.Head().Point
		b := segEnd.Head().Point
		if a == b {
			return errors.New("segment start and end points coincide").
				WithType(ErrTypeZeroSegment).
				WithTag("x", a.X).
				WithTag("y", a.Y)
		}
		length := b.Sub(a).Length()

		t.AddSegment(Segment{
			Length:   length,
			Material: prev.Material,
			Region:   g.FindFSRID(segStart),
		})

		g.segMu.Lock()
		if length > g.maxSegLength {
			g.maxSegLength = length
		}
		if length < g.minSegLength {
			g.minSegLength = length
		}
		g.segMu.Unlock()
		segmentLength.Observe(length)
	}

	segStart.Prune()
	segEnd.Prune()
	segmentsCreated.Add(float64(t.NumSegments()))
	tracksSegmentized.Inc()

	logs.WithTag("segments", t.NumSegments()).Debug("segmentized track")
	return nil
}

func (g *Geometry) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Geometry: width=%g, height=%g, bounding box=((%g, %g), (%g, %g)), fsrs=%d",
		g.Width(), g.Height(), g.xMin, g.yMin, g.xMax, g.yMax, g.numFSRs)
	sb.WriteString("\n\tmaterials:")
	for _, id := range sortedIDs(g.materials) {
		fmt.Fprintf(&sb, "\n\t\t%s", g.materials[id])
	}
	sb.WriteString("\n\tsurfaces:")
	for _, id := range sortedIDs(g.surfaces) {
		fmt.Fprintf(&sb, "\n\t\t%s", g.surfaces[id])
	}
	sb.WriteString("\n\tcells:")
	for _, id := range sortedIDs(g.cells) {
		fmt.Fprintf(&sb, "\n\t\t%s", g.cells[id])
	}
	sb.WriteString("\n\tuniverses:")
	for _, id := range sortedIDs(g.universes) {
		fmt.Fprintf(&sb, "\n\t\t%s", g.universes[id])
	}
	sb.WriteString("\n\tlattices:")
	for _, id := range sortedIDs(g.lattices) {
		fmt.Fprintf(&sb, "\n\t\t%s", g.lattices[id])
	}
	return sb.String()
}

// sortedIDs returns the keys of an id-keyed registry in ascending
// order, for deterministic iteration in reports.
func sortedIDs[T any](m map[int]T) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
