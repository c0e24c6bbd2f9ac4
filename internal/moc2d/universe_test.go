package moc2d

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleUniverseFirstMatchWins(t *testing.T) {
	// Two overlapping unbounded cells: insertion order decides.
	g := NewGeometry()
	require.NoError(t, g.AddMaterial(oneGroup(1)))
	require.NoError(t, g.AddMaterial(oneGroup(2)))
	require.NoError(t, g.AddCell(NewCellBasic(1, RootUniverse, 1, 0, 0)))
	require.NoError(t, g.AddCell(NewCellBasic(2, RootUniverse, 2, 0, 0)))
	require.NoError(t, g.InitializeFlatSourceRegions())

	cell, lc := locate(g, 0.3, -0.7)
	require.NotNil(t, cell)
	assert.Equal(t, 1, cell.ID)
	assert.Equal(t, 1, lc.Tail().Cell)
}

func TestFindCellDescendsThroughFill(t *testing.T) {
	g := buildLattice2x2(t)

	cell, lc := locate(g, 0.3, 0.7)
	require.NotNil(t, cell)
	assert.Equal(t, 10, cell.ID)

	// Chain: root universe -> lattice -> pin universe.
	require.Equal(t, 3, lc.Depth())
	assert.Equal(t, 1, lc.Head().Cell)
	lat := lc.Frame(1)
	assert.Equal(t, coordLattice, lat.kind)
	assert.Equal(t, 1, lat.LatX)
	assert.Equal(t, 1, lat.LatY)
	// Pin frame is translated to the lattice cell center.
	pin := lc.Tail()
	assert.Equal(t, 10, pin.Universe)
	assert.InDelta(t, -0.2, pin.Point.X, 1e-12)
	assert.InDelta(t, 0.2, pin.Point.Y, 1e-12)
}

func TestFindCellOutsideReturnsNil(t *testing.T) {
	g := buildSingleCell(t)
	cell, _ := locate(g, 2, 0)
	assert.Nil(t, cell)

	// A hole: point outside every cell of the root universe.
	g2 := NewGeometry()
	require.NoError(t, g2.AddMaterial(oneGroup(1)))
	g2.AddSurface(NewCircle(1, 0, 0, 1, BoundaryNone))
	c := NewCellBasic(1, RootUniverse, 1, 0, 0)
	c.AddSurface(-1, 1)
	require.NoError(t, g2.AddCell(c))
	require.NoError(t, g2.InitializeFlatSourceRegions())
	cell, _ = locate(g2, 5, 5)
	assert.Nil(t, cell)
}

func TestComputeFSRMapsPrefixSums(t *testing.T) {
	g := buildSectoredPin(t)
	u, err := g.Universe(RootUniverse)
	require.NoError(t, err)

	// Moderator first (one region), then the subdivided fuel.
	assert.Equal(t, 0, u.FSROffset(1))
	assert.Equal(t, 1, u.FSROffset(2))

	fuel, err := g.Cell(2)
	require.NoError(t, err)
	require.Equal(t, CellFill, fuel.Kind)
	sectors, err := g.Universe(fuel.Fill)
	require.NoError(t, err)
	require.Len(t, sectors.Cells, 8)
	for k, cid := range sectors.Cells {
		assert.Equal(t, k, sectors.FSROffset(cid))
	}
}

func TestLatticeFindCellIndexing(t *testing.T) {
	lat := NewLattice(1, 2, 2, 1, 1, 0, 0, [][]int{{10, 11}, {11, 10}})
	g := NewGeometry()
	require.NoError(t, g.AddMaterial(oneGroup(1)))
	require.NoError(t, g.AddCell(NewCellBasic(10, 10, 1, 0, 0)))
	require.NoError(t, g.AddCell(NewCellBasic(11, 11, 1, 0, 0)))
	require.NoError(t, g.AddLattice(lat))

	tests := []struct {
		x, y Real
		i, j int
	}{
		{-0.5, -0.5, 0, 0},
		{0.5, -0.5, 1, 0},
		{-0.5, 0.5, 0, 1},
		{0.5, 0.5, 1, 1},
	}
	for _, tc := range tests {
		lc := NewLocalCoords(v2.Vec{X: tc.x, Y: tc.y}, 1)
		cell := lat.findCell(lc, g)
		require.NotNil(t, cell, "(%g, %g)", tc.x, tc.y)
		assert.Equal(t, tc.i, lc.Head().LatX)
		assert.Equal(t, tc.j, lc.Head().LatY)
	}

	// Outside the tiling.
	lc := NewLocalCoords(v2.Vec{X: 1.5, Y: 0}, 1)
	assert.Nil(t, lat.findCell(lc, g))
}

func TestNestedLatticeTraversal(t *testing.T) {
	// A 2x1 outer lattice whose cells both hold a 1x2 inner lattice of
	// pin universes. Crossing the shared outer boundary must ascend
	// through the exhausted inner lattice and step the outer one.
	g := NewGeometry()
	require.NoError(t, g.AddMaterial(oneGroup(1)))
	require.NoError(t, g.AddMaterial(oneGroup(2)))
	inside := addBox(g, -1, 1, -1, 1, BoundaryReflective)

	require.NoError(t, g.AddCell(NewCellBasic(10, 10, 1, 0, 0)))
	require.NoError(t, g.AddCell(NewCellBasic(11, 11, 2, 0, 0)))

	inner := NewLattice(7, 1, 2, 1, 1, 0, 0, [][]int{{10}, {11}})
	require.NoError(t, g.AddLattice(inner))
	outer := NewLattice(6, 2, 1, 1, 2, 0, 0, [][]int{{7, 7}})
	require.NoError(t, g.AddLattice(outer))

	root := NewCellFill(1, RootUniverse, 6)
	root.Surfaces = inside
	require.NoError(t, g.AddCell(root))
	require.NoError(t, g.InitializeFlatSourceRegions())
	require.Equal(t, 4, g.NumFSRs())

	track := NewTrack(-1, 0.5, 0)
	require.NoError(t, g.Segmentize(track))

	require.Equal(t, 2, track.NumSegments())
	assert.InDelta(t, 1.0, track.Segments[0].Length, 1e-9)
	assert.InDelta(t, 1.0, track.Segments[1].Length, 1e-9)
	// Top inner cells hold universe 11 (material 2) on both sides.
	assert.Equal(t, 2, track.Segments[0].Material)
	assert.Equal(t, 2, track.Segments[1].Material)
	assert.Equal(t, 1, track.Segments[0].Region)
	assert.Equal(t, 3, track.Segments[1].Region)

	// A vertical track stays inside one outer cell and crosses only
	// the inner lattice boundary.
	vert := NewTrack(-0.5, -1, math.Pi/2)
	require.NoError(t, g.Segmentize(vert))
	require.Equal(t, 2, vert.NumSegments())
	assert.InDelta(t, 2.0, chordLength(vert), 1e-6)
	assert.Equal(t, 1, vert.Segments[0].Material)
	assert.Equal(t, 2, vert.Segments[1].Material)
	assert.Equal(t, 0, vert.Segments[0].Region)
	assert.Equal(t, 1, vert.Segments[1].Region)
}
