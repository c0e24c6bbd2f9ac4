package moc2d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRingedPin is the sectored-pin box with the fuel cut into rings
// and sectors instead.
func buildRingedPin(t *testing.T, sectors, rings int) *Geometry {
	t.Helper()
	g := NewGeometry()
	require.NoError(t, g.AddMaterial(oneGroup(1)))
	require.NoError(t, g.AddMaterial(oneGroup(2)))
	inside := addBox(g, -0.5, 0.5, -0.5, 0.5, BoundaryReflective)
	g.AddSurface(NewCircle(5, 0, 0, 0.4, BoundaryNone))

	mod := NewCellBasic(1, RootUniverse, 2, 0, 0)
	mod.Surfaces = append(append([]Halfspace{}, inside...), Halfspace{Surface: 5, Sign: 1})
	fuel := NewCellBasic(2, RootUniverse, 1, sectors, rings)
	fuel.AddSurface(-1, 5)
	require.NoError(t, g.AddCell(mod))
	require.NoError(t, g.AddCell(fuel))
	require.NoError(t, g.InitializeFlatSourceRegions())
	return g
}

func TestSubdivideSectors(t *testing.T) {
	g := buildRingedPin(t, 8, 0)
	require.Equal(t, 9, g.NumFSRs())

	fuel, err := g.Cell(2)
	require.NoError(t, err)
	assert.Equal(t, CellFill, fuel.Kind)
	assert.Zero(t, fuel.Sectors)

	child, err := g.Universe(fuel.Fill)
	require.NoError(t, err)
	require.Len(t, child.Cells, 8)
	for _, cid := range child.Cells {
		c, err := g.Cell(cid)
		require.NoError(t, err)
		assert.Equal(t, CellMaterial, c.Kind)
		assert.Equal(t, 1, c.Material)
		// Circle constraint plus the two sector planes.
		assert.Len(t, c.Surfaces, 3)
	}
}

func TestSubdivideRings(t *testing.T) {
	g := buildRingedPin(t, 0, 2)
	// Two annuli plus the moderator.
	require.Equal(t, 3, g.NumFSRs())

	// The ring boundary is the equal-area radius r*sqrt(1/2).
	split := 0.4 * math.Sqrt(0.5)

	inner, lcIn := locate(g, split-0.05, 0)
	require.NotNil(t, inner)
	outer, lcOut := locate(g, split+0.05, 0)
	require.NotNil(t, outer)
	assert.NotEqual(t, inner.ID, outer.ID)
	assert.Equal(t, 1, inner.Material)
	assert.Equal(t, 1, outer.Material)
	assert.NotEqual(t, g.FindFSRID(lcIn), g.FindFSRID(lcOut))

	mod, _ := locate(g, 0.45, 0)
	require.NotNil(t, mod)
	assert.Equal(t, 2, mod.Material)
}

func TestSubdivideRingsAndSectors(t *testing.T) {
	g := buildRingedPin(t, 4, 2)
	// 2 rings x 4 sectors + moderator.
	require.Equal(t, 9, g.NumFSRs())

	// A radial sweep at a fixed angle inside one sector crosses both
	// rings: same sector, different FSR.
	a, lcA := locate(g, 0.1, 0.1)
	b, lcB := locate(g, 0.25, 0.25)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEqual(t, g.FindFSRID(lcA), g.FindFSRID(lcB))
	assert.Equal(t, 1, a.Material)
	assert.Equal(t, 1, b.Material)
}

func TestSubdivisionPreservesChordSums(t *testing.T) {
	g := buildRingedPin(t, 4, 3)
	track := NewTrack(-0.5, 0.1, 0)
	require.NoError(t, g.Segmentize(track))
	assert.InDelta(t, 1.0, chordLength(track), 1e-6)
	// More cuts, more segments: at y=0.1 the chord crosses the fuel.
	assert.Greater(t, track.NumSegments(), 3)
}

func TestSubdivisionIdempotent(t *testing.T) {
	g := buildRingedPin(t, 8, 2)
	n := g.NumFSRs()
	cellCount := len(g.cells)
	require.NoError(t, g.InitializeFlatSourceRegions())
	assert.Equal(t, n, g.NumFSRs())
	assert.Equal(t, cellCount, len(g.cells), "re-initializing must not re-subdivide")
}

func TestSyntheticSurfacesDoNotTouchBoundingBox(t *testing.T) {
	g := buildRingedPin(t, 8, 2)
	assert.Equal(t, Real(-0.5), g.XMin())
	assert.Equal(t, Real(0.5), g.XMax())
	assert.Equal(t, Real(-0.5), g.YMin())
	assert.Equal(t, Real(0.5), g.YMax())
}
