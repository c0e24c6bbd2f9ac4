package moc2d

import (
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCoordsChainOps(t *testing.T) {
	lc := NewLocalCoords(v2.Vec{X: 1, Y: 2}, RootUniverse)
	require.Equal(t, 1, lc.Depth())
	assert.Equal(t, lc.Head(), lc.Tail())

	lc.push(CoordFrame{Point: v2.Vec{X: 0.5, Y: 0.5}, Universe: 7})
	lc.push(CoordFrame{Point: v2.Vec{X: 0.1, Y: 0.1}, Universe: 9})
	require.Equal(t, 3, lc.Depth())
	assert.Equal(t, 9, lc.Tail().Universe)

	lc.Truncate(2)
	require.Equal(t, 2, lc.Depth())
	assert.Equal(t, 7, lc.Tail().Universe)

	lc.Prune()
	require.Equal(t, 1, lc.Depth())
	assert.Equal(t, RootUniverse, lc.Tail().Universe)
}

func TestAdjustCoordsTranslatesEveryFrame(t *testing.T) {
	lc := NewLocalCoords(v2.Vec{X: 1, Y: 1}, RootUniverse)
	lc.push(CoordFrame{Point: v2.Vec{X: 0.25, Y: -0.25}, Universe: 3})

	lc.AdjustCoords(0.5, -1)
	assert.Equal(t, v2.Vec{X: 1.5, Y: 0}, lc.Head().Point)
	assert.Equal(t, v2.Vec{X: 0.75, Y: -1.25}, lc.Tail().Point)
}

func TestUpdateMostLocalKeepsChainConsistent(t *testing.T) {
	lc := NewLocalCoords(v2.Vec{X: 1, Y: 1}, RootUniverse)
	lc.push(CoordFrame{Point: v2.Vec{X: 0.25, Y: -0.25}, Universe: 3})

	// Moving the tail must shift the head by the same world delta.
	lc.UpdateMostLocal(v2.Vec{X: 0.5, Y: 0.25})
	assert.Equal(t, v2.Vec{X: 0.5, Y: 0.25}, lc.Tail().Point)
	assert.Equal(t, v2.Vec{X: 1.25, Y: 1.5}, lc.Head().Point)
}

func TestCloneAndCopyTo(t *testing.T) {
	lc := NewLocalCoords(v2.Vec{X: 1, Y: 1}, RootUniverse)
	lc.push(CoordFrame{Point: v2.Vec{}, Universe: 5})

	cp := lc.Clone()
	cp.AdjustCoords(1, 1)
	assert.Equal(t, v2.Vec{X: 1, Y: 1}, lc.Head().Point, "clone must not share frames")
	assert.Equal(t, v2.Vec{X: 2, Y: 2}, cp.Head().Point)

	dst := NewLocalCoords(v2.Vec{}, RootUniverse)
	cp.CopyTo(dst)
	require.Equal(t, 2, dst.Depth())
	assert.Equal(t, v2.Vec{X: 2, Y: 2}, dst.Head().Point)
}

func TestSameLatticeCells(t *testing.T) {
	a := NewLocalCoords(v2.Vec{}, RootUniverse)
	a.push(CoordFrame{kind: coordLattice, Lattice: 1, LatX: 0, LatY: 1})
	a.push(CoordFrame{Universe: 4})

	b := a.Clone()
	assert.True(t, sameLatticeCells(a, b))

	b.Frame(1).LatX = 1
	assert.False(t, sameLatticeCells(a, b))

	// Levels where either chain has no lattice frame are ignored.
	c := NewLocalCoords(v2.Vec{}, RootUniverse)
	c.push(CoordFrame{Universe: 4})
	assert.True(t, sameLatticeCells(a, c))
}

func TestDeepestLattice(t *testing.T) {
	lc := NewLocalCoords(v2.Vec{}, RootUniverse)
	assert.Equal(t, -1, lc.deepestLattice())

	lc.push(CoordFrame{kind: coordLattice, Lattice: 2})
	lc.push(CoordFrame{Universe: 3})
	lc.push(CoordFrame{kind: coordLattice, Lattice: 5})
	lc.push(CoordFrame{Universe: 6})
	assert.Equal(t, 3, lc.deepestLattice())
}
