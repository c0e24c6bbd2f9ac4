package moc2d

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePinPowersLattice(t *testing.T) {
	g := buildLattice2x2(t)
	dir := t.TempDir()

	powers := []Real{1, 2, 3, 4} // by FSR id, bottom row first
	pin, err := g.ComputePinPowers(powers, dir)
	require.NoError(t, err)

	// Each pin universe holds a single FSR, so pin power == power.
	assert.Equal(t, powers, pin)

	raw, err := os.ReadFile(filepath.Join(dir, "universe0_lattice5_power.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)
	// Rows are written top to bottom: FSRs (2, 3) then (0, 1).
	assert.Equal(t, "3.000000, 4.000000, ", lines[0])
	assert.Equal(t, "1.000000, 2.000000, ", lines[1])
}

func TestComputePinPowersSharesPowerWithinPin(t *testing.T) {
	g := buildSectoredPin(t)
	powers := make([]Real, g.NumFSRs())
	for r := range powers {
		powers[r] = Real(r + 1)
	}
	pin, err := g.ComputePinPowers(powers, t.TempDir())
	require.NoError(t, err)

	// The moderator FSR sits directly in the root universe and gets
	// the whole pin's power; the sector FSRs share the total of their
	// synthetic fuel universe.
	var total, fuel Real
	for r, p := range powers {
		total += p
		if r > 0 {
			fuel += p
		}
	}
	assert.Equal(t, total, pin[0])
	for r := 1; r < g.NumFSRs(); r++ {
		assert.Equal(t, fuel, pin[r], "fsr %d", r)
	}
}

func TestComputePinPowersZeroFilesRemoved(t *testing.T) {
	g := buildLattice2x2(t)
	dir := t.TempDir()

	_, err := g.ComputePinPowers(make([]Real, g.NumFSRs()), dir)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "universe0_lattice5_power.txt"))
	assert.True(t, os.IsNotExist(statErr), "all-zero power file must be deleted")
}

func TestComputePinPowersBadInput(t *testing.T) {
	g := buildLattice2x2(t)
	_, err := g.ComputePinPowers([]Real{1}, t.TempDir())
	require.Error(t, err)
}
