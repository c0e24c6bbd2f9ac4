package moc2d

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// ComputePinPowers folds a per-FSR fission power array into lattice
// cell powers. It returns an array mapping each FSR to the total power
// of the universe that directly holds its material cell (for a pin
// universe of plain material cells, the pin's power; the sectors and
// rings of a subdivided cell share the total of their synthetic
// universe only). It writes one file per lattice under dir: rows top
// to bottom, comma-separated cell powers. Files whose total power is
// zero are deleted after writing.
func (g *Geometry) ComputePinPowers(fsrToPower []Real, dir string) ([]Real, error) {
	if len(fsrToPower) != g.numFSRs {
		return nil, errors.Newf("power array spans %d fsrs, geometry has %d", len(fsrToPower), g.numFSRs)
	}
	root, ok := g.universes[RootUniverse]
	if !ok {
		return nil, errors.New("geometry has no root universe").
			WithType(ErrTypeMissingReference).
			WithTag("kind", "universe").
			WithTag("id", RootUniverse)
	}

	pin := make([]Real, g.numFSRs)
	if _, err := g.pinPowers(root, dir, "universe0", 0, fsrToPower, pin); err != nil {
		return nil, err
	}
	return pin, nil
}

// pinPowers recursively accumulates the power of every FSR below u.
// fsrBase is the FSR id prefix inherited from the levels above.
func (g *Geometry) pinPowers(u *Universe, dir, prefix string, fsrBase int, powers, pin []Real) (Real, error) {
	if u.Kind == UniverseLattice {
		return g.latticePinPowers(g.lattices[u.ID], dir, prefix, fsrBase, powers, pin)
	}

	var total Real
	var leaves []int
	for _, cid := range u.Cells {
		c := g.cells[cid]
		fid := u.fsrMap[cid] + fsrBase
		if c.Kind == CellMaterial {
			leaves = append(leaves, fid)
			total += powers[fid]
			continue
		}
		p, err := g.pinPowers(g.universes[c.Fill], dir, prefix, fid, powers, pin)
		if err != nil {
			return 0, err
		}
		total += p
	}

	// Every material FSR of this universe shares the pin power of the
	// universe as a whole.
	for _, fid := range leaves {
		pin[fid] = total
	}
	return total, nil
}

func (g *Geometry) latticePinPowers(lat *Lattice, dir, prefix string, fsrBase int, powers, pin []Real) (Real, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.New("creating pin power directory failed").Wrap(err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_lattice%d_power.txt", prefix, lat.ID))
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.New("creating pin power file failed").
			WithTag("path", path).
			Wrap(err)
	}
	w := bufio.NewWriter(f)

	var total Real
	for j := lat.NumY - 1; j >= 0; j-- {
		for i := 0; i < lat.NumX; i++ {
			fid := lat.FSROffset(i, j) + fsrBase
			cellPrefix := fmt.Sprintf("%s_lattice%d_x%d_y%d", prefix, lat.ID, i, j)
			p, err := g.pinPowers(g.universes[lat.UniverseAt(i, j)], dir, cellPrefix, fid, powers, pin)
			if err != nil {
				f.Close()
				return 0, err
			}
			fmt.Fprintf(w, "%f, ", p)
			total += p
		}
		fmt.Fprintln(w)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return 0, errors.New("writing pin power file failed").
			WithTag("path", path).
			Wrap(err)
	}
	if err := f.Close(); err != nil {
		return 0, errors.New("closing pin power file failed").
			WithTag("path", path).
			Wrap(err)
	}

	if total == 0 {
		if err := os.Remove(path); err != nil {
			return 0, errors.New("removing zero power file failed").
				WithTag("path", path).
				Wrap(err)
		}
	}
	return total, nil
}
