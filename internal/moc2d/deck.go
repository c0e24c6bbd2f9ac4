package moc2d

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Deck is the on-disk description of a geometry: materials, surfaces,
// cells, lattices, and the tracks to segmentize. Decks load from JSON
// or YAML depending on the file extension.
type Deck struct {
	Materials []MaterialCfg `json:"materials" yaml:"materials"`
	Surfaces  []SurfaceCfg  `json:"surfaces" yaml:"surfaces"`
	Cells     []CellCfg     `json:"cells" yaml:"cells"`
	Lattices  []LatticeCfg  `json:"lattices,omitempty" yaml:"lattices,omitempty"`
	Tracks    []TrackCfg    `json:"tracks,omitempty" yaml:"tracks,omitempty"`
}

type MaterialCfg struct {
	ID       int      `json:"id" yaml:"id"`
	SigmaT   []Real   `json:"sigmaT" yaml:"sigmaT"`
	SigmaA   []Real   `json:"sigmaA" yaml:"sigmaA"`
	SigmaS   [][]Real `json:"sigmaS" yaml:"sigmaS"`
	NuSigmaF []Real   `json:"nuSigmaF" yaml:"nuSigmaF"`
	Chi      []Real   `json:"chi" yaml:"chi"`
}

type SurfaceCfg struct {
	ID       int    `json:"id" yaml:"id"`
	Type     string `json:"type" yaml:"type"`
	Boundary string `json:"boundary,omitempty" yaml:"boundary,omitempty"`
	A        Real   `json:"a,omitempty" yaml:"a,omitempty"`
	B        Real   `json:"b,omitempty" yaml:"b,omitempty"`
	C        Real   `json:"c,omitempty" yaml:"c,omitempty"`
	X0       Real   `json:"x0,omitempty" yaml:"x0,omitempty"`
	Y0       Real   `json:"y0,omitempty" yaml:"y0,omitempty"`
	R        Real   `json:"r,omitempty" yaml:"r,omitempty"`
}

// CellCfg describes either a material cell (material set) or a fill
// cell (fill set). Surfaces is a list of signed surface ids: the sign
// selects the halfspace, so deck surface ids must be >= 1.
type CellCfg struct {
	ID       int   `json:"id" yaml:"id"`
	Universe int   `json:"universe" yaml:"universe"`
	Material *int  `json:"material,omitempty" yaml:"material,omitempty"`
	Fill     *int  `json:"fill,omitempty" yaml:"fill,omitempty"`
	Surfaces []int `json:"surfaces,omitempty" yaml:"surfaces,omitempty"`
	Sectors  int   `json:"sectors,omitempty" yaml:"sectors,omitempty"`
	Rings    int   `json:"rings,omitempty" yaml:"rings,omitempty"`
}

// LatticeCfg describes a rectangular lattice. The universe grid is
// written the way it looks on paper, top row first; Build reverses it
// so that row 0 is the bottom row internally.
type LatticeCfg struct {
	ID        int     `json:"id" yaml:"id"`
	NumX      int     `json:"numX" yaml:"numX"`
	NumY      int     `json:"numY" yaml:"numY"`
	PitchX    Real    `json:"pitchX" yaml:"pitchX"`
	PitchY    Real    `json:"pitchY" yaml:"pitchY"`
	X0        Real    `json:"x0,omitempty" yaml:"x0,omitempty"`
	Y0        Real    `json:"y0,omitempty" yaml:"y0,omitempty"`
	Universes [][]int `json:"universes" yaml:"universes"`
}

type TrackCfg struct {
	X      Real `json:"x" yaml:"x"`
	Y      Real `json:"y" yaml:"y"`
	PhiDeg Real `json:"phiDeg" yaml:"phiDeg"`
}

// LoadDeck reads a deck file; .yaml and .yml decode as YAML, anything
// else as JSON.
func LoadDeck(path string) (*Deck, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("reading deck failed").WithTag("path", path).Wrap(err)
	}
	var deck Deck
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &deck)
	default:
		err = json.Unmarshal(raw, &deck)
	}
	if err != nil {
		return nil, errors.New("decoding deck failed").WithTag("path", path).Wrap(err)
	}
	return &deck, nil
}

// Build lowers the deck into a geometry with initialized flat source
// regions, ready for segmentation.
func (d *Deck) Build() (*Geometry, error) {
	g := NewGeometry()

	for _, mc := range d.Materials {
		m, err := NewMaterial(mc.ID, mc.SigmaT, mc.SigmaA, mc.SigmaS, mc.NuSigmaF, mc.Chi)
		if err != nil {
			return nil, err
		}
		if err := g.AddMaterial(m); err != nil {
			return nil, err
		}
	}

	for _, sc := range d.Surfaces {
		s, err := sc.surface()
		if err != nil {
			return nil, err
		}
		g.AddSurface(s)
	}

	for _, cc := range d.Cells {
		c, err := cc.cell()
		if err != nil {
			return nil, err
		}
		if err := g.AddCell(c); err != nil {
			return nil, err
		}
	}

	for _, lc := range d.Lattices {
		grid := make([][]int, len(lc.Universes))
		for j := range lc.Universes {
			grid[j] = lc.Universes[len(lc.Universes)-1-j]
		}
		l := NewLattice(lc.ID, lc.NumX, lc.NumY, lc.PitchX, lc.PitchY, lc.X0, lc.Y0, grid)
		if err := g.AddLattice(l); err != nil {
			return nil, err
		}
	}

	if err := g.InitializeFlatSourceRegions(); err != nil {
		return nil, err
	}
	return g, nil
}

// BuildTracks instantiates the deck's track list.
func (d *Deck) BuildTracks() []*Track {
	tracks := make([]*Track, len(d.Tracks))
	for i, tc := range d.Tracks {
		tracks[i] = NewTrack(tc.X, tc.Y, tc.PhiDeg*math.Pi/180)
	}
	return tracks
}

func (sc SurfaceCfg) surface() (*Surface, error) {
	if sc.ID < 1 {
		return nil, errors.Newf("deck surface ids must be >= 1, got %d", sc.ID).
			WithType(ErrTypeMissingReference).
			WithTag("kind", "surface").
			WithTag("id", sc.ID)
	}
	boundary, err := parseBoundary(sc.Boundary)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(sc.Type) {
	case "plane":
		return NewPlane(sc.ID, sc.A, sc.B, sc.C, boundary), nil
	case "xplane":
		return NewXPlane(sc.ID, sc.X0, boundary), nil
	case "yplane":
		return NewYPlane(sc.ID, sc.Y0, boundary), nil
	case "circle":
		return NewCircle(sc.ID, sc.X0, sc.Y0, sc.R, boundary), nil
	default:
		return nil, errors.Newf("unknown surface type %q", sc.Type).
			WithTag("id", sc.ID)
	}
}

func parseBoundary(s string) (BoundaryType, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return BoundaryNone, nil
	case "reflective":
		return BoundaryReflective, nil
	case "vacuum":
		return BoundaryVacuum, nil
	default:
		return BoundaryNone, errors.Newf("unknown boundary type %q", s)
	}
}

func (cc CellCfg) cell() (*Cell, error) {
	var c *Cell
	switch {
	case cc.Material != nil && cc.Fill == nil:
		c = NewCellBasic(cc.ID, cc.Universe, *cc.Material, cc.Sectors, cc.Rings)
	case cc.Fill != nil && cc.Material == nil:
		c = NewCellFill(cc.ID, cc.Universe, *cc.Fill)
	default:
		return nil, errors.Newf("cell %d must set exactly one of material and fill", cc.ID)
	}
	for _, sid := range cc.Surfaces {
		if sid == 0 {
			return nil, errors.Newf("cell %d references surface 0; signed ids start at 1", cc.ID)
		}
		sign := 1
		if sid < 0 {
			sign = -1
			sid = -sid
		}
		c.AddSurface(sign, sid)
	}
	return c, nil
}
