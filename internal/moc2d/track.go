package moc2d

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Segment is the intersection of a track with a single flat source
// region: its chord length, the material filling it, and the FSR id.
// Immutable once emitted.
type Segment struct {
	Length   Real
	Material int
	Region   int
}

// Track is a straight characteristic chord through the geometry,
// parameterised by its start point and azimuthal angle. Segmentation
// appends segments in ray-parameter order.
type Track struct {
	Start    v2.Vec
	Phi      Real
	Segments []Segment
}

// NewTrack creates a track starting at (x, y) with azimuthal angle phi
// in radians.
func NewTrack(x, y, phi Real) *Track {
	return &Track{Start: v2.Vec{X: x, Y: y}, Phi: phi}
}

// AddSegment appends a segment to the track.
func (t *Track) AddSegment(s Segment) {
	t.Segments = append(t.Segments, s)
}

// NumSegments returns the number of segments created for the track.
func (t *Track) NumSegments() int { return len(t.Segments) }

func (t *Track) String() string {
	return fmt.Sprintf("Track(start=(%g, %g), phi=%g, segments=%d)",
		t.Start.X, t.Start.Y, t.Phi, len(t.Segments))
}
