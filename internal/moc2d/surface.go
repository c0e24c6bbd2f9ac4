package moc2d

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// BoundaryType tags the behaviour of a surface at the geometry edge.
type BoundaryType int

const (
	BoundaryNone BoundaryType = iota
	BoundaryReflective
	BoundaryVacuum
)

func (b BoundaryType) String() string {
	switch b {
	case BoundaryReflective:
		return "reflective"
	case BoundaryVacuum:
		return "vacuum"
	default:
		return "none"
	}
}

// SurfaceKind enumerates the closed set of primitive surface variants.
type SurfaceKind int

const (
	SurfacePlane SurfaceKind = iota
	SurfaceXPlane
	SurfaceYPlane
	SurfaceCircle
)

// Surface is an oriented algebraic primitive in the plane. The sign of
// Evaluate classifies which halfspace a point is in.
//
//	Plane:  A*x + B*y + C = 0
//	XPlane: x - X0 = 0
//	YPlane: y - Y0 = 0
//	Circle: (x-X0)^2 + (y-Y0)^2 - R^2 = 0 (negative inside)
type Surface struct {
	ID       int
	Kind     SurfaceKind
	Boundary BoundaryType

	A, B, C   Real // generic plane coefficients
	X0, Y0, R Real // axis planes and circles
}

// NewPlane creates a generic plane A*x + B*y + C = 0.
func NewPlane(id int, a, b, c Real, boundary BoundaryType) *Surface {
	return &Surface{ID: id, Kind: SurfacePlane, Boundary: boundary, A: a, B: b, C: c}
}

// NewXPlane creates the vertical plane x = x0.
func NewXPlane(id int, x0 Real, boundary BoundaryType) *Surface {
	return &Surface{ID: id, Kind: SurfaceXPlane, Boundary: boundary, X0: x0}
}

// NewYPlane creates the horizontal plane y = y0.
func NewYPlane(id int, y0 Real, boundary BoundaryType) *Surface {
	return &Surface{ID: id, Kind: SurfaceYPlane, Boundary: boundary, Y0: y0}
}

// NewCircle creates a circle centered at (x0, y0) with radius r.
func NewCircle(id int, x0, y0, r Real, boundary BoundaryType) *Surface {
	return &Surface{ID: id, Kind: SurfaceCircle, Boundary: boundary, X0: x0, Y0: y0, R: r}
}

// Evaluate returns the signed value of the surface equation at p.
func (s *Surface) Evaluate(p v2.Vec) Real {
	switch s.Kind {
	case SurfacePlane:
		return s.A*p.X + s.B*p.Y + s.C
	case SurfaceXPlane:
		return p.X - s.X0
	case SurfaceYPlane:
		return p.Y - s.Y0
	default:
		dx := p.X - s.X0
		dy := p.Y - s.Y0
		return dx*dx + dy*dy - s.R*s.R
	}
}

// Axis-aligned extents. Planes that are not axis-bounded report infinity;
// the geometry bounding box only grows from finite extents.

func (s *Surface) XMin() Real {
	switch s.Kind {
	case SurfaceXPlane:
		return s.X0
	case SurfaceCircle:
		return s.X0 - s.R
	default:
		return math.Inf(-1)
	}
}

func (s *Surface) XMax() Real {
	switch s.Kind {
	case SurfaceXPlane:
		return s.X0
	case SurfaceCircle:
		return s.X0 + s.R
	default:
		return math.Inf(1)
	}
}

func (s *Surface) YMin() Real {
	switch s.Kind {
	case SurfaceYPlane:
		return s.Y0
	case SurfaceCircle:
		return s.Y0 - s.R
	default:
		return math.Inf(-1)
	}
}

func (s *Surface) YMax() Real {
	switch s.Kind {
	case SurfaceYPlane:
		return s.Y0
	case SurfaceCircle:
		return s.Y0 + s.R
	default:
		return math.Inf(1)
	}
}

// Intersection returns the smallest strictly positive distance d such
// that p + d*(cos phi, sin phi) lies on the surface, or +Inf if the ray
// never reaches it.
func (s *Surface) Intersection(p v2.Vec, phi Real) Real {
	cos := math.Cos(phi)
	sin := math.Sin(phi)

	switch s.Kind {
	case SurfacePlane:
		return planeDist(s.A, s.B, s.A*p.X+s.B*p.Y+s.C, cos, sin)
	case SurfaceXPlane:
		return planeDist(1, 0, p.X-s.X0, cos, sin)
	case SurfaceYPlane:
		return planeDist(0, 1, p.Y-s.Y0, cos, sin)
	default:
		return s.circleDist(p, cos, sin)
	}
}

// planeDist solves n.(p + d*u) + c = 0 given eval = n.p + c. Rays that
// run (numerically) parallel to the plane never cross it; without the
// cutoff a ray lying on the plane would produce a phantom crossing at
// -eval/denom with both terms at roundoff scale.
func planeDist(nx, ny, eval, cos, sin Real) Real {
	denom := nx*cos + ny*sin
	if math.Abs(denom) < 1e-12 {
		return math.Inf(1)
	}
	d := -eval / denom
	if d <= 0 {
		return math.Inf(1)
	}
	return d
}

// circleDist returns the minimum positive root of the ray-circle
// quadratic, or +Inf if both roots are non-positive or complex.
func (s *Surface) circleDist(p v2.Vec, cos, sin Real) Real {
	dx := p.X - s.X0
	dy := p.Y - s.Y0
	b := 2 * (dx*cos + dy*sin)
	c := dx*dx + dy*dy - s.R*s.R
	disc := b*b - 4*c
	if disc < 0 {
		return math.Inf(1)
	}
	sq := math.Sqrt(disc)
	d := math.Inf(1)
	if t := (-b - sq) / 2; t > 0 {
		d = t
	}
	if t := (-b + sq) / 2; t > 0 && t < d {
		d = t
	}
	return d
}

func (s *Surface) String() string {
	switch s.Kind {
	case SurfacePlane:
		return fmt.Sprintf("Plane(id=%d, %gx + %gy + %g = 0, %s)", s.ID, s.A, s.B, s.C, s.Boundary)
	case SurfaceXPlane:
		return fmt.Sprintf("XPlane(id=%d, x=%g, %s)", s.ID, s.X0, s.Boundary)
	case SurfaceYPlane:
		return fmt.Sprintf("YPlane(id=%d, y=%g, %s)", s.ID, s.Y0, s.Boundary)
	default:
		return fmt.Sprintf("Circle(id=%d, center=(%g, %g), r=%g, %s)", s.ID, s.X0, s.Y0, s.R, s.Boundary)
	}
}
