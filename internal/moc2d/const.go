package moc2d

// Real is the floating point precision used throughout the engine.
type Real = float64

const (
	// TinyMove nudges a point off a surface so that the next point
	// location lands strictly inside a region instead of on a boundary.
	// Segment counts near subdivision vertices are sensitive to this
	// magnitude; keep it at 1e-8 (cm).
	TinyMove = 1e-8

	// SigmaTTolerance is the relative tolerance for the total
	// cross-section consistency identity sigma_t = sigma_a + sigma_s.
	SigmaTTolerance = 1e-5

	// RootUniverse is the distinguished id of the base universe.
	RootUniverse = 0
)
