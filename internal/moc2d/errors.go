package moc2d

// Error types attached to engine failures. All failures are structural
// inconsistencies detected at registration, initialization, or traversal
// time; none are retried in-core. Classify with errors.IsType.
const (
	ErrTypeDuplicateID         = "duplicate_id"
	ErrTypeMissingReference    = "missing_reference"
	ErrTypeEnergyGroupMismatch = "energy_group_mismatch"
	ErrTypeSigmaTotalMismatch  = "sigma_total_mismatch"
	ErrTypeOutOfGeometry       = "out_of_geometry"
	ErrTypeZeroSegment         = "zero_segment"
	ErrTypeFSRLookup           = "fsr_lookup"
)
