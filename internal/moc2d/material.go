package moc2d

import (
	"fmt"
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Material carries the multigroup cross sections for one material.
// SigmaS is the group-to-group scattering matrix: SigmaS[g][gp] is the
// cross section for scattering from group g into group gp.
type Material struct {
	ID       int
	SigmaT   []Real
	SigmaA   []Real
	SigmaS   [][]Real
	NuSigmaF []Real
	Chi      []Real
}

// NewMaterial validates that every cross-section array spans the same
// number of energy groups.
func NewMaterial(id int, sigmaT, sigmaA []Real, sigmaS [][]Real, nuSigmaF, chi []Real) (*Material, error) {
	groups := len(sigmaT)
	if groups == 0 {
		return nil, errors.New("material contains no nuclear data").
			WithType(ErrTypeEnergyGroupMismatch).
			WithTag("material_id", id)
	}
	if len(sigmaA) != groups || len(sigmaS) != groups ||
		len(nuSigmaF) != groups || len(chi) != groups {
		return nil, errors.New("cross-section arrays span different group counts").
			WithType(ErrTypeEnergyGroupMismatch).
			WithTag("material_id", id).
			WithTag("num_groups", groups)
	}
	for g, row := range sigmaS {
		if len(row) != groups {
			return nil, errors.Newf("scattering matrix row %d has %d groups, want %d", g, len(row), groups).
				WithType(ErrTypeEnergyGroupMismatch).
				WithTag("material_id", id)
		}
	}
	return &Material{
		ID:       id,
		SigmaT:   sigmaT,
		SigmaA:   sigmaA,
		SigmaS:   sigmaS,
		NuSigmaF: nuSigmaF,
		Chi:      chi,
	}, nil
}

// NumGroups returns the number of energy groups of the nuclear data.
func (m *Material) NumGroups() int { return len(m.SigmaT) }

// CheckSigmaT verifies the total-consistency identity per group:
// sigma_t must equal sigma_a plus the scattering row sum within a
// relative tolerance of SigmaTTolerance.
func (m *Material) CheckSigmaT() error {
	for g := 0; g < m.NumGroups(); g++ {
		sum := m.SigmaA[g]
		for gp := 0; gp < m.NumGroups(); gp++ {
			sum += m.SigmaS[g][gp]
		}
		diff := math.Abs(m.SigmaT[g] - sum)
		if diff > SigmaTTolerance*math.Abs(m.SigmaT[g]) {
			return errors.Newf("sigma_t inconsistent in group %d: total=%g absorption+scattering=%g", g, m.SigmaT[g], sum).
				WithType(ErrTypeSigmaTotalMismatch).
				WithTag("material_id", m.ID).
				WithTag("group", g)
		}
	}
	return nil
}

func (m *Material) String() string {
	return fmt.Sprintf("Material(id=%d, groups=%d)", m.ID, m.NumGroups())
}
