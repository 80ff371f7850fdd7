package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMOSFETSaturationStampMatchesSquareLaw(t *testing.T) {
	m := NewMOSFET("M1", []string{"d", "g", "s"}, false)
	m.SetNodes([]int{1, 2, 3})
	m.vg, m.vs, m.vd = 2.0, 0.0, 5.0
	m.vgs, m.vds = 2.0, 5.0

	rec := &recordingMatrix{}
	err := m.Stamp(rec, &CircuitStatus{})
	assert.NoError(t, err)

	vov := m.vgs - m.Vto // 1.0
	beta := m.Kp * m.W / m.L
	wantGds := beta / 2 * vov * vov * m.Lambda
	wantGm := beta * vov * (1 + m.Lambda*m.vds)

	assert.InDelta(t, wantGds, rec.at(1, 1), wantGds*1e-9+1e-15)
	assert.InDelta(t, wantGm, rec.at(1, 2), wantGm*1e-9+1e-15)
	// gate draws no current at all
	assert.InDelta(t, 0.0, rec.at(2, 1), 1e-15)
	assert.InDelta(t, 0.0, rec.at(2, 2), 1e-15)
	assert.InDelta(t, 0.0, rec.rhsAt(2), 1e-15)
}

func TestMOSFETCutoffHasOnlyGminLeakage(t *testing.T) {
	m := NewMOSFET("M1", []string{"d", "g", "s"}, false)
	m.SetNodes([]int{1, 2, 3})
	m.vg, m.vs, m.vd = 0.0, 0.0, 5.0
	m.vgs, m.vds = 0.0, 5.0

	rec := &recordingMatrix{}
	err := m.Stamp(rec, &CircuitStatus{})
	assert.NoError(t, err)

	assert.InDelta(t, m.Gmin, rec.at(1, 1), m.Gmin*1e-9)
	assert.InDelta(t, 0.0, rec.at(1, 2), 1e-15)
}

func TestMOSFETApplyModelOverridesDefaults(t *testing.T) {
	m := NewMOSFET("M1", []string{"d", "g", "s"}, true)
	m.ApplyModel(map[string]float64{"VTO": -0.8, "KP": 5e-5, "W": 2e-4, "L": 2e-6, "LAMBDA": 0.02})

	assert.Equal(t, -0.8, m.Vto)
	assert.Equal(t, 5e-5, m.Kp)
	assert.Equal(t, 2e-4, m.W)
	assert.Equal(t, 2e-6, m.L)
	assert.Equal(t, 0.02, m.Lambda)
	assert.True(t, m.IsPMOS)
}
