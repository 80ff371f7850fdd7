package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voidheart88/gospice/internal/consts"
)

func TestBJTAtZeroJunctionVoltagesCarriesNoCurrent(t *testing.T) {
	b := NewBJT("Q1", []string{"c", "b", "e"}, false)
	b.SetNodes([]int{1, 2, 3})

	m := &recordingMatrix{}
	status := &CircuitStatus{Temp: consts.RoomTemp}
	err := b.Stamp(m, status)
	assert.NoError(t, err)

	// vbe = vbc = 0 puts both diode terms at zero, so every terminal's
	// Norton-equivalent current source collapses to zero.
	assert.InDelta(t, 0.0, m.rhsAt(1), 1e-15)
	assert.InDelta(t, 0.0, m.rhsAt(2), 1e-15)
	assert.InDelta(t, 0.0, m.rhsAt(3), 1e-15)

	vt := consts.ThermalVoltage
	gif := b.Is / vt
	gmr := gif * (1 + 1/b.Br)
	assert.InDelta(t, gmr, m.at(1, 1), gmr*1e-9)
}

func TestBJTApplyModelOverridesDefaults(t *testing.T) {
	b := NewBJT("Q1", []string{"c", "b", "e"}, false)
	b.ApplyModel(map[string]float64{"IS": 1e-15, "BF": 200, "BR": 2})

	assert.Equal(t, 1e-15, b.Is)
	assert.Equal(t, 200.0, b.Bf)
	assert.Equal(t, 2.0, b.Br)
}

func TestBJTPNPFlipsCurrentSign(t *testing.T) {
	npn := NewBJT("Q1", []string{"c", "b", "e"}, false)
	pnp := NewBJT("Q2", []string{"c", "b", "e"}, true)

	npn.SetNodes([]int{1, 2, 3})
	pnp.SetNodes([]int{1, 2, 3})
	npn.vbe, npn.vbc = 0.6, -0.6
	pnp.vbe, pnp.vbc = 0.6, -0.6

	mn := &recordingMatrix{}
	mp := &recordingMatrix{}
	status := &CircuitStatus{Temp: consts.RoomTemp}

	assert.NoError(t, npn.Stamp(mn, status))
	assert.NoError(t, pnp.Stamp(mp, status))

	assert.InDelta(t, mn.at(1, 1), -mp.at(1, 1), 1e-20)
}
