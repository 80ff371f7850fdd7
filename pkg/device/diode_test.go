package device

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voidheart88/gospice/internal/consts"
)

func TestDiodeAtZeroVoltageMatchesSmallSignalConductance(t *testing.T) {
	d := NewDiode("D1", []string{"anode", "cathode"})
	d.SetNodes([]int{1, 2})

	m := &recordingMatrix{}
	status := &CircuitStatus{Temp: consts.RoomTemp}

	err := d.Stamp(m, status)
	assert.NoError(t, err)

	assert.InDelta(t, 0.0, d.id, 1e-10)

	want := d.Is/(d.N*consts.ThermalVoltage) + d.Gmin
	assert.InDelta(t, want, d.gd, 1e-15)
	assert.InDelta(t, want, m.at(1, 1), 1e-15)
	assert.InDelta(t, -want, m.at(1, 2), 1e-15)
}

func TestDiodeApplyModelOverridesDefaults(t *testing.T) {
	d := NewDiode("D1", []string{"anode", "cathode"})
	d.ApplyModel(map[string]float64{"IS": 1e-12, "N": 1.5, "BV": 50})

	assert.Equal(t, 1e-12, d.Is)
	assert.Equal(t, 1.5, d.N)
	assert.Equal(t, 50.0, d.Bv)
}

func TestDiodeForwardCurrentFollowsShockleyLaw(t *testing.T) {
	d := NewDiode("D1", []string{"anode", "cathode"})
	d.SetNodes([]int{1, 2})
	d.vd = 0.7

	m := &recordingMatrix{}
	status := &CircuitStatus{Temp: consts.RoomTemp}
	err := d.Stamp(m, status)
	assert.NoError(t, err)

	vt := consts.ThermalVoltage
	wantCurrent := d.Is * (math.Exp(0.7/vt) - 1)
	assert.InDelta(t, wantCurrent, d.id, wantCurrent*1e-9+1e-15)
}
