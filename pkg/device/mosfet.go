package device

import (
	"fmt"
	"math"

	"github.com/voidheart88/gospice/internal/consts"
	"github.com/voidheart88/gospice/pkg/matrix"
)

// MOSFET is a three-terminal (drain, gate, source) level-0 Shichman-Hodges
// square-law device: no body-effect threshold shift, no sub-threshold
// conduction, no channel-length-modulation-dependent capacitance — gate
// draws no DC current and the drain current is the textbook triode/
// saturation pair linearized into a Norton companion model every Newton
// iteration.
type MOSFET struct {
	BaseDevice
	IsPMOS bool
	Vto    float64 // Threshold voltage
	Kp     float64 // Transconductance parameter, A/V^2
	W      float64 // Channel width, m
	L      float64 // Channel length, m
	Lambda float64 // Channel-length modulation
	Gmin   float64

	vgs, vds    float64 // Operating-point junction voltages (source-referenced)
	vd, vg, vs  float64 // Operating-point terminal voltages (0 at ground)
}

func NewMOSFET(name string, nodeNames []string, isPMOS bool) *MOSFET {
	if len(nodeNames) != 3 {
		panic(fmt.Sprintf("mosfet %s: requires exactly 3 nodes (D, G, S)", name))
	}
	d := &MOSFET{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, 3),
			NodeNames: nodeNames,
		},
		IsPMOS: isPMOS,
	}
	d.setDefaultParameters()
	return d
}

func (d *MOSFET) GetType() string { return "M" }

func (d *MOSFET) setDefaultParameters() {
	d.Vto = 1.0
	d.Kp = 2e-5
	d.W = 1e-4
	d.L = 1e-6
	d.Lambda = 0.01
	d.Gmin = 1e-12
}

func (d *MOSFET) ApplyModel(p map[string]float64) {
	if v, ok := p["VTO"]; ok {
		d.Vto = v
	}
	if v, ok := p["KP"]; ok {
		d.Kp = v
	}
	if v, ok := p["W"]; ok {
		d.W = v
	}
	if v, ok := p["L"]; ok {
		d.L = v
	}
	if v, ok := p["LAMBDA"]; ok {
		d.Lambda = v
	}
}

// draincurrent returns Id, dId/dVgs, dId/dVds for the NMOS sign convention;
// the caller flips signs for PMOS.
func (d *MOSFET) drainCurrent(vgs, vds float64) (id, gm, gds float64) {
	vov := vgs - d.Vto
	beta := d.Kp * d.W / d.L

	if vov <= 0 {
		// Cutoff: Gmin keeps the Jacobian nonsingular with the channel off.
		return d.Gmin * vds, 0, d.Gmin
	}

	if vds < vov {
		// Triode
		id = beta * (vov*vds - vds*vds/2) * (1 + d.Lambda*vds)
		gm = beta * vds * (1 + d.Lambda*vds)
		gds = beta*(vov-vds)*(1+d.Lambda*vds) + beta*(vov*vds-vds*vds/2)*d.Lambda
		return id, gm, gds
	}

	// Saturation
	id = beta / 2 * vov * vov * (1 + d.Lambda*vds)
	gm = beta * vov * (1 + d.Lambda*vds)
	gds = beta / 2 * vov * vov * d.Lambda
	return id, gm, gds
}

func (d *MOSFET) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) error {
	nd, ng, ns := d.Nodes[0], d.Nodes[1], d.Nodes[2]

	sign := 1.0
	vgs, vds := d.vgs, d.vds
	if d.IsPMOS {
		sign = -1.0
		vgs, vds = -vgs, -vds
	}

	id, gm, gds := d.drainCurrent(vgs, vds)
	id *= sign

	// dId/dVd, dId/dVg, dId/dVs in absolute node terms (Vgs=Vg-Vs, Vds=Vd-Vs)
	jac := [3][3]float64{
		{sign * gds, sign * gm, -sign * (gm + gds)}, // dId/d{VD,VG,VS}
		{0, 0, 0},                                   // gate draws no current
	}
	jac[2] = [3]float64{-jac[0][0], -jac[0][1], -jac[0][2]} // Is = -Id

	vOp := [3]float64{d.vd, d.vg, d.vs}
	current := [3]float64{id, 0, -id}
	for k := 0; k < 3; k++ {
		for c := 0; c < 3; c++ {
			current[k] -= jac[k][c] * vOp[c]
		}
	}

	stamp3Terminal(m, [3]int{nd, ng, ns}, jac, current)
	return nil
}

func (d *MOSFET) LoadConductance(m matrix.DeviceMatrix) error {
	return d.Stamp(m, &CircuitStatus{Temp: consts.RoomTemp})
}

func (d *MOSFET) LoadCurrent(m matrix.DeviceMatrix) error { return nil }

func (d *MOSFET) UpdateVoltages(voltages []float64) error {
	nd, ng, ns := d.Nodes[0], d.Nodes[1], d.Nodes[2]
	var vd, vg, vs float64
	if nd != 0 {
		vd = voltages[nd]
	}
	if ng != 0 {
		vg = voltages[ng]
	}
	if ns != 0 {
		vs = voltages[ns]
	}

	d.vd, d.vg, d.vs = vd, vg, vs
	d.vgs = vg - vs
	d.vds = vd - vs
	return nil
}
