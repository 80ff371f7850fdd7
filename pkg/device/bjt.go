package device

import (
	"fmt"
	"math"

	"github.com/voidheart88/gospice/internal/consts"
	"github.com/voidheart88/gospice/pkg/matrix"
)

// BJT is a three-terminal bipolar transistor using the classic two-diode
// Ebers-Moll transport model (no Gummel-Poon base-width modulation, base
// resistance, or junction charge storage): collector, base and emitter
// currents are each a sum of exponential diode terms in Vbe and Vbc,
// linearized into a Norton companion model every Newton iteration the same
// way Diode is.
type BJT struct {
	BaseDevice
	IsPNP bool
	Is    float64 // Saturation current
	Bf    float64 // Forward current gain
	Br    float64 // Reverse current gain
	Gmin  float64

	vbe, vbc    float64 // Operating-point junction voltages
	vc, vb, ve  float64 // Operating-point terminal voltages (0 at ground)
}

func NewBJT(name string, nodeNames []string, isPNP bool) *BJT {
	if len(nodeNames) != 3 {
		panic(fmt.Sprintf("bjt %s: requires exactly 3 nodes (C, B, E)", name))
	}
	b := &BJT{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, 3),
			NodeNames: nodeNames,
		},
		IsPNP: isPNP,
	}
	b.setDefaultParameters()
	return b
}

func (b *BJT) GetType() string { return "Q" }

func (b *BJT) setDefaultParameters() {
	b.Is = 1e-16
	b.Bf = 100
	b.Br = 1
	b.Gmin = 1e-12
}

func (b *BJT) ApplyModel(p map[string]float64) {
	if v, ok := p["IS"]; ok {
		b.Is = v
	}
	if v, ok := p["BF"]; ok {
		b.Bf = v
	}
	if v, ok := p["BR"]; ok {
		b.Br = v
	}
}

func limitExp(x float64) float64 {
	if x > 80 {
		return 80
	}
	if x < -80 {
		return -80
	}
	return x
}

// stamp3Terminal is the shared companion-model pattern for a device whose
// current at each of three terminals is a function of the other two (the
// same Norton-equivalent idea as Diode.Stamp, generalized from two
// terminals to three): jac[k][m] is dI_k/dV_m and current[k] is I_k at the
// present operating point.
func stamp3Terminal(m matrix.DeviceMatrix, nodes [3]int, jac [3][3]float64, current [3]float64) {
	for k := 0; k < 3; k++ {
		if nodes[k] == 0 {
			continue
		}
		for c := 0; c < 3; c++ {
			if nodes[c] == 0 {
				continue
			}
			m.AddElement(nodes[k], nodes[c], jac[k][c])
		}
		m.AddRHS(nodes[k], -current[k])
	}
}

func (b *BJT) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) error {
	nc, nb, ne := b.Nodes[0], b.Nodes[1], b.Nodes[2]

	vt := consts.ThermalVoltage
	if status.Temp > 0 {
		vt = consts.ThermalVoltage * (status.Temp / consts.RoomTemp)
	}

	sign := 1.0
	if b.IsPNP {
		sign = -1.0
	}

	expBE := math.Exp(limitExp(b.vbe / vt))
	expBC := math.Exp(limitExp(b.vbc / vt))

	ifCur := b.Is * (expBE - 1)
	irCur := b.Is * (expBC - 1)

	ic := sign * (ifCur - irCur - irCur/b.Br)
	ib := sign * (ifCur/b.Bf + irCur/b.Br)
	ie := -(ic + ib)

	gif := b.Is / vt * expBE
	gir := b.Is / vt * expBC

	gmf := sign * gif
	gmr := sign * gir * (1 + 1/b.Br)
	gpi := sign * gif / b.Bf
	gmu := sign * gir / b.Br

	jac := [3][3]float64{
		{gmr, gmf - gmr, -gmf},
		{-gmu, gpi + gmu, -gpi},
	}
	jac[2] = [3]float64{
		-(jac[0][0] + jac[1][0]),
		-(jac[0][1] + jac[1][1]),
		-(jac[0][2] + jac[1][2]),
	}

	vOp := [3]float64{b.vc, b.vb, b.ve}
	current := [3]float64{ic, ib, ie}
	// Norton correction: I_eq = I(op) - J*V(op), so the linearized model
	// passes exactly through the current operating point.
	for k := 0; k < 3; k++ {
		for c := 0; c < 3; c++ {
			current[k] -= jac[k][c] * vOp[c]
		}
	}

	stamp3Terminal(m, [3]int{nc, nb, ne}, jac, current)
	return nil
}

func (b *BJT) LoadConductance(m matrix.DeviceMatrix) error {
	return b.Stamp(m, &CircuitStatus{Temp: consts.RoomTemp})
}

func (b *BJT) LoadCurrent(m matrix.DeviceMatrix) error { return nil }

func (b *BJT) UpdateVoltages(voltages []float64) error {
	nc, nb, ne := b.Nodes[0], b.Nodes[1], b.Nodes[2]
	var vc, vb, ve float64
	if nc != 0 {
		vc = voltages[nc]
	}
	if nb != 0 {
		vb = voltages[nb]
	}
	if ne != 0 {
		ve = voltages[ne]
	}

	b.vc, b.vb, b.ve = vc, vb, ve
	b.vbe = vb - ve
	b.vbc = vb - vc
	return nil
}
