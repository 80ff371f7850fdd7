package device

import (
	"math"

	"github.com/voidheart88/gospice/pkg/matrix"
	"github.com/voidheart88/gospice/pkg/stamp"
	"github.com/voidheart88/gospice/pkg/util"
)

var _ Patterned = (*Capacitor)(nil)

type Capacitor struct {
	BaseDevice
	Voltage0 float64 // Current voltage
	Voltage1 float64 // Previous voltage
	current0 float64 // Current current
	charge0  float64 // Current charge
	charge1  float64 // Previous charge
}

var _ TimeDependent = (*Capacitor)(nil)

func NewCapacitor(name string, nodeNames []string, value float64) *Capacitor {
	return &Capacitor{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
			Value:     value,
		},
	}
}

func (c *Capacitor) GetType() string { return "C" }

// Stamp implements the contract of spec §4.2: time_variant_triples stamps
// G_eq in the resistor pattern, time_variant_pairs stamps the history
// current, both scaled according to status.Method (Backward Euler,
// Trapezoidal or Forward Euler, per §4.7). At OP the capacitor is an open
// circuit regularized by Gmin; under AC it is a pure jωC admittance.
func (c *Capacitor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	n1, n2 := c.Nodes[0], c.Nodes[1]

	switch status.Mode {
	case ACAnalysis:
		omega := 2 * math.Pi * status.Frequency
		imagG := omega * c.Value

		if n1 != 0 {
			matrix.AddComplexElement(n1, n1, 0, imagG)
			if n2 != 0 {
				matrix.AddComplexElement(n1, n2, 0, -imagG)
			}
		}
		if n2 != 0 {
			matrix.AddComplexElement(n2, n2, 0, imagG)
			if n1 != 0 {
				matrix.AddComplexElement(n2, n1, 0, -imagG)
			}
		}

	case OperatingPointAnalysis:
		gmin := status.Gmin
		if gmin < 1e-12 {
			gmin = 1e-12
		}
		if n1 != 0 {
			matrix.AddElement(n1, n1, gmin)
			if n2 != 0 {
				matrix.AddElement(n1, n2, -gmin)
			}
		}
		if n2 != 0 {
			matrix.AddElement(n2, n2, gmin)
			if n1 != 0 {
				matrix.AddElement(n2, n1, -gmin)
			}
		}

	case TransientAnalysis:
		dt := status.TimeStep
		method := util.IntegrationMethod(status.Method)

		var geq float64
		switch method {
		case util.TrapezoidalMethod:
			coeffs := util.GetIntegratorCoeffs(method, 2, dt)
			geq = c.Value * coeffs[0]
		case util.ForwardEulerMethod:
			// A capacitor's equivalent conductance and history current are
			// the same under Forward Euler as under Backward Euler: C/dt
			// and G_eq*V_prev. The explicit/implicit distinction only
			// matters for an inductor's branch-current formulation.
			geq = c.Value / dt
		default:
			coeffs := util.GetIntegratorCoeffs(util.GearMethod, 1, dt)
			geq = c.Value * coeffs[0]
		}
		ceq := geq * c.Voltage0

		if n1 != 0 {
			matrix.AddElement(n1, n1, geq)
			if n2 != 0 {
				matrix.AddElement(n1, n2, -geq)
			}
			matrix.AddRHS(n1, ceq)
		}
		if n2 != 0 {
			matrix.AddElement(n2, n2, geq)
			if n1 != 0 {
				matrix.AddElement(n2, n1, -geq)
			}
			matrix.AddRHS(n2, -ceq)
		}
	}

	return nil
}

// Pattern declares the capacitor's node-node stamp independently of Stamp,
// since every mode (OP, AC, transient) stamps the same two-terminal shape.
func (c *Capacitor) Pattern() stamp.TripleIdx {
	return nodePairPattern(c.Nodes[0], c.Nodes[1])
}

func (c *Capacitor) SetTimeStep(dt float64) {}

func (c *Capacitor) UpdateState(voltages []float64, status *CircuitStatus) {
	v1 := 0.0
	if c.Nodes[0] != 0 {
		v1 = voltages[c.Nodes[0]]
	}
	v2 := 0.0
	if c.Nodes[1] != 0 {
		v2 = voltages[c.Nodes[1]]
	}
	vd := v1 - v2

	if status.IntegMode == PredictMode {
		c.charge0 = c.charge1
		c.Voltage0 = c.Voltage1
	} else {
		c.charge1 = c.charge0
		c.Voltage1 = c.Voltage0
		c.Voltage0 = vd
		c.charge0 = c.Value * vd
		c.current0 = c.Value * (vd - c.Voltage1) / status.TimeStep
	}
}

func (c *Capacitor) CalculateLTE(voltages map[string]float64, status *CircuitStatus) float64 {
	qNew := c.Value * c.Voltage0
	qOld := c.Value * c.Voltage1

	return math.Abs(qNew-qOld) / (2.0 * status.TimeStep)
}
