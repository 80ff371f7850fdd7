package device

import (
	"fmt"
	"math"

	"github.com/voidheart88/gospice/internal/consts"
	"github.com/voidheart88/gospice/pkg/matrix"
	"github.com/voidheart88/gospice/pkg/stamp"
)

var _ Patterned = (*Diode)(nil)

type Diode struct {
	BaseDevice
	Is   float64 // Saturation current
	N    float64 // Emission coefficient
	Rs   float64 // Series resistance
	Cj0  float64 // Zero-bias junction capacitance
	M    float64 // Grading coefficient
	Vj   float64 // Built-in potential
	Bv   float64 // Breakdown voltage
	Gmin float64 // Minimum conductance

	vd float64 // Voltage across the junction
	id float64 // Current through the junction
	gd float64 // Conductance at the operating point

	vdOld float64
	idOld float64
}

func NewDiode(name string, nodeNames []string) *Diode {
	if len(nodeNames) != 2 {
		panic(fmt.Sprintf("diode %s: requires exactly 2 nodes", name))
	}

	d := &Diode{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
		},
	}
	d.setDefaultParameters()
	return d
}

func (d *Diode) GetType() string { return "D" }

// Pattern declares the diode's node-node stamp independently of Stamp:
// Stamp, StampAC, LoadConductance all touch the same two-terminal shape.
func (d *Diode) Pattern() stamp.TripleIdx {
	return nodePairPattern(d.Nodes[0], d.Nodes[1])
}

func (d *Diode) setDefaultParameters() {
	d.Is = 1e-14
	d.N = 1.0
	d.Rs = 0.0
	d.Cj0 = 0.0
	d.M = 0.5
	d.Vj = 1.0
	d.Bv = 100.0
	d.Gmin = 1e-12
}

// ApplyModel overrides default parameters from a parsed .model card.
func (d *Diode) ApplyModel(p map[string]float64) {
	if v, ok := p["IS"]; ok {
		d.Is = v
	}
	if v, ok := p["N"]; ok {
		d.N = v
	}
	if v, ok := p["RS"]; ok {
		d.Rs = v
	}
	if v, ok := p["CJ0"]; ok {
		d.Cj0 = v
	}
	if v, ok := p["VJ"]; ok {
		d.Vj = v
	}
	if v, ok := p["BV"]; ok {
		d.Bv = v
	}
}

// thermalVoltage is kT/q at the device temperature, scaled from the
// constant evaluated at consts.RoomTemp rather than re-deriving it, since
// it already carries the correctly rounded physical constants.
func (d *Diode) thermalVoltage(temp float64) float64 {
	if temp <= 0 {
		temp = consts.RoomTemp
	}
	return consts.ThermalVoltage * (temp / consts.RoomTemp)
}

func (d *Diode) calculateCurrent(vd float64, vt float64) float64 {
	if vd >= -5*vt {
		expArg := vd / (d.N * vt)
		if expArg > 40 {
			expArg = 40
		}
		return d.Is * (math.Exp(expArg) - 1)
	}

	if vd < -d.Bv {
		return -d.Is * (1 + (vd+d.Bv)/vt)
	}
	return -d.Is
}

func (d *Diode) calculateConductance(vd, id float64, vt float64) float64 {
	if vd >= -5*vt {
		return (id+d.Is)/(d.N*vt) + d.Gmin
	}
	if vd < -d.Bv {
		return d.Is/vt + d.Gmin
	}
	return d.Gmin
}

func (d *Diode) calculateJunctionCap(vd float64) float64 {
	if d.Cj0 == 0 {
		return 0
	}
	if vd < 0 {
		arg := 1 - vd/d.Vj
		if arg < 0.1 {
			arg = 0.1
		}
		return d.Cj0 / math.Pow(arg, d.M)
	}
	return d.Cj0 * (1 + d.M*vd/d.Vj)
}

func (d *Diode) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(d.Nodes) != 2 {
		return fmt.Errorf("diode %s: requires exactly 2 nodes", d.Name)
	}

	n1, n2 := d.Nodes[0], d.Nodes[1]
	vt := d.thermalVoltage(status.Temp)

	d.id = d.calculateCurrent(d.vd, vt)
	d.gd = d.calculateConductance(d.vd, d.id, vt)

	if n1 != 0 {
		matrix.AddElement(n1, n1, d.gd)
		if n2 != 0 {
			matrix.AddElement(n1, n2, -d.gd)
		}
		matrix.AddRHS(n1, -(d.id - d.gd*d.vd))
	}

	if n2 != 0 {
		if n1 != 0 {
			matrix.AddElement(n2, n1, -d.gd)
		}
		matrix.AddElement(n2, n2, d.gd)
		matrix.AddRHS(n2, (d.id - d.gd*d.vd))
	}

	return nil
}

func (d *Diode) StampAC(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(d.Nodes) != 2 {
		return fmt.Errorf("diode %s: requires exactly 2 nodes", d.Name)
	}

	n1, n2 := d.Nodes[0], d.Nodes[1]
	omega := 2 * math.Pi * status.Frequency

	cj := d.calculateJunctionCap(d.vd)
	yeq := complex(d.gd, omega*cj)

	if n1 != 0 {
		matrix.AddComplexElement(n1, n1, real(yeq), imag(yeq))
		if n2 != 0 {
			matrix.AddComplexElement(n1, n2, -real(yeq), -imag(yeq))
		}
	}

	if n2 != 0 {
		if n1 != 0 {
			matrix.AddComplexElement(n2, n1, -real(yeq), -imag(yeq))
		}
		matrix.AddComplexElement(n2, n2, real(yeq), imag(yeq))
	}

	return nil
}

func (d *Diode) LoadConductance(matrix matrix.DeviceMatrix) error {
	n1, n2 := d.Nodes[0], d.Nodes[1]

	if n1 != 0 {
		matrix.AddElement(n1, n1, d.gd)
		if n2 != 0 {
			matrix.AddElement(n1, n2, -d.gd)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			matrix.AddElement(n2, n1, -d.gd)
		}
		matrix.AddElement(n2, n2, d.gd)
	}

	return nil
}

func (d *Diode) LoadCurrent(matrix matrix.DeviceMatrix) error {
	n1, n2 := d.Nodes[0], d.Nodes[1]

	if n1 != 0 {
		matrix.AddRHS(n1, -(d.id - d.gd*d.vd))
	}
	if n2 != 0 {
		matrix.AddRHS(n2, (d.id - d.gd*d.vd))
	}

	return nil
}

func (d *Diode) SetTimeStep(dt float64) {}

func (d *Diode) UpdateState(voltages []float64, status *CircuitStatus) {
	d.vdOld, d.idOld = d.vd, d.id
}

func (d *Diode) CalculateLTE(voltages map[string]float64, status *CircuitStatus) float64 {
	return math.Abs(d.vd - d.vdOld)
}

func (d *Diode) UpdateVoltages(voltages []float64) error {
	if len(d.Nodes) != 2 {
		return fmt.Errorf("diode %s: requires exactly 2 nodes", d.Name)
	}

	n1, n2 := d.Nodes[0], d.Nodes[1]
	var v1, v2 float64

	if n1 != 0 {
		v1 = voltages[n1]
	}
	if n2 != 0 {
		v2 = voltages[n2]
	}

	d.vd = v1 - v2
	return nil
}
