package device

import (
	"math"

	"github.com/voidheart88/gospice/pkg/matrix"
)

// VoltageSource is an independent voltage source carrying its own branch
// current as an MNA unknown. Its time-domain waveform is selected by
// WaveformKind; DC/SIN/PULSE/PWL are all the same element shape with
// different GetVoltage behavior, matching spec §4.2's VSource/VSourceSin/
// VSourceStep family.
type VoltageSource struct {
	BaseDevice
	vtype WaveformKind
	// DC, common params
	dcValue float64
	// SIN params
	amplitude float64
	freq      float64
	phase     float64
	// PULSE/STEP params
	v1     float64
	v2     float64
	delay  float64
	rise   float64
	fall   float64
	pWidth float64
	period float64
	// PWL params
	times  []float64
	values []float64
	// AC params
	acMag   float64
	acPhase float64
	// Branch index for MNA
	branchIdx int
}

var _ BranchOwner = (*VoltageSource)(nil)

func NewDCVoltageSource(name string, nodeNames []string, value float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
			Value:     value,
		},
		vtype:   DC,
		dcValue: value,
	}
}

func NewSinVoltageSource(name string, nodeNames []string, offset, amplitude, freq, phase float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
			Value:     offset,
		},
		vtype:     SIN,
		dcValue:   offset,
		amplitude: amplitude,
		freq:      freq,
		phase:     phase,
	}
}

// NewPulseVoltageSource builds a periodic trapezoidal pulse source: v1 until
// delay, ramps to v2 over rise, holds pWidth, ramps back over fall, then
// repeats every period (period<=0 means the pulse fires once).
func NewPulseVoltageSource(name string, nodeNames []string, v1, v2, delay, rise, fall, pWidth, period float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
			Value:     v1,
		},
		vtype:  PULSE,
		v1:     v1,
		v2:     v2,
		delay:  delay,
		rise:   rise,
		fall:   fall,
		pWidth: pWidth,
		period: period,
	}
}

// NewPWLVoltageSource builds a piecewise-linear source interpolating between
// the given (time, value) breakpoints; times must be strictly increasing.
func NewPWLVoltageSource(name string, nodeNames []string, times []float64, values []float64) *VoltageSource {
	v0 := 0.0
	if len(values) > 0 {
		v0 = values[0]
	}
	return &VoltageSource{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
			Value:     v0,
		},
		vtype:  PWL,
		times:  times,
		values: values,
	}
}

func NewACVoltageSource(name string, nodeNames []string, dcValue, acMag, acPhase float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
			Value:     dcValue,
		},
		vtype:   DC,
		dcValue: dcValue,
		acMag:   acMag,
		acPhase: acPhase,
	}
}

func (v *VoltageSource) GetVoltage(t float64) float64 {
	switch v.vtype {
	case DC:
		return v.dcValue
	case SIN:
		phaseRad := v.phase * math.Pi / 180.0
		return v.dcValue + v.amplitude*math.Sin(2.0*math.Pi*v.freq*t+phaseRad)
	case PULSE:
		return v.getPulseVoltage(t)
	case PWL:
		return v.getPWLVoltage(t)
	default:
		return 0
	}
}

func (v *VoltageSource) GetType() string { return "V" }

func (v *VoltageSource) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if status.Mode == ACAnalysis {
		return v.StampAC(matrix, status)
	}

	n1, n2 := v.Nodes[0], v.Nodes[1]
	bIdx := v.branchIdx

	// v1 - v2 = V
	if n1 != 0 {
		matrix.AddElement(bIdx, n1, 1) // v1 coefficient
		matrix.AddElement(n1, bIdx, 1) // n1 current
	}
	if n2 != 0 {
		matrix.AddElement(bIdx, n2, -1) // -v2 coefficient
		matrix.AddElement(n2, bIdx, -1) // n2 current
	}

	voltage := v.GetVoltage(status.Time)
	matrix.AddRHS(bIdx, voltage)
	return nil
}

// Stamp for AC analysis
func (v *VoltageSource) StampAC(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	n1, n2 := v.Nodes[0], v.Nodes[1]
	bIdx := v.branchIdx

	acPhaseRad := v.acPhase * math.Pi / 180.0
	voltageReal := v.acMag * math.Cos(acPhaseRad)
	voltageImag := v.acMag * math.Sin(acPhaseRad)

	if n1 != 0 {
		matrix.AddComplexElement(bIdx, n1, 1.0, 0.0)
		matrix.AddComplexElement(n1, bIdx, 1.0, 0.0)
	}
	if n2 != 0 {
		matrix.AddComplexElement(bIdx, n2, -1.0, 0.0)
		matrix.AddComplexElement(n2, bIdx, -1.0, 0.0)
	}

	matrix.AddComplexRHS(bIdx, voltageReal, voltageImag)

	return nil
}

func (v *VoltageSource) getPulseVoltage(t float64) float64 {
	if t < v.delay {
		return v.v1
	}

	t = t - v.delay
	if v.period > 0 {
		t = math.Mod(t, v.period)
	}

	if t < v.rise {
		if v.rise == 0 {
			return v.v2
		}
		return v.v1 + (v.v2-v.v1)*t/v.rise
	}

	if t < v.rise+v.pWidth {
		return v.v2
	}

	fallStart := v.rise + v.pWidth
	if t < fallStart+v.fall {
		if v.fall == 0 {
			return v.v1
		}
		return v.v2 - (v.v2-v.v1)*(t-fallStart)/v.fall
	}

	return v.v1
}

func (v *VoltageSource) getPWLVoltage(t float64) float64 {
	if len(v.times) == 0 {
		return 0
	}
	if t <= v.times[0] {
		return v.values[0]
	}

	lastIdx := len(v.times) - 1
	if t >= v.times[lastIdx] {
		return v.values[lastIdx]
	}

	for idx := 1; idx < len(v.times); idx++ {
		if t <= v.times[idx] {
			t1, t2 := v.times[idx-1], v.times[idx]
			v1, v2 := v.values[idx-1], v.values[idx]
			slope := (v2 - v1) / (t2 - t1)
			return v1 + slope*(t-t1)
		}
	}

	return v.values[lastIdx] // Must not reach
}

func (v *VoltageSource) BranchIndex() int {
	return v.branchIdx
}

func (v *VoltageSource) SetBranchIndex(idx int) {
	v.branchIdx = idx
}

func (v *VoltageSource) SetValue(value float64) {
	v.Value = value
	v.dcValue = value
}

// VSourceSin is a sinusoidal source exposed as its own type so a netlist
// front end (or test) can type-assert on it without inspecting vtype; it
// delegates entirely to an embedded DC/SIN VoltageSource.
type VSourceSin struct {
	*VoltageSource
}

func NewVSourceSin(name string, nodeNames []string, offset, amplitude, freq, phase float64) *VSourceSin {
	return &VSourceSin{VoltageSource: NewSinVoltageSource(name, nodeNames, offset, amplitude, freq, phase)}
}

// VSourceStep is a one-shot or periodic step/pulse source exposed as its own
// type, delegating to an embedded PULSE VoltageSource with rise==fall==0 for
// an instantaneous transition (rise/fall > 0 gives a ramped step).
type VSourceStep struct {
	*VoltageSource
}

func NewVSourceStep(name string, nodeNames []string, v1, v2, delay, rise, fall, pWidth, period float64) *VSourceStep {
	return &VSourceStep{VoltageSource: NewPulseVoltageSource(name, nodeNames, v1, v2, delay, rise, fall, pWidth, period)}
}
