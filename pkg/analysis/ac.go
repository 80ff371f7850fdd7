package analysis

import (
	"fmt"
	"math"

	"github.com/voidheart88/gospice/internal/consts"
	"github.com/voidheart88/gospice/pkg/circuit"
	"github.com/voidheart88/gospice/pkg/device"
)

type ACAnalysis struct {
	BaseAnalysis
	op          *OperatingPoint
	startFreq   float64
	stopFreq    float64
	numPoints   int
	pointsType  string // "DEC", "OCT", "LIN"
	frequencies []float64
}

func NewAC(fStart, fStop float64, nPoints int, pType string) *ACAnalysis {
	return &ACAnalysis{
		BaseAnalysis: *NewBaseAnalysis(),
		op:           NewOP(),
		startFreq:    fStart,
		stopFreq:     fStop,
		numPoints:    nPoints,
		pointsType:   pType,
	}
}

func (ac *ACAnalysis) Setup(ckt *circuit.Circuit) error {
	ac.Circuit = ckt

	if err := ac.op.Setup(ckt); err != nil {
		return fmt.Errorf("operating point setup error: %v", err)
	}
	if err := ac.op.Execute(); err != nil {
		return fmt.Errorf("operating point analysis error: %v", err)
	}

	ac.generateFrequencyPoints()
	return nil
}

func (ac *ACAnalysis) Execute() error {
	if ac.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}

	for _, freq := range ac.frequencies {
		ac.Circuit.Status = &device.CircuitStatus{
			Frequency: freq,
			Mode:      device.ACAnalysis,
			Temp:      consts.RoomTemp,
		}

		mat := ac.Circuit.GetMatrix()
		mat.Clear()
		if err := ac.Circuit.Stamp(ac.Circuit.Status); err != nil {
			return fmt.Errorf("stamping error at f=%g: %v", freq, err)
		}

		if err := mat.Solve(); err != nil {
			return fmt.Errorf("%w at f=%g: %v", ErrSingularMatrix, freq, err)
		}

		solution := make(map[string]complex128)

		for name, nodeIdx := range ac.Circuit.GetNodeMap() {
			if nodeIdx > 0 {
				real, imag := mat.GetComplexSolution(nodeIdx)
				solution[fmt.Sprintf("V(%s)", name)] = complex(real, imag)
			}
		}

		for name, bIdx := range ac.Circuit.GetBranchMap() {
			real, imag := mat.GetComplexSolution(bIdx)
			solution[fmt.Sprintf("I(%s)", name)] = complex(real, imag)
		}

		ac.StoreACResult(freq, solution)
	}

	return nil
}

// generateFrequencyPoints builds spec §4.6's N+1-point schedule: numPoints
// names the number of intervals (decades, octaves, or linear divisions),
// so the sweep itself always has one more point than that.
func (ac *ACAnalysis) generateFrequencyPoints() {
	n := ac.numPoints + 1
	ac.frequencies = make([]float64, n)

	switch ac.pointsType {
	case "DEC":
		logStart := math.Log10(ac.startFreq)
		logStop := math.Log10(ac.stopFreq)
		step := (logStop - logStart) / float64(ac.numPoints)
		for i := range n {
			ac.frequencies[i] = math.Pow(10, logStart+float64(i)*step)
		}

	case "OCT":
		logStart := math.Log2(ac.startFreq)
		logStop := math.Log2(ac.stopFreq)
		step := (logStop - logStart) / float64(ac.numPoints)
		for i := range n {
			ac.frequencies[i] = math.Pow(2, logStart+float64(i)*step)
		}

	case "LIN":
		step := (ac.stopFreq - ac.startFreq) / float64(ac.numPoints)
		for i := range n {
			ac.frequencies[i] = ac.startFreq + float64(i)*step
		}
	}
}
