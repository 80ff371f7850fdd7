package analysis

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/voidheart88/gospice/internal/consts"
	"github.com/voidheart88/gospice/pkg/circuit"
	"github.com/voidheart88/gospice/pkg/device"
)

type OperatingPoint struct{ BaseAnalysis }

func NewOP() *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(),
	}
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	op.Circuit = ckt
	return nil
}

// voltageWaveform is satisfied by VoltageSource and (through embedding) its
// VSourceSin/VSourceStep specializations.
type voltageWaveform interface {
	GetVoltage(t float64) float64
	GetNodes() []int
}

// initialGuess implements spec §4.4's heuristic verbatim: every independent
// voltage source contributes +-V at its two terminals, every diode
// contributes +-DIO_GUESS/2 at its terminals (or the full DIO_GUESS at
// whichever terminal isn't ground), and contributions are summed. It makes
// no claim to physical meaning beyond warm-starting the first Newton
// iteration.
func (op *OperatingPoint) initialGuess() []float64 {
	ckt := op.Circuit
	size := ckt.GetMatrix().Dim()
	x := make([]float64, size+1)

	for _, dev := range ckt.GetDevices() {
		switch d := dev.(type) {
		case voltageWaveform:
			nodes := d.GetNodes()
			v := d.GetVoltage(0)
			if nodes[0] != 0 {
				x[nodes[0]] += v
			}
			if nodes[1] != 0 {
				x[nodes[1]] -= v
			}
		case *device.Diode:
			nodes := d.GetNodes()
			n1, n2 := nodes[0], nodes[1]
			switch {
			case n1 != 0 && n2 != 0:
				x[n1] += consts.DiodeGuess / 2
				x[n2] -= consts.DiodeGuess / 2
			case n1 != 0:
				x[n1] += consts.DiodeGuess
			case n2 != 0:
				x[n2] -= consts.DiodeGuess
			}
		}
	}

	return x
}

func (op *OperatingPoint) Execute() error {
	ckt := op.Circuit
	mat := ckt.GetMatrix()

	status := &device.CircuitStatus{
		Time: 0,
		Mode: device.OperatingPointAnalysis,
		Temp: consts.RoomTemp,
		Gmin: 0,
	}
	ckt.Status = status

	if err := ckt.UpdateNonlinearVoltages(op.initialGuess()); err != nil {
		log.Debug().Err(err).Msg("updating nonlinear voltages from initial guess")
	}

	if err := newtonSolve(ckt, status, op.convergence.maxIter); err == nil {
		op.storeResults(mat.Solution())
		return nil
	}

	log.Debug().Msg("Newton-Raphson failed cold, trying gmin stepping")
	if err := gminStepCascade(ckt, status, op.convergence.maxIter); err == nil {
		op.storeResults(mat.Solution())
		return nil
	}

	log.Debug().Msg("gmin stepping failed, trying source stepping")
	if err := sourceStepCascade(ckt, status, op.convergence.maxIter); err != nil {
		return fmt.Errorf("source stepping failed: %w", err)
	}

	status.Gmin = 0
	if err := newtonSolve(ckt, status, op.convergence.maxIter); err != nil {
		return fmt.Errorf("final solve after source stepping: %w", err)
	}

	op.storeResults(mat.Solution())
	return nil
}

func (op *OperatingPoint) storeResults(solution []float64) {
	for nodeName, nodeIdx := range op.Circuit.GetNodeMap() {
		if nodeIdx > 0 {
			key := fmt.Sprintf("V(%s)", nodeName)
			op.results[key] = []float64{solution[nodeIdx]}
		}
	}
	for devName, branchIdx := range op.Circuit.GetBranchMap() {
		key := fmt.Sprintf("I(%s)", devName)
		op.results[key] = []float64{solution[branchIdx]}
	}
}
