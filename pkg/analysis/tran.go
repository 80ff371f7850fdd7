package analysis

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/voidheart88/gospice/internal/consts"
	"github.com/voidheart88/gospice/pkg/circuit"
	"github.com/voidheart88/gospice/pkg/device"
)

type Transient struct {
	BaseAnalysis
	op        *OperatingPoint
	time      float64
	startTime float64
	stopTime  float64
	timeStep  float64
	maxStep   float64
	minStep   float64
	useUIC    bool

	method   int // device.BE, device.TR or device.FE
	adaptive bool
	trtol    float64
}

func NewTransient(tStart, tStop, tStep, tMax float64, uic bool) *Transient {
	minStep := tStep / 50.0
	if minStep < consts.AdaptiveMinTimestep {
		minStep = consts.AdaptiveMinTimestep
	}
	if tMax == 0 {
		tMax = tStep
	}
	return &Transient{
		BaseAnalysis: *NewBaseAnalysis(),
		op:           NewOP(),
		startTime:    tStart,
		stopTime:     tStop,
		timeStep:     tStep,
		maxStep:      tMax,
		minStep:      minStep,
		useUIC:       uic,
		time:         0,
		method:       device.BE,
		adaptive:     tStep <= consts.AdaptiveInitialTimestep,
		trtol:        7.0, // SPICE3F5 default local-truncation-error ratio
	}
}

// SetMethod selects the integration method (device.BE, device.TR or
// device.FE) stamped into every transient step. Defaults to device.BE.
func (tr *Transient) SetMethod(method int) { tr.method = method }

func (tr *Transient) Setup(ckt *circuit.Circuit) error {
	tr.Circuit = ckt

	if !tr.useUIC {
		if err := tr.op.Setup(ckt); err != nil {
			return fmt.Errorf("operating point setup error: %v", err)
		}
		if err := tr.op.Execute(); err != nil {
			return fmt.Errorf("operating point analysis error: %v", err)
		}
	}

	tr.Circuit.SetTimeStep(tr.timeStep)
	return nil
}

func (tr *Transient) Execute() error {
	if tr.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}

	for tr.time < tr.stopTime {
		nextTime := tr.time + tr.timeStep
		if nextTime > tr.stopTime {
			nextTime = tr.stopTime
			tr.timeStep = nextTime - tr.time
		}

		status := &device.CircuitStatus{
			Time:     tr.time,
			TimeStep: tr.timeStep,
			Mode:     device.TransientAnalysis,
			Method:   tr.method,
			Temp:     consts.RoomTemp,
			Gmin:     0,
		}
		tr.Circuit.Status = status
		tr.Circuit.SetTimeStep(tr.timeStep)

		if err := newtonSolve(tr.Circuit, status, tr.convergence.maxIter); err != nil {
			if err := gminStepCascade(tr.Circuit, status, tr.convergence.maxIter); err != nil {
				if !tr.adaptive {
					return fmt.Errorf("%w at t=%g", ErrConvergence, tr.time)
				}
				if tr.timeStep > tr.minStep {
					tr.timeStep = math.Max(tr.timeStep/2, tr.minStep)
					continue
				}
				return fmt.Errorf("%w at t=%g", ErrMinTimestep, tr.time)
			}
		}

		if !tr.adaptive {
			// Fixed-step mode (spec §4.7 step 2): the user's requested Δt
			// above the sentinel is honored exactly, no LTE-driven resizing.
			tr.Circuit.Update()
			tr.time = nextTime
			if tr.time >= tr.startTime {
				tr.StoreTimeResult(tr.time, tr.Circuit.GetSolution())
			}
			continue
		}

		lte := tr.calculateTruncError()
		if lte > tr.trtol && tr.timeStep > tr.minStep {
			// Step accepted numerically but its local truncation error is
			// too large: shrink and retry this step rather than commit it.
			tr.timeStep = math.Max(tr.timeStep*consts.AdaptiveSafetyFactor*consts.AdaptiveMinGrowthFactor, tr.minStep)
			continue
		}

		tr.Circuit.Update()
		tr.time = nextTime
		if tr.time >= tr.startTime {
			tr.StoreTimeResult(tr.time, tr.Circuit.GetSolution())
		}

		tr.timeStep = tr.nextTimestep(lte)
	}

	return nil
}

// nextTimestep scales the accepted step by how far its LTE sat under
// trtol, the classic SPICE step-doubling heuristic, clamped to the
// configured adaptive bounds.
func (tr *Transient) nextTimestep(lte float64) float64 {
	dt := tr.timeStep
	if tr.time >= tr.stopTime {
		return dt
	}

	growth := consts.AdaptiveMaxGrowthFactor
	if lte > 0 {
		growth = consts.AdaptiveSafetyFactor * math.Sqrt(tr.trtol/lte)
	}
	if growth > consts.AdaptiveMaxGrowthFactor {
		growth = consts.AdaptiveMaxGrowthFactor
	}
	if growth < consts.AdaptiveMinGrowthFactor {
		growth = consts.AdaptiveMinGrowthFactor
	}

	dt *= growth
	if dt > tr.maxStep {
		dt = tr.maxStep
	}
	if dt > consts.AdaptiveMaxTimestep {
		dt = consts.AdaptiveMaxTimestep
	}
	if dt < consts.AdaptiveMinTimestep {
		dt = consts.AdaptiveMinTimestep
	}
	return dt
}

// calculateTruncError is the LTE estimator every TimeDependent device
// contributes to: the largest per-device estimate over the step bounds how
// much the step can safely grow.
func (tr *Transient) calculateTruncError() float64 {
	maxLTE := 0.0
	for _, dev := range tr.Circuit.GetDevices() {
		if td, ok := dev.(device.TimeDependent); ok {
			lte := td.CalculateLTE(tr.Circuit.GetSolution(), tr.Circuit.Status)
			if lte > maxLTE {
				maxLTE = lte
			}
		}
	}
	if maxLTE == 0 {
		return 0
	}
	log.Trace().Float64("lte", maxLTE).Msg("transient local truncation error")
	return maxLTE
}
