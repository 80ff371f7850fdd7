package analysis

import (
	"fmt"

	"github.com/voidheart88/gospice/internal/consts"
	"github.com/voidheart88/gospice/pkg/circuit"
	"github.com/voidheart88/gospice/pkg/device"
)

type DCSweep struct {
	BaseAnalysis
	sourceNames []string
	startVals   []float64
	stopVals    []float64
	increments  []float64
	sweepVals   [][]float64
	origVals    []float64
}

func NewDCSweep(sources []string, starts, stops []float64, increments []float64) *DCSweep {
	if len(sources) != len(starts) || len(sources) != len(stops) || len(sources) != len(increments) {
		panic("inconsistent parameter lengths")
	}

	dc := &DCSweep{
		BaseAnalysis: *NewBaseAnalysis(),
		sourceNames:  sources,
		startVals:    starts,
		stopVals:     stops,
		increments:   increments,
		sweepVals:    make([][]float64, len(sources)),
		origVals:     make([]float64, len(sources)),
	}

	for i := range sources {
		sweep := make([]float64, 0)
		for v := dc.startVals[i]; v <= dc.stopVals[i]; v += dc.increments[i] {
			sweep = append(sweep, v)
		}
		dc.sweepVals[i] = sweep
	}

	return dc
}

func (dc *DCSweep) Setup(ckt *circuit.Circuit) error {
	dc.Circuit = ckt

	for i, name := range dc.sourceNames {
		found := false
		for _, dev := range ckt.GetDevices() {
			if dev.GetName() == name {
				if v, ok := dev.(*device.VoltageSource); ok {
					dc.origVals[i] = v.GetValue()
					found = true
					break
				}
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, name)
		}
	}

	return nil
}

func (dc *DCSweep) Execute() error {
	if dc.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}

	switch len(dc.sourceNames) {
	case 1:
		return dc.singleSweep()
	case 2:
		return dc.nestedSweep()
	default:
		return fmt.Errorf("%w: %d sweep sources", ErrInvalidSweep, len(dc.sourceNames))
	}
}

func (dc *DCSweep) findSource(name string) *device.VoltageSource {
	for _, dev := range dc.Circuit.GetDevices() {
		if dev.GetName() == name {
			if v, ok := dev.(*device.VoltageSource); ok {
				return v
			}
		}
	}
	return nil
}

func (dc *DCSweep) singleSweep() error {
	sourceName := dc.sourceNames[0]
	source := dc.findSource(sourceName)
	if source == nil {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, sourceName)
	}

	for _, val := range dc.sweepVals[0] {
		source.SetValue(val)

		status := &device.CircuitStatus{
			Mode: device.OperatingPointAnalysis,
			Temp: consts.RoomTemp,
			Gmin: 0,
		}

		if err := newtonSolve(dc.Circuit, status, dc.convergence.maxIter); err != nil {
			return fmt.Errorf("convergence error at %s=%g: %w", sourceName, val, err)
		}

		dc.StoreResult(val, dc.Circuit.GetSolution())
	}

	source.SetValue(dc.origVals[0])
	return nil
}

func (dc *DCSweep) nestedSweep() error {
	source1 := dc.findSource(dc.sourceNames[0])
	source2 := dc.findSource(dc.sourceNames[1])
	if source1 == nil || source2 == nil {
		return ErrSourceNotFound
	}

	for _, val1 := range dc.sweepVals[0] {
		source1.SetValue(val1)

		for _, val2 := range dc.sweepVals[1] {
			source2.SetValue(val2)

			status := &device.CircuitStatus{
				Mode: device.OperatingPointAnalysis,
				Temp: consts.RoomTemp,
				Gmin: 0,
			}

			if err := newtonSolve(dc.Circuit, status, dc.convergence.maxIter); err != nil {
				return fmt.Errorf("convergence error at %s=%g, %s=%g: %w",
					dc.sourceNames[0], val1, dc.sourceNames[1], val2, err)
			}

			dc.StoreNestedResult(val1, val2, dc.Circuit.GetSolution())
		}
	}

	source1.SetValue(dc.origVals[0])
	source2.SetValue(dc.origVals[1])
	return nil
}

func (dc *DCSweep) StoreResult(sweepVal float64, solution map[string]float64) {
	if _, exists := dc.results["SWEEP1"]; !exists {
		dc.results["SWEEP1"] = make([]float64, 0)
	}
	dc.results["SWEEP1"] = append(dc.results["SWEEP1"], sweepVal)

	for name, value := range solution {
		dc.results[name] = append(dc.results[name], value)
	}
}

func (dc *DCSweep) StoreNestedResult(val1, val2 float64, solution map[string]float64) {
	if _, exists := dc.results["SWEEP1"]; !exists {
		dc.results["SWEEP1"] = make([]float64, 0)
		dc.results["SWEEP2"] = make([]float64, 0)
	}
	dc.results["SWEEP1"] = append(dc.results["SWEEP1"], val1)
	dc.results["SWEEP2"] = append(dc.results["SWEEP2"], val2)

	for name, value := range solution {
		dc.results[name] = append(dc.results[name], value)
	}
}
