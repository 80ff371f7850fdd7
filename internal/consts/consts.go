// Package consts holds the normative physical and algorithm constants
// shared across the simulation core.
package consts

const (
	// Boltzmann is the Boltzmann constant, in J/K.
	Boltzmann = 1.380649e-23
	// ElectronCharge is the elementary charge, in coulombs.
	ElectronCharge = 1.602176634e-19
	// RoomTemp is the default device temperature, in kelvin.
	RoomTemp = 293.15

	// ThermalVoltage is kT/q at RoomTemp, in volts.
	ThermalVoltage = Boltzmann * RoomTemp / ElectronCharge

	// DefaultConductance models an inductor as a short circuit at DC.
	DefaultConductance = 1e24

	// DiodeGuess is the initial-guess voltage used to warm-start Newton
	// iteration across a diode junction.
	DiodeGuess = 0.4

	// VecTol is the Newton-Raphson convergence tolerance: iteration stops
	// once every component of x changes by less than this between steps.
	VecTol = 1e-3

	// MaxIter bounds the number of Newton iterations per solve.
	MaxIter = 1000

	// AdaptiveMinTimestep is the smallest timestep adaptive TRAN will take.
	AdaptiveMinTimestep = 1e-9
	// AdaptiveMaxTimestep is the largest timestep adaptive TRAN will take.
	AdaptiveMaxTimestep = 1e-3
	// AdaptiveInitialTimestep is the sentinel: a user Δt at or below this
	// value puts the transient driver into adaptive mode.
	AdaptiveInitialTimestep = 1e-6

	// AdaptiveSafetyFactor scales the LTE-predicted next step down from
	// the theoretical acceptance boundary.
	AdaptiveSafetyFactor = 0.9
	// AdaptiveMinGrowthFactor floors how much a step may shrink in one go.
	AdaptiveMinGrowthFactor = 0.5
	// AdaptiveMaxGrowthFactor caps how much a step may grow in one go.
	AdaptiveMaxGrowthFactor = 2.0

	// Legacy aliases kept for compatibility with values carried over from
	// the temperature-coefficient formulas in pkg/device.
	Kelvin = 273.15
)
