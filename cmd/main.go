// Package main implements the gospice command-line driver: read a
// netlist, run the requested analysis, print the results.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/voidheart88/gospice/pkg/analysis"
	"github.com/voidheart88/gospice/pkg/circuit"
	"github.com/voidheart88/gospice/pkg/matrix"
	"github.com/voidheart88/gospice/pkg/netlist"
	"github.com/voidheart88/gospice/pkg/util"
)

var (
	verbose   bool
	dumpDebug bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("gospice")
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gospice <netlist>",
		Short: "Run a SPICE-style circuit simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			return runNetlist(args[0])
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&dumpDebug, "dump-matrix", false, "print the assembled MNA system before solving")

	return cmd
}

func setupLogging() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

func runNetlist(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading netlist file: %w", err)
	}

	ckt, err := netlist.Parse(string(content))
	if err != nil {
		return fmt.Errorf("parsing netlist: %w", err)
	}
	log.Debug().Int("elements", len(ckt.Elements)).Str("title", ckt.Title).Msg("parsed netlist")

	isComplex := ckt.Analysis == netlist.AnalysisAC
	circ := circuit.NewWithComplex(ckt.Title, isComplex)
	circ.SetModels(ckt.Models)

	if err := circ.AssignNodeBranchMaps(ckt.Elements); err != nil {
		return fmt.Errorf("assigning node/branch maps: %w", err)
	}
	circ.CreateMatrix()

	if err := circ.SetupDevices(ckt.Elements); err != nil {
		return fmt.Errorf("setting up devices: %w", err)
	}
	if dumpDebug {
		if p, ok := circ.GetMatrix().(matrix.Printer); ok {
			p.PrintSystem()
		} else {
			log.Debug().Msg("--dump-matrix: dense backend has no system printer")
		}
	}

	analyzer, err := buildAnalyzer(ckt)
	if err != nil {
		return err
	}

	if err := analyzer.Setup(circ); err != nil {
		return fmt.Errorf("analysis setup: %w", err)
	}
	if err := analyzer.Execute(); err != nil {
		return fmt.Errorf("analysis execution: %w", err)
	}

	printResults(analyzer.GetResults())
	return nil
}

func buildAnalyzer(ckt *netlist.Circuit) (analysis.Analysis, error) {
	switch ckt.Analysis {
	case netlist.AnalysisOP:
		return analysis.NewOP(), nil
	case netlist.AnalysisTRAN:
		p := ckt.TranParam
		return analysis.NewTransient(p.TStart, p.TStop, p.TStep, p.TMax, p.UIC), nil
	case netlist.AnalysisAC:
		p := ckt.ACParam
		return analysis.NewAC(p.FStart, p.FStop, p.Points, p.Sweep), nil
	case netlist.AnalysisDC:
		p := ckt.DCParam
		if p.Source2 != "" {
			return analysis.NewDCSweep(
				[]string{p.Source1, p.Source2},
				[]float64{p.Start1, p.Start2},
				[]float64{p.Stop1, p.Stop2},
				[]float64{p.Increment1, p.Increment2},
			), nil
		}
		return analysis.NewDCSweep(
			[]string{p.Source1},
			[]float64{p.Start1},
			[]float64{p.Stop1},
			[]float64{p.Increment1},
		), nil
	default:
		return nil, fmt.Errorf("unsupported analysis type: %v", ckt.Analysis)
	}
}

func getKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printResults(results map[string][]float64) {
	fmt.Println("\nAnalysis Results:")
	fmt.Println("================")

	if freqs, isAC := results["FREQ"]; isAC {
		printACResults(results, freqs)
		return
	}

	if sweep1, isDC := results["SWEEP1"]; isDC {
		printDCResults(results, sweep1)
		return
	}

	if len(results["TIME"]) <= 1 {
		printOperatingPoint(results)
		return
	}

	printTransientResults(results)
}

func printACResults(results map[string][]float64, freqs []float64) {
	fmt.Printf("\nAC Analysis Results (%d frequency points):\n", len(freqs))
	fmt.Println("Frequency      Node Voltages (Magnitude/Phase)        Branch Currents (Magnitude/Phase)")
	fmt.Println("-----------------------------------------------------------------------------")

	var voltageNames, currentNames []string
	for name := range results {
		if !strings.HasSuffix(name, "_MAG") {
			continue
		}
		baseName := strings.TrimSuffix(name, "_MAG")
		if strings.HasPrefix(baseName, "V(") {
			voltageNames = append(voltageNames, baseName)
		} else if strings.HasPrefix(baseName, "I(") {
			currentNames = append(currentNames, baseName)
		}
	}
	sort.Strings(voltageNames)
	sort.Strings(currentNames)

	for i, freq := range freqs {
		fmt.Printf("%-13s", util.FormatFrequency(freq))
		for _, name := range append(voltageNames, currentNames...) {
			mag, okM := results[name+"_MAG"]
			phase, okP := results[name+"_PHASE"]
			if okM && okP {
				fmt.Printf("%s=%s<%sdeg  ", name, util.FormatMagnitude(mag[i]), util.FormatPhase(phase[i]))
			}
		}
		fmt.Println()
	}
}

func printDCResults(results map[string][]float64, sweep1 []float64) {
	fmt.Printf("\nDC Sweep Analysis Results (%d points):\n", len(sweep1))
	fmt.Println("Sweep Values    Node Voltages        Branch Currents")
	fmt.Println("------------------------------------------------")

	var voltageNames, currentNames []string
	for name := range results {
		if name == "SWEEP1" || name == "SWEEP2" {
			continue
		}
		if strings.HasPrefix(name, "V(") {
			voltageNames = append(voltageNames, name)
		} else if strings.HasPrefix(name, "I(") {
			currentNames = append(currentNames, name)
		}
	}
	sort.Strings(voltageNames)
	sort.Strings(currentNames)

	sweep2, hasNested := results["SWEEP2"]
	for i := range sweep1 {
		if hasNested {
			fmt.Printf("V1=%-9s V2=%-9s  ",
				util.FormatValueFactor(sweep1[i], "V"),
				util.FormatValueFactor(sweep2[i], "V"))
		} else {
			fmt.Printf("V=%-9s  ", util.FormatValueFactor(sweep1[i], "V"))
		}
		for _, name := range voltageNames {
			fmt.Printf("%s=%s  ", name, util.FormatValueFactor(results[name][i], "V"))
		}
		for _, name := range currentNames {
			fmt.Printf("%s=%s  ", name, util.FormatValueFactor(results[name][i], "A"))
		}
		fmt.Println()
	}
}

func printOperatingPoint(results map[string][]float64) {
	fmt.Println("\nNode Voltages:")
	for _, name := range getKeys(results) {
		if strings.HasPrefix(name, "V(") {
			fmt.Printf("%s = %s\n", name, util.FormatValueFactor(results[name][0], "V"))
		}
	}
	fmt.Println("\nBranch Currents:")
	for _, name := range getKeys(results) {
		if strings.HasPrefix(name, "I(") {
			fmt.Printf("%s = %s\n", name, util.FormatValueFactor(results[name][0], "A"))
		}
	}
}

func printTransientResults(results map[string][]float64) {
	times := results["TIME"]
	fmt.Printf("\nTransient Analysis Results (%d time points):\n", len(times))
	fmt.Println("Time        Node Voltages        Branch Currents")
	fmt.Println("------------------------------------------------")

	var voltageNames, currentNames []string
	for name := range results {
		if name == "TIME" {
			continue
		}
		if strings.HasPrefix(name, "V(") {
			voltageNames = append(voltageNames, name)
		} else if strings.HasPrefix(name, "I(") {
			currentNames = append(currentNames, name)
		}
	}
	sort.Strings(voltageNames)
	sort.Strings(currentNames)

	for i, t := range times {
		fmt.Printf("%9s  ", util.FormatValueFactor(t, "s"))
		for _, name := range voltageNames {
			fmt.Printf("%s=%s  ", name, util.FormatValueFactor(results[name][i], "V"))
		}
		for _, name := range currentNames {
			fmt.Printf("%s=%s  ", name, util.FormatValueFactor(results[name][i], "A"))
		}
		fmt.Println()
	}
}
