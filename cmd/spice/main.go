package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/edp1096/mna-spice/pkg/analysis"
	"github.com/edp1096/mna-spice/pkg/circuit"
	"github.com/edp1096/mna-spice/pkg/config"
	"github.com/edp1096/mna-spice/pkg/device"
	"github.com/edp1096/mna-spice/pkg/matrix"
	"github.com/edp1096/mna-spice/pkg/netlist"
	"github.com/edp1096/mna-spice/pkg/result"
	"github.com/edp1096/mna-spice/pkg/util"
)

// inspectable is implemented by every analysis in this module.
type inspectable interface {
	SetLogger(l *log.Logger)
	GetCircuit() *circuit.Circuit
	System() *matrix.System
}

type column struct {
	name  string
	index int
	unit  string
}

// columns lists node voltages by net name followed by branch currents.
func columns(ckt *circuit.Circuit) []column {
	var cols []column
	for name, idx := range ckt.GetNodeMap() {
		if idx > 0 {
			cols = append(cols, column{name: fmt.Sprintf("V(%s)", name), index: idx, unit: "V"})
		}
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].index < cols[j].index })

	nodes := ckt.NumNodes()
	for k, b := range ckt.GetBranches() {
		cols = append(cols, column{name: fmt.Sprintf("I(%s)", b.GetName()), index: nodes + k, unit: "A"})
	}
	return cols
}

func printDC(cols []column, x []float64) {
	fmt.Println("\nNode Voltages / Branch Currents:")
	for _, c := range cols {
		fmt.Printf("%s = %s\n", c.name, util.FormatValueFactor(x[c.index], c.unit))
	}
}

func printAC(cols []column, results []*result.AC) {
	fmt.Printf("\nAC Analysis Results (%d frequency points):\n", len(results))
	fmt.Println("Frequency      Node Voltages / Branch Currents (Magnitude/Phase)")
	fmt.Println("-----------------------------------------------------------------------------")
	for _, r := range results {
		fmt.Printf("%-13s", util.FormatFrequency(r.Frequency))
		for _, c := range cols {
			fmt.Printf("%s  ", util.FormatPhasor(c.name, r.X[c.index]))
		}
		fmt.Println()
	}
}

func printTransient(cols []column, r *result.Transient) {
	fmt.Printf("\nTransient Analysis Results (%d time points):\n", r.Len())
	fmt.Println("Time        Node Voltages        Branch Currents")
	fmt.Println("------------------------------------------------")
	for j, t := range r.Times {
		fmt.Printf("%9s  ", util.FormatValueFactor(t, "s"))
		for _, c := range cols {
			fmt.Printf("%s=%s  ", c.name, util.FormatValueFactor(r.X[j][c.index], c.unit))
		}
		fmt.Println()
	}
}

func printSweep(cols []column, names []string, points []analysis.SweepPoint) {
	fmt.Printf("\nDC Sweep Analysis Results (%d points):\n", len(points))
	fmt.Println("Sweep Values    Node Voltages        Branch Currents")
	fmt.Println("------------------------------------------------")
	for _, p := range points {
		for i, v := range p.Values {
			fmt.Printf("%s=%-9s ", names[i], util.FormatValueFactor(v, ""))
		}
		for _, c := range cols {
			fmt.Printf("%s=%s  ", c.name, util.FormatValueFactor(p.Result.X[c.index], c.unit))
		}
		fmt.Println()
	}
}

func printResults(s analysis.Solver, deck *netlist.Deck) {
	ins := s.(inspectable)
	cols := columns(ins.GetCircuit())

	fmt.Println("\nAnalysis Results:")
	fmt.Println("================")

	switch a := s.(type) {
	case *analysis.DCSweep:
		names := make([]string, len(deck.Analysis.DC))
		for i, spec := range deck.Analysis.DC {
			names[i] = spec.Source
		}
		printSweep(cols, names, a.Points())
	case *analysis.ACSweep:
		printAC(cols, a.Results())
	case *analysis.ACAnalysis:
		printAC(cols, []*result.AC{a.AC()})
	case *analysis.Transient:
		printTransient(cols, a.Tran())
	case *analysis.OperatingPoint:
		printDC(cols, a.DC().X)
		fmt.Printf("\nNewton-Raphson iterations: %d\n", a.Iterations())
	}
}

func loadConfig(path string) *config.Config {
	var (
		cfg  *config.Config
		from string
		err  error
	)
	if path != "" {
		cfg, from, err = config.LoadFromPath(path)
	} else {
		cfg, from, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Error loading config %s: %v", from, err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config %s: %v", from, err)
	}
	return cfg
}

func main() {
	configPath := flag.String("config", "", "solver configuration file (YAML)")
	verbose := flag.Bool("v", false, "log solver progress")
	dump := flag.Bool("dump", false, "print the assembled equations after solving")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("Usage: spice [-config file] [-v] [-dump] <deck.yaml | netlist.cir>")
	}

	cfg := loadConfig(*configPath)
	if *verbose {
		cfg.Log.Verbose = true
	}

	deck, err := netlist.Load(flag.Arg(0))
	if err != nil {
		log.Fatalf("Error reading deck: %v", err)
	}

	analyzer, err := deck.NewAnalysis(cfg)
	if err != nil {
		log.Fatalf("Analysis setup failed: %v", err)
	}

	ins := analyzer.(inspectable)
	if cfg.Log.Verbose {
		ins.SetLogger(log.New(os.Stderr, cfg.Log.Prefix, log.LstdFlags))
	}

	if err := analyzer.Solve(); err != nil {
		log.Fatalf("Analysis execution failed: %v", err)
	}

	if deck.Title != "" {
		fmt.Printf("Circuit: %s (%s)\n", deck.Title, modeName(analyzer))
	}
	if *dump {
		ins.System().Print(os.Stdout)
	}

	printResults(analyzer, deck)
}

func modeName(s analysis.Solver) string {
	if r := s.Result(); r != nil {
		return r.Kind().String()
	}
	return device.OperatingPointAnalysis.String()
}
