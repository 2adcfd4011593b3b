package app

import (
	"time"

	"github.com/spf13/pflag"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/ihtc/ihtp-ga/pkg/ihtp"
)

// SolveOptions are the flags of the solve command. Flags set on the command
// line win over the args file.
type SolveOptions struct {
	ArgsFile    string
	MetricsAddr string

	instance             string
	output               string
	oracle               string
	seed                 uint64
	population           int
	eras                 int
	selection            float64
	crossover            float64
	mutation             float64
	schedule             float64
	unschedule           float64
	assign               float64
	stagnation           int
	maxCrossoverPatients int
	timeout              time.Duration
	checkpoint           bool
	history              string
	plot                 string
}

func (o *SolveOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ArgsFile, "config", "", "YAML or JSON file with solver arguments")
	fs.StringVar(&o.MetricsAddr, "metrics-addr", "", "address serving prometheus metrics, disabled when empty")

	fs.StringVarP(&o.instance, "instance", "i", "", "instance file to solve")
	fs.StringVarP(&o.output, "output", "o", "", "solution file, defaults to <instance>_solution.json")
	fs.StringVar(&o.oracle, "oracle", ihtp.OracleBuiltin, "scorer: builtin or validator (IHTP_VALIDATOR_PATH locates the binary)")
	fs.Uint64Var(&o.seed, "seed", 0, "random seed, time based when unset")
	fs.IntVar(&o.population, "population", 0, "population size")
	fs.IntVar(&o.eras, "eras", 0, "number of eras")
	fs.Float64Var(&o.selection, "selection", 0, "fraction of the population kept as parents each era")
	fs.Float64Var(&o.crossover, "crossover", 0, "crossover probability")
	fs.Float64Var(&o.mutation, "mutation", 0, "mutation probability")
	fs.Float64Var(&o.schedule, "schedule-probability", 0, "probability of scheduling an unscheduled optional patient")
	fs.Float64Var(&o.unschedule, "unschedule-probability", 0, "probability of dropping a scheduled optional patient")
	fs.Float64Var(&o.assign, "assign-probability", 0, "probability of admitting an optional patient when building from scratch")
	fs.IntVar(&o.stagnation, "stagnation", 0, "eras without improvement before adapting and injecting")
	fs.IntVar(&o.maxCrossoverPatients, "max-crossover-patients", 0, "upper bound of patients exchanged by crossover")
	fs.DurationVar(&o.timeout, "timeout", 0, "time limit of the search, unlimited when zero")
	fs.BoolVar(&o.checkpoint, "checkpoint", false, "write the solution every time the best improves")
	fs.StringVar(&o.history, "history", "", "SQLite database recording the run")
	fs.StringVar(&o.plot, "plot", "", "HTML file receiving the convergence chart")
}

// Args loads the args file, applies defaults and overlays the flags that
// were set.
func (o *SolveOptions) Args(fs *pflag.FlagSet) (*ihtp.Args, error) {
	args, err := ihtp.LoadArgs(o.ArgsFile)
	if err != nil {
		return nil, err
	}
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("instance", func() { args.InstancePath = o.instance })
	set("output", func() { args.OutputPath = o.output })
	set("oracle", func() { args.Oracle = o.oracle })
	set("seed", func() { args.Seed = ptr.To(o.seed) })
	set("population", func() { args.PopulationSize = o.population })
	set("eras", func() { args.Eras = ptr.To(o.eras) })
	set("selection", func() { args.SelectionFraction = ptr.To(o.selection) })
	set("crossover", func() { args.CrossoverProbability = ptr.To(o.crossover) })
	set("mutation", func() { args.MutationProbability = ptr.To(o.mutation) })
	set("schedule-probability", func() { args.ScheduleNonMandatoryProbability = ptr.To(o.schedule) })
	set("unschedule-probability", func() { args.UnscheduleNonMandatoryProbability = ptr.To(o.unschedule) })
	set("assign-probability", func() { args.AssignProbability = ptr.To(o.assign) })
	set("stagnation", func() { args.StagnationThreshold = o.stagnation })
	set("max-crossover-patients", func() { args.MaxCrossoverPatients = o.maxCrossoverPatients })
	set("timeout", func() { args.Timeout = metav1.Duration{Duration: o.timeout} })
	set("checkpoint", func() { args.Checkpoint = o.checkpoint })
	set("history", func() { args.HistoryPath = o.history })
	set("plot", func() { args.PlotPath = o.plot })
	if args.Checkpoint && args.OutputPath == "" && args.InstancePath != "" {
		args.OutputPath = ihtp.DefaultOutputPath(args.InstancePath)
	}
	return args, nil
}
