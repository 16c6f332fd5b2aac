package types

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/fleet-rl/amod/util"
)

// Experiment encapsulates a named policy/environment pair
type Experiment struct {
	Name        string
	policy      Policy
	environment Environment
}

// NewExperiment creates a new experiment instance
func NewExperiment(name string, policy Policy, environment Environment) *Experiment {
	return &Experiment{
		Name:        name,
		policy:      policy,
		environment: environment,
	}
}

type experimentRunConfig struct {
	CurrentRun int
	Episodes   int
	Horizon    int
	Analyzers  []Analyzer
	Context    context.Context

	// abort the experiment after this many consecutive failed episodes
	ConsecutiveErrorsAbort int

	RecordTraces   bool
	ReportSavePath string
}

func (e *Experiment) recordTrace(rConfig *experimentRunConfig, trace *Trace) {
	tracesFile := path.Join(rConfig.ReportSavePath, "traces", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".jsonl")
	bs, err := json.Marshal(trace)
	if err != nil {
		panic(err)
	}

	util.AppendToFile(tracesFile, string(bs))
}

// Run the experiment for the specified number of episodes
func (e *Experiment) Run(rConfig *experimentRunConfig) {
	agent := NewAgent(&AgentConfig{
		Episodes:    rConfig.Episodes,
		Horizon:     rConfig.Horizon,
		Policy:      e.policy,
		Environment: e.environment,
	})

	totalWithError := 0
	consecutiveErrors := 0

	for episode := 0; episode < rConfig.Episodes; episode++ {
		select {
		case <-rConfig.Context.Done():
			return
		default:
		}

		trace, err := agent.RunEpisode(episode)
		if err != nil {
			totalWithError += 1
			consecutiveErrors += 1
		} else {
			consecutiveErrors = 0
		}

		if rConfig.RecordTraces {
			e.recordTrace(rConfig, trace)
		}

		// analyze the trace, even if the episode ended with an error
		for _, a := range rConfig.Analyzers {
			a.Analyze(rConfig.CurrentRun, episode, e.Name, trace)
		}

		fmt.Printf("\rExp:%s, Eps:%d/%d, Err:%d, Reward:%8.2f",
			e.Name, episode+1, rConfig.Episodes, totalWithError, trace.TotalReward())

		if consecutiveErrors >= rConfig.ConsecutiveErrorsAbort {
			fmt.Printf("\n Aborting experiment %s : %d consecutive errors\n", e.Name, consecutiveErrors)
			break
		}
	}
	fmt.Println("")
}

// Reset cleans the policy state between runs
func (e *Experiment) Reset() {
	e.policy.Reset()
}

// Generic Dataset that contains information after processing the traces
type DataSet interface{}

// Analyzer compresses the information in the traces to a DataSet
type Analyzer interface {
	// Run, episode, experiment name, trace
	Analyze(int, int, string, *Trace)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// Comparator differentiates between different datasets with associated names
// run, experiment names, datasets
type Comparator func(int, []string, []DataSet)

func NoopComparator() Comparator {
	return func(_ int, _ []string, _ []DataSet) {}
}

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs     int // number of runs
	Episodes int // number of episodes
	Horizon  int // number of steps

	RecordPath   string // path to store the results
	RecordTraces bool

	ConsecutiveErrorsAbort int
}

// Comparison contains the different experiments to compare
// The traces obtained from the experiments are analyzed
// The analyzed datasets are then compared
type Comparison struct {
	Experiments []*Experiment
	analyzers   map[string]Analyzer
	comparators map[string]Comparator
	cConfig     *ComparisonConfig
}

// NewComparison creates a comparison instance
func NewComparison(config *ComparisonConfig) *Comparison {
	os.MkdirAll(config.RecordPath, 0777)
	if config.RecordTraces {
		os.MkdirAll(path.Join(config.RecordPath, "traces"), 0777)
	}

	return &Comparison{
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
		cConfig:     config,
	}
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

// Add experiments to compare
func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() {
	cfg := c.cConfig

	out := make(map[string]interface{})
	out["runs"] = cfg.Runs
	out["episodes"] = cfg.Episodes
	out["horizon"] = cfg.Horizon
	out["record_traces"] = cfg.RecordTraces

	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments

	bs, err := json.Marshal(out)
	if err != nil {
		panic(err)
	}
	os.WriteFile(path.Join(cfg.RecordPath, "comparison_config.json"), bs, 0644)
}

// Run the comparison
func (c *Comparison) Run(ctx context.Context) {
	c.recordConfig()

	for run := 0; run < c.cConfig.Runs; run++ {
		fmt.Printf("Run %d\n", run+1)
		datasets := make(map[string][]DataSet)

		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}

		names := make([]string, len(c.Experiments))
		for i, e := range c.Experiments {
			select {
			case <-ctx.Done():
				return
			default:
			}
			e.Run(c.prepareRunConfig(ctx, run))
			for name, a := range c.analyzers {
				datasets[name][i] = a.DataSet()
				a.Reset()
			}
			names[i] = e.Name
			e.Reset()
		}
		for name, comp := range c.comparators {
			comp(run, names, datasets[name]) // make the plots
		}
	}
}

func (c *Comparison) prepareRunConfig(ctx context.Context, run int) *experimentRunConfig {
	rCfg := &experimentRunConfig{
		CurrentRun:     run,
		Episodes:       c.cConfig.Episodes,
		Horizon:        c.cConfig.Horizon,
		Analyzers:      make([]Analyzer, 0),
		Context:        ctx,
		RecordTraces:   c.cConfig.RecordTraces,
		ReportSavePath: c.cConfig.RecordPath,

		ConsecutiveErrorsAbort: c.cConfig.ConsecutiveErrorsAbort,
	}
	if rCfg.ConsecutiveErrorsAbort == 0 {
		rCfg.ConsecutiveErrorsAbort = 10
	}

	for _, a := range c.analyzers {
		rCfg.Analyzers = append(rCfg.Analyzers, a)
	}
	return rCfg
}
