package benchmarks

import (
	"context"
	"fmt"
	"os"

	"github.com/fleet-rl/amod/amod"
	"github.com/fleet-rl/amod/policies"
	"github.com/fleet-rl/amod/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// ReplayBenchmarkConfig is the YAML file a replay experiment is driven by
type ReplayBenchmarkConfig struct {
	// Dataset is the JSON file with historical demand records
	Dataset     string  `yaml:"dataset"`
	TF          int     `yaml:"tf"`
	TStep       int     `yaml:"tstep"`
	StartHour   int     `yaml:"start_hour"`
	DemandRatio float64 `yaml:"demand_ratio"`
	Regions     []int   `yaml:"regions"`
	VaryingTime bool    `yaml:"varying_time"`
	Beta        float64 `yaml:"beta"`
	Mode        string  `yaml:"mode"`
}

func loadReplayConfig(file string) (*ReplayBenchmarkConfig, error) {
	bs, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read replay config: %w", err)
	}
	cfg := &ReplayBenchmarkConfig{
		TStep:       3,
		DemandRatio: 1,
		Beta:        0.2,
		Mode:        "sequential",
	}
	if err := yaml.Unmarshal(bs, cfg); err != nil {
		return nil, fmt.Errorf("parse replay config: %w", err)
	}
	if cfg.Dataset == "" {
		return nil, fmt.Errorf("replay config names no dataset")
	}
	return cfg, nil
}

func ReplayBenchmark(ctx context.Context, cfg *ReplayBenchmarkConfig) error {
	mode, err := amod.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	sCfg := amod.ReplayConfig{
		File:        cfg.Dataset,
		TF:          cfg.TF,
		TStep:       cfg.TStep,
		StartHour:   cfg.StartHour,
		DemandRatio: cfg.DemandRatio,
		Regions:     cfg.Regions,
		VaryingTime: cfg.VaryingTime,
		Seed:        seed,
	}
	scenario, err := amod.NewReplayScenario(sCfg)
	if err != nil {
		return err
	}

	newControl := func() (types.Environment, error) {
		env, err := amod.NewAMoD(scenario, cfg.Beta)
		if err != nil {
			return nil, err
		}
		return amod.NewControl(mode, env)
	}

	c := types.NewComparison(&types.ComparisonConfig{
		Runs:         runs,
		Episodes:     episodes,
		Horizon:      controlHorizon(mode, cfg.TF),
		RecordPath:   saveFile,
		RecordTraces: true,
	})
	c.AddAnalysis("Reward", types.NewEpisodeRewardAnalyzer(), types.RewardComparator(saveFile))
	c.AddAnalysis("ServedDemand", types.NewServedDemandAnalyzer(), types.ServedDemandComparator(saveFile))

	n := scenario.NRegion
	for _, exp := range []struct {
		name   string
		policy types.Policy
	}{
		{"Random", policies.NewRandomPolicy(n, seed)},
		{"Proportional", policies.NewProportionalPolicy(n)},
		{"QueueWeighted", policies.NewQueueWeightedPolicy(n, seed+1)},
	} {
		env, err := newControl()
		if err != nil {
			return err
		}
		c.AddExperiment(types.NewExperiment(exp.name, exp.policy, env))
	}

	c.Run(ctx)
	return nil
}

func ReplayCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Scenario replayed from a historical dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadReplayConfig(configFile)
			if err != nil {
				return err
			}
			return ReplayBenchmark(cmd.Context(), cfg)
		},
	}
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "replay.yml", "YAML experiment config")
	return cmd
}
