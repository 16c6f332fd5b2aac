package benchmarks

import (
	"context"

	"github.com/fleet-rl/amod/amod"
	"github.com/fleet-rl/amod/policies"
	"github.com/fleet-rl/amod/types"
	"github.com/spf13/cobra"
)

func GridBenchmark(ctx context.Context, cfg amod.GridConfig, beta float64, mode amod.Mode) error {
	newControl := func() (types.Environment, error) {
		scenario, err := amod.NewGridScenario(cfg)
		if err != nil {
			return nil, err
		}
		env, err := amod.NewAMoD(scenario, beta)
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

	n := cfg.N1 * cfg.N2
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

func GridCommand() *cobra.Command {
	var (
		n1        int
		n2        int
		tf        int
		tstep     int
		ninit     int
		demand    float64
		alpha     float64
		tripPref  float64
		fixPrice  bool
		beta      float64
		modeLabel string
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Synthetic grid scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := amod.ParseMode(modeLabel)
			if err != nil {
				return err
			}
			cfg := amod.GridConfig{
				N1:                   n1,
				N2:                   n2,
				TF:                   tf,
				TStep:                tstep,
				NInit:                ninit,
				DemandInput:          []float64{demand},
				Alpha:                alpha,
				TripLengthPreference: tripPref,
				FixPrice:             fixPrice,
				Seed:                 seed,
			}
			return GridBenchmark(cmd.Context(), cfg, beta, mode)
		},
	}
	cmd.PersistentFlags().IntVar(&n1, "n1", 2, "Grid width in regions")
	cmd.PersistentFlags().IntVar(&n2, "n2", 2, "Grid height in regions")
	cmd.PersistentFlags().IntVar(&tf, "tf", 60, "Episode horizon in steps")
	cmd.PersistentFlags().IntVar(&tstep, "tstep", 1, "Minutes per step")
	cmd.PersistentFlags().IntVar(&ninit, "ninit", 30, "Initial vehicles per region")
	cmd.PersistentFlags().Float64Var(&demand, "demand", 8, "Mean outgoing demand per region")
	cmd.PersistentFlags().Float64Var(&alpha, "alpha", 0.2, "Per-episode demand multiplier spread")
	cmd.PersistentFlags().Float64Var(&tripPref, "trip-length-preference", 0.25, "Exponential down-weighting of longer trips")
	cmd.PersistentFlags().BoolVar(&fixPrice, "fix-price", true, "Draw one price per edge instead of per step")
	cmd.PersistentFlags().Float64Var(&beta, "beta", 0.2, "Operating cost per vehicle per minute")
	cmd.PersistentFlags().StringVar(&modeLabel, "mode", "sequential", "Control scheme: sequential, pricing or joint")
	return cmd
}
