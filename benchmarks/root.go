package benchmarks

import (
	"github.com/fleet-rl/amod/amod"
	"github.com/spf13/cobra"
)

var (
	episodes int
	horizon  int
	saveFile string
	runs     int
	seed     uint64
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          "amod",
		Short:        "Mobility on demand fleet control experiments",
		SilenceUsage: true,
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 100, "Number of episodes to run")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", 0, "Steps per episode, 0 derives it from the scenario")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	rootCommand.PersistentFlags().Uint64Var(&seed, "seed", 10, "Scenario random seed")
	// adding the subcommands here
	rootCommand.AddCommand(GridCommand())
	rootCommand.AddCommand(ReplayCommand())
	return rootCommand
}

// controlHorizon is the number of Step calls one episode takes: the
// sequential scheme splits every simulator step into two calls
func controlHorizon(mode amod.Mode, tf int) int {
	if horizon > 0 {
		return horizon
	}
	if mode == amod.ModeSequential {
		return 2 * tf
	}
	return tf
}
