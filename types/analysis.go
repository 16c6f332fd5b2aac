package types

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// EpisodeRewardAnalyzer collects the total reward of every episode
type EpisodeRewardAnalyzer struct {
	rewards []float64
}

var _ Analyzer = &EpisodeRewardAnalyzer{}

func NewEpisodeRewardAnalyzer() *EpisodeRewardAnalyzer {
	return &EpisodeRewardAnalyzer{rewards: make([]float64, 0)}
}

func (a *EpisodeRewardAnalyzer) Analyze(_ int, _ int, _ string, trace *Trace) {
	a.rewards = append(a.rewards, trace.TotalReward())
}

func (a *EpisodeRewardAnalyzer) DataSet() DataSet {
	out := make([]float64, len(a.rewards))
	copy(out, a.rewards)
	return out
}

func (a *EpisodeRewardAnalyzer) Reset() {
	a.rewards = make([]float64, 0)
}

// ServedDemandAnalyzer collects the cumulative served demand of every episode
type ServedDemandAnalyzer struct {
	served []float64
}

var _ Analyzer = &ServedDemandAnalyzer{}

func NewServedDemandAnalyzer() *ServedDemandAnalyzer {
	return &ServedDemandAnalyzer{served: make([]float64, 0)}
}

func (a *ServedDemandAnalyzer) Analyze(_ int, _ int, _ string, trace *Trace) {
	a.served = append(a.served, trace.FinalInfo().ServedDemand)
}

func (a *ServedDemandAnalyzer) DataSet() DataSet {
	out := make([]float64, len(a.served))
	copy(out, a.served)
	return out
}

func (a *ServedDemandAnalyzer) Reset() {
	a.served = make([]float64, 0)
}

// SeriesComparator plots one line per experiment of a per-episode series
func SeriesComparator(plotPath, title, yLabel, fileSuffix string) Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return func(run int, names []string, ds []DataSet) {
		p := plot.New()
		p.Title.Text = title
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = yLabel
		for i := 0; i < len(names); i++ {
			series := ds[i].([]float64)
			points := make(plotter.XYs, len(series))
			for j, v := range series {
				points[j] = plotter.XY{
					X: float64(j),
					Y: v,
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
			if len(series) > 0 {
				fmt.Printf("Final %s: %.2f for experiment: %s\n", yLabel, series[len(series)-1], names[i])
			}
		}
		p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_"+fileSuffix+".png"))
	}
}

func RewardComparator(plotPath string) Comparator {
	return SeriesComparator(plotPath, "Comparison", "Episode reward", "reward")
}

func ServedDemandComparator(plotPath string) Comparator {
	return SeriesComparator(plotPath, "Comparison", "Served demand", "served_demand")
}
