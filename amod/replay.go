package amod

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/samber/lo"
	"golang.org/x/exp/rand"
)

// ReplayConfig configures a scenario replayed from historical records
type ReplayConfig struct {
	// File is the JSON dataset with demand, rebTime and totalAcc records
	File string
	// TF is the episode horizon in steps
	TF int
	// TStep is the bin width in minutes of historical time
	TStep int
	// StartHour of day the episode starts at
	StartHour int
	// DemandRatio uniformly scales the historical demand
	DemandRatio float64
	// Regions optionally restricts the scenario to a subset of regions
	Regions []int
	// VaryingTime keeps hour-by-hour rebalancing times instead of
	// freezing the starting hour's
	VaryingTime bool
	Seed        uint64
}

type replayDataset struct {
	NLat    int   `json:"nlat"`
	NLon    int   `json:"nlon"`
	Regions []int `json:"region"`
	Demand  []struct {
		TimeStamp   int     `json:"time_stamp"`
		Origin      int     `json:"origin"`
		Destination int     `json:"destination"`
		Demand      float64 `json:"demand"`
		TravelTime  float64 `json:"travel_time"`
		Price       float64 `json:"price"`
	} `json:"demand"`
	RebTime []struct {
		TimeStamp   int     `json:"time_stamp"`
		Origin      int     `json:"origin"`
		Destination int     `json:"destination"`
		RebTime     float64 `json:"reb_time"`
	} `json:"rebTime"`
	TotalAcc []struct {
		Hour int     `json:"hour"`
		Acc  float64 `json:"acc"`
	} `json:"totalAcc"`
}

// NewReplayScenario aggregates a historical dataset into per-time-step
// bins: demand is summed per bin, price and travel time become
// demand-weighted averages.
func NewReplayScenario(cfg ReplayConfig) (*Scenario, error) {
	bs, err := os.ReadFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("read replay dataset: %w", err)
	}
	var data replayDataset
	if err := json.Unmarshal(bs, &data); err != nil {
		return nil, fmt.Errorf("parse replay dataset: %w", err)
	}
	if cfg.TF <= 0 || cfg.TStep <= 0 {
		return nil, fmt.Errorf("replay scenario needs positive horizon and tstep, got tf=%d tstep=%d", cfg.TF, cfg.TStep)
	}
	if cfg.DemandRatio == 0 {
		cfg.DemandRatio = 1
	}

	regions := cfg.Regions
	if len(regions) == 0 {
		if len(data.Regions) > 0 {
			regions = data.Regions
		} else {
			regions = make([]int, data.NLat*data.NLon)
			for i := range regions {
				regions[i] = i
			}
		}
	}
	n := len(regions)
	if n == 0 {
		return nil, fmt.Errorf("replay dataset defines no regions")
	}
	index := make(map[int]int, n) // dataset region id -> dense index
	for k, r := range regions {
		index[r] = k
	}

	s := &Scenario{
		NRegion:     n,
		TF:          cfg.TF,
		TStep:       cfg.TStep,
		DemandTime:  make(map[Edge][]int),
		RebTime:     make(map[Edge][]int),
		AccInit:     make([]float64, n),
		isReplay:    true,
		replayMean:  make(map[Edge][]float64),
		replayPrice: make(map[Edge][]float64),
		seed:        cfg.Seed,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
	}

	horizon := s.LedgerHorizon()
	s.OutEdges = make([][]int, n)
	for i := 0; i < n; i++ {
		s.OutEdges[i] = make([]int, 0, n)
		for j := 0; j < n; j++ {
			e := Edge{i, j}
			s.Edges = append(s.Edges, e)
			s.OutEdges[i] = append(s.OutEdges[i], j)
			s.DemandTime[e] = make([]int, horizon)
			s.RebTime[e] = make([]int, horizon)
			s.replayMean[e] = make([]float64, horizon)
			s.replayPrice[e] = make([]float64, horizon)
		}
	}

	// bin demand records; price and travel time are volume-weighted sums
	// here and divided by volume after
	start := cfg.StartHour * 60
	weightedTime := make(map[Edge][]float64, len(s.Edges))
	for _, e := range s.Edges {
		weightedTime[e] = make([]float64, horizon)
	}
	for _, rec := range data.Demand {
		oi, ok1 := index[rec.Origin]
		di, ok2 := index[rec.Destination]
		if !ok1 || !ok2 {
			continue
		}
		t := (rec.TimeStamp - start) / cfg.TStep
		if t < 0 || t >= horizon {
			continue
		}
		e := Edge{oi, di}
		v := rec.Demand * cfg.DemandRatio
		s.replayMean[e][t] += v
		s.replayPrice[e][t] += rec.Price * v
		weightedTime[e][t] += rec.TravelTime * v / float64(cfg.TStep)
	}
	for _, e := range s.Edges {
		for t := 0; t < horizon; t++ {
			if v := s.replayMean[e][t]; v > 0 {
				s.replayPrice[e][t] /= v
				s.DemandTime[e][t] = maxInt(int(math.Round(weightedTime[e][t]/v)), 1)
			}
		}
	}

	for _, rec := range data.RebTime {
		oi, ok1 := index[rec.Origin]
		di, ok2 := index[rec.Destination]
		if !ok1 || !ok2 {
			continue
		}
		rt := maxInt(int(math.Round(rec.RebTime/float64(cfg.TStep))), 1)
		if cfg.VaryingTime {
			t0 := (rec.TimeStamp*60 - start) / cfg.TStep
			t1 := (rec.TimeStamp*60 + 60 - start) / cfg.TStep
			for t := maxInt(t0, 0); t < t1 && t < horizon; t++ {
				s.RebTime[Edge{oi, di}][t] = rt
			}
		} else if rec.TimeStamp == cfg.StartHour {
			for t := 0; t < horizon; t++ {
				s.RebTime[Edge{oi, di}][t] = rt
			}
		}
	}

	// initial fleet: the total count observed midway through the episode,
	// spread evenly over the regions
	midHour := cfg.StartHour + int(math.Round(float64(cfg.TStep)/2*float64(cfg.TF)/60))
	for _, rec := range data.TotalAcc {
		if rec.Hour == midHour {
			perRegion := math.Floor(rec.Acc / float64(n))
			for i := range s.AccInit {
				s.AccInit[i] = perRegion
			}
		}
	}
	if lo.Sum(s.AccInit) == 0 {
		return nil, fmt.Errorf("replay dataset provides no fleet size for hour %d", midHour)
	}

	return s, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
