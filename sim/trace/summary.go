package trace

import (
	"sort"

	"github.com/jit-sim/jit-sim/sim"
)

// StageSummary aggregates the records of one stage.
type StageSummary struct {
	Stage       string  `json:"stage"`
	Count       int     `json:"count"`
	MeanWait    float64 `json:"mean_wait"`
	P95Wait     float64 `json:"p95_wait"`
	MaxWait     float64 `json:"max_wait"`
	MeanService float64 `json:"mean_service"`
}

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalRecords int            `json:"total_records"`
	UniqueItems  int            `json:"unique_items"`
	Stages       []StageSummary `json:"stages"` // sorted by stage name
}

// stageSamples collects the per-record samples of one stage.
type stageSamples struct {
	waits    sim.Series
	services sim.Series
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		Stages: make([]StageSummary, 0),
	}
	if st == nil {
		return summary
	}

	summary.TotalRecords = len(st.Stages)
	items := make(map[int]bool)
	byStage := make(map[string]*stageSamples)
	for _, r := range st.Stages {
		items[r.Item] = true
		s, ok := byStage[r.Stage]
		if !ok {
			s = &stageSamples{}
			byStage[r.Stage] = s
		}
		s.waits.Add(r.Wait())
		s.services.Add(r.Service())
	}
	summary.UniqueItems = len(items)

	for name, s := range byStage {
		summary.Stages = append(summary.Stages, StageSummary{
			Stage:       name,
			Count:       s.waits.Len(),
			MeanWait:    s.waits.Mean(),
			P95Wait:     sim.CalculatePercentile(s.waits.Values(), 95),
			MaxWait:     s.waits.Max(),
			MeanService: s.services.Mean(),
		})
	}
	sort.Slice(summary.Stages, func(i, j int) bool {
		return summary.Stages[i].Stage < summary.Stages[j].Stage
	})

	return summary
}
