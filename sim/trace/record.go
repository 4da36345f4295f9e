// Package trace provides per-stage trace recording for production-line runs.
// It depends only on sim's sample statistics, never on sim/layout/.
package trace

// StageRecord captures one item's visit to one stage.
// All instants are in the layout's clock unit.
type StageRecord struct {
	Item     int     `json:"item"`
	Stage    string  `json:"stage"`
	Queued   float64 `json:"queued"`   // instant the item started waiting for the stage
	Started  float64 `json:"started"`  // instant the stage resource was acquired
	Finished float64 `json:"finished"` // instant service ended
}

// Wait returns the time spent queued before service.
func (r StageRecord) Wait() float64 {
	return r.Started - r.Queued
}

// Service returns the time between acquisition and completion, setup included.
func (r StageRecord) Service() float64 {
	return r.Finished - r.Started
}
