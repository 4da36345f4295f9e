// Package layout holds the plant layouts that can be simulated and the single
// entry point Run that dispatches to them.
//
// Each layout decodes its parameters over documented defaults, wires a fresh
// sim.Simulator with the resources, buffers and processes of its production
// line, runs it to the horizon and reduces the per-run counters into an
// immutable result value. Nothing is shared between runs, so Run is safe to
// call from concurrent goroutines.
package layout

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/jit-sim/jit-sim/sim"
	"github.com/jit-sim/jit-sim/sim/trace"
)

// Result is the outcome of one run. Concrete types are ShoeResult,
// CarPartsResult and FactoryResult; each marshals to the JSON shape its
// layout has always reported.
type Result interface {
	Layout() string
}

// Options tune a run beyond the layout parameters.
type Options struct {
	// Seed fixes the random draws. When nil, the "seed" parameter is used if
	// present, otherwise the wall clock.
	Seed *int64
	// Trace enables per-stage trace recording; the summary is attached to
	// the result.
	Trace trace.TraceLevel
}

// runContext carries the per-run collaborators every layout receives.
type runContext struct {
	key   sim.SimulationKey
	trace *trace.SimulationTrace
}

// Layout is a registered plant layout.
type Layout struct {
	ID          string
	Aliases     []string
	Description string

	defaults func() Parameters
	run      func(Parameters, runContext) (Result, error)
}

// Defaults returns the documented default parameters.
func (l Layout) Defaults() Parameters {
	return l.defaults()
}

var registry = []Layout{
	{
		ID:          ShoeLayoutID,
		Description: "shoe line: cutting then sewing, arrivals until the initial stock is used up (minutes)",
		defaults:    func() Parameters { return DefaultShoeParams().Parameters() },
		run:         runShoe,
	},
	{
		ID:          CarPartsLayoutID,
		Description: "car parts line: injection, finishing, flame treatment, gluing with polled buffers (seconds, reported in minutes)",
		defaults:    func() Parameters { return DefaultCarPartsParams().Parameters() },
		run:         runCarParts,
	},
	{
		ID:          FactoryLayoutID,
		Aliases:     []string{"factory"},
		Description: "factory supply: suppliers refill a bounded stock consumed by production machines",
		defaults:    func() Parameters { return DefaultFactoryParams().Parameters() },
		run:         runFactory,
	},
}

// Layouts returns every registered layout.
func Layouts() []Layout {
	return slices.Clone(registry)
}

// Lookup finds a layout by id or alias.
func Lookup(id string) (Layout, error) {
	for _, l := range registry {
		if l.ID == id || slices.Contains(l.Aliases, id) {
			return l, nil
		}
	}
	return Layout{}, fmt.Errorf("%w: %q", ErrUnknownLayout, id)
}

// Run simulates layoutID with params. An optional "seed" parameter makes the
// run reproducible; without it every call draws different samples.
func Run(layoutID string, params Parameters) (Result, error) {
	return RunWithOptions(layoutID, params, Options{})
}

// RunWithOptions is Run with explicit seed and trace settings.
// Configuration errors are reported before anything is simulated.
func RunWithOptions(layoutID string, params Parameters, opts Options) (Result, error) {
	l, err := Lookup(layoutID)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = Parameters{}
	}
	if !trace.IsValidTraceLevel(string(opts.Trace)) {
		return nil, &ConfigError{Layout: l.ID, Field: "trace", Reason: fmt.Sprintf("unknown trace level %q", opts.Trace)}
	}

	key, err := resolveKey(l.ID, params, opts)
	if err != nil {
		return nil, err
	}
	ctx := runContext{
		key:   key,
		trace: trace.NewSimulationTrace(trace.TraceConfig{Level: opts.Trace}),
	}

	logrus.Infof("Starting %s simulation (seed=%d)", l.ID, int64(key))
	res, err := l.run(params, ctx)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Finished %s simulation", l.ID)
	return res, nil
}

func resolveKey(layoutID string, params Parameters, opts Options) (sim.SimulationKey, error) {
	if opts.Seed != nil {
		return sim.NewSimulationKey(*opts.Seed), nil
	}
	if _, ok := params["seed"]; !ok || params["seed"] == nil {
		return sim.WallClockKey(), nil
	}
	d := newDecoder(layoutID, params)
	seed := d.int64Value("seed", 0)
	if d.err != nil {
		return 0, d.err
	}
	return sim.NewSimulationKey(seed), nil
}

// summarize returns the trace summary, or nil when tracing is off.
func (c runContext) summarize() *trace.TraceSummary {
	if !c.trace.Enabled() {
		return nil
	}
	return trace.Summarize(c.trace)
}
