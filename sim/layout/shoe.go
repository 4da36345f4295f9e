package layout

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jit-sim/jit-sim/sim"
	"github.com/jit-sim/jit-sim/sim/trace"
)

// ShoeLayoutID selects the shoe line.
const ShoeLayoutID = "shoe"

const (
	stageCut = "corte"
	stageSew = "costura"

	// shoeShiftMinutes is the span over which the initial stock arrives.
	shoeShiftMinutes = 480
)

// ShoeParams configures the shoe line. Times are in minutes.
type ShoeParams struct {
	Horizon        float64 // tempo_simulacao
	MeanCut        float64 // media_corte
	StdCut         float64 // std_corte
	MeanSew        float64 // media_costura
	StdSew         float64 // std_costura
	SetupCut       float64 // tempo_setup_corte
	SetupSew       float64 // tempo_setup_costura
	InitialStock   float64 // estoque_inicial, pairs released over the shift
	SafetyStockSew float64 // estoque_seg_costura, drives the sewing congestion factor
}

// DefaultShoeParams returns the documented defaults.
func DefaultShoeParams() ShoeParams {
	return ShoeParams{
		Horizon:        490,
		MeanCut:        4.4,
		StdCut:         0.2,
		MeanSew:        4.5,
		StdSew:         0.3,
		SetupCut:       0.3,
		SetupSew:       0.2,
		InitialStock:   95,
		SafetyStockSew: 50,
	}
}

// Parameters spells the params out under their wire names.
func (p ShoeParams) Parameters() Parameters {
	return Parameters{
		"tempo_simulacao":     p.Horizon,
		"media_corte":         p.MeanCut,
		"std_corte":           p.StdCut,
		"media_costura":       p.MeanSew,
		"std_costura":         p.StdSew,
		"tempo_setup_corte":   p.SetupCut,
		"tempo_setup_costura": p.SetupSew,
		"estoque_inicial":     p.InitialStock,
		"estoque_seg_costura": p.SafetyStockSew,
	}
}

func decodeShoeParams(params Parameters) (ShoeParams, error) {
	p := DefaultShoeParams()
	d := newDecoder(ShoeLayoutID, params)
	p.Horizon = d.nonNegative("tempo_simulacao", p.Horizon)
	p.MeanCut = d.float("media_corte", p.MeanCut)
	p.StdCut = d.nonNegative("std_corte", p.StdCut)
	p.MeanSew = d.float("media_costura", p.MeanSew)
	p.StdSew = d.nonNegative("std_costura", p.StdSew)
	p.SetupCut = d.nonNegative("tempo_setup_corte", p.SetupCut)
	p.SetupSew = d.nonNegative("tempo_setup_costura", p.SetupSew)
	p.InitialStock = d.positive("estoque_inicial", p.InitialStock)
	p.SafetyStockSew = d.float("estoque_seg_costura", p.SafetyStockSew)
	return p, d.err
}

// ShoeFinalStock is the work-in-progress left between the two stages.
type ShoeFinalStock struct {
	Cut int `json:"cortado"`
}

// ShoeResult reports a shoe line run. Times are in minutes.
type ShoeResult struct {
	Entries          int                `json:"entradas"`
	Exits            int                `json:"saidas"`
	MeanTimeInSystem float64            `json:"tempo_medio_sistema"`
	Processed        map[string]int     `json:"processadas"`
	Busy             map[string]float64 `json:"tempo_util"`
	Idle             map[string]float64 `json:"tempo_ocioso"`
	MeanQueueWait    map[string]float64 `json:"tempo_medio_fila"`
	MeanQueueSize    map[string]float64 `json:"tamanho_medio_fila"`
	FinalStock       ShoeFinalStock     `json:"estoque_final"`

	Trace *trace.TraceSummary `json:"trace,omitempty"`
}

// Layout implements Result.
func (ShoeResult) Layout() string { return ShoeLayoutID }

// shoeLine is the per-run state of the shoe line.
type shoeLine struct {
	params ShoeParams
	sim    *sim.Simulator

	cut, sew *stage

	remaining float64 // stock not yet released to cutting
	cutStock  int     // pairs cut but not yet sewn
	entries   []float64
	exits     []float64

	processed *sim.Counters
	busy      *sim.Accumulator
	waits     map[string]*sim.Series
	queueLens map[string]*sim.Series
}

func runShoe(params Parameters, ctx runContext) (Result, error) {
	p, err := decodeShoeParams(params)
	if err != nil {
		return nil, err
	}
	l := newShoeLine(p, ctx)
	l.sim.Run()
	logrus.Debugf("%s: %d events executed", ShoeLayoutID, l.sim.Executed())
	res := l.result()
	res.Trace = ctx.summarize()
	return res, nil
}

func newShoeLine(p ShoeParams, ctx runContext) *shoeLine {
	s := sim.NewSimulator(p.Horizon)
	rng := sim.NewPartitionedRNG(ctx.key)
	l := &shoeLine{
		params:    p,
		sim:       s,
		remaining: p.InitialStock,
		processed: sim.NewCounters(stageCut, stageSew),
		busy:      sim.NewAccumulator(stageCut, stageSew),
		waits:     map[string]*sim.Series{stageCut: {}, stageSew: {}},
		queueLens: map[string]*sim.Series{stageCut: {}, stageSew: {}},
	}
	cutter := sim.NewResource(s, stageCut, 1)
	sewer := sim.NewResource(s, stageSew, 1)
	l.cut = &stage{
		name:     stageCut,
		resource: cutter,
		setup:    p.SetupCut,
		mean:     p.MeanCut,
		std:      p.StdCut,
		rng:      rng.ForSubsystem(stageCut),
		factor:   func() float64 { return congestionFactor(l.waits[stageCut], l.remaining) },
		busy:     l.busy,
		trace:    ctx.trace,
		acquired: l.recordQueue(stageCut, cutter),
	}
	l.sew = &stage{
		name:     stageSew,
		resource: sewer,
		setup:    p.SetupSew,
		mean:     p.MeanSew,
		std:      p.StdSew,
		rng:      rng.ForSubsystem(stageSew),
		factor:   func() float64 { return congestionFactor(l.waits[stageSew], p.SafetyStockSew) },
		busy:     l.busy,
		trace:    ctx.trace,
		acquired: l.recordQueue(stageSew, sewer),
	}
	s.Process("chegadas", l.arrivals)
	return l
}

// recordQueue samples the wait of the item just granted and the number of
// items still queued behind it.
func (l *shoeLine) recordQueue(name string, r *sim.Resource) func(*sim.Process, float64) {
	return func(p *sim.Process, queued float64) {
		l.waits[name].Add(p.Now() - queued)
		l.queueLens[name].Add(float64(r.QueueLen()))
	}
}

// arrivals releases one pair to cutting every shift/initialStock minutes
// until the stock runs out.
func (l *shoeLine) arrivals(p *sim.Process) {
	interval := shoeShiftMinutes / l.params.InitialStock
	var next func()
	next = func() {
		if l.remaining <= 0 {
			logrus.Debugf("[t=%.2f] initial stock exhausted after %d pairs", p.Now(), len(l.entries))
			p.Exit()
			return
		}
		l.entries = append(l.entries, p.Now())
		item := len(l.entries)
		l.remaining--
		p.Spawn(fmt.Sprintf("%s-%d", stageCut, item), l.cutting(item), func() {
			p.Timeout(interval, next)
		})
	}
	next()
}

func (l *shoeLine) cutting(item int) sim.Body {
	return func(p *sim.Process) {
		l.cut.work(p, item, p.Now(), func() {
			l.processed.Inc(stageCut)
			l.cutStock++
			l.cut.release(p, func() {
				p.Spawn(fmt.Sprintf("%s-%d", stageSew, item), l.sewing(item), p.Exit)
			})
		})
	}
}

func (l *shoeLine) sewing(item int) sim.Body {
	return func(p *sim.Process) {
		l.sew.work(p, item, p.Now(), func() {
			l.processed.Inc(stageSew)
			l.exits = append(l.exits, p.Now())
			l.cutStock--
			l.sew.release(p, p.Exit)
		})
	}
}

func (l *shoeLine) result() ShoeResult {
	h := l.params.Horizon

	// Pairs leave in arrival order (single FIFO machine per stage), so the
	// i-th exit belongs to the i-th entry.
	var inSystem sim.Series
	for i, out := range l.exits {
		inSystem.Add(out - l.entries[i])
	}

	busy := l.busy.Snapshot(nil)
	idle := make(map[string]float64, len(busy))
	wait := make(map[string]float64, len(busy))
	size := make(map[string]float64, len(busy))
	for _, name := range []string{stageCut, stageSew} {
		idle[name] = h - busy[name]
		wait[name] = roundedWait(l.waits[name].Mean())
		size[name] = sim.RoundHalfEven(l.queueLens[name].Mean())
	}

	return ShoeResult{
		Entries:          len(l.entries),
		Exits:            len(l.exits),
		MeanTimeInSystem: inSystem.Mean(),
		Processed:        l.processed.Snapshot(),
		Busy:             busy,
		Idle:             idle,
		MeanQueueWait:    wait,
		MeanQueueSize:    size,
		FinalStock:       ShoeFinalStock{Cut: l.cutStock},
	}
}

// roundedWait reports mean waits under 0.1 minutes as 0 and rounds the rest.
func roundedWait(mean float64) float64 {
	if mean < 0.1 {
		return 0
	}
	return sim.RoundHalfEven(mean)
}
