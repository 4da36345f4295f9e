package layout

import (
	"fmt"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"

	"github.com/jit-sim/jit-sim/sim"
	"github.com/jit-sim/jit-sim/sim/trace"
)

// CarPartsLayoutID selects the car parts line.
const CarPartsLayoutID = "car"

const (
	stageInjection = "injetora"
	stageFinishing = "acabamento"
	stageFlame     = "flamagem"
	stageGluing    = "colagem"

	// DefaultPollInterval is how often buffered stages re-scan their input
	// buffer. Waits are measured at this granularity.
	DefaultPollInterval = 0.1

	secondsPerMinute = 60
)

// bufferedStages are the stages fed from a polled buffer, in line order.
var bufferedStages = []string{stageFinishing, stageFlame, stageGluing}

// CarPartsParams configures the car parts line. Times are in seconds.
type CarPartsParams struct {
	Horizon          float64 // tempo_simulacao
	MeanInjection    float64 // media_injetora
	StdInjection     float64 // std_injetora
	MeanFlame        float64 // media_flamagem
	StdFlame         float64 // std_flamagem
	MeanGluing       float64 // media_colagem
	StdGluing        float64 // std_colagem
	SetupInjection   float64 // tempo_setup_injetora
	SetupFlame       float64 // tempo_setup_flamagem
	SetupGluing      float64 // tempo_setup_colagem
	InitialStock     float64 // estoque_inicial, accepted for compatibility, unused by the line
	SafetyStockFlame float64 // estoque_seg_flamagem, caps the gluing buffer and drives the flame factor
	FinishingTime    float64 // media_acabamento, constant finishing time
	PollInterval     float64 // intervalo_verificacao
}

// DefaultCarPartsParams returns the documented defaults.
func DefaultCarPartsParams() CarPartsParams {
	return CarPartsParams{
		Horizon:          28800,
		MeanInjection:    44.08,
		StdInjection:     0.87,
		MeanFlame:        34.8,
		StdFlame:         0.97,
		MeanGluing:       82.3,
		StdGluing:        1.1,
		SetupInjection:   2.4,
		SetupFlame:       3.84,
		SetupGluing:      3.06,
		InitialStock:     100,
		SafetyStockFlame: 50,
		FinishingTime:    50,
		PollInterval:     DefaultPollInterval,
	}
}

// Parameters spells the params out under their wire names.
func (p CarPartsParams) Parameters() Parameters {
	return Parameters{
		"tempo_simulacao":       p.Horizon,
		"media_injetora":        p.MeanInjection,
		"std_injetora":          p.StdInjection,
		"media_flamagem":        p.MeanFlame,
		"std_flamagem":          p.StdFlame,
		"media_colagem":         p.MeanGluing,
		"std_colagem":           p.StdGluing,
		"tempo_setup_injetora":  p.SetupInjection,
		"tempo_setup_flamagem":  p.SetupFlame,
		"tempo_setup_colagem":   p.SetupGluing,
		"estoque_inicial":       p.InitialStock,
		"estoque_seg_flamagem":  p.SafetyStockFlame,
		"media_acabamento":      p.FinishingTime,
		"intervalo_verificacao": p.PollInterval,
	}
}

func decodeCarPartsParams(params Parameters) (CarPartsParams, error) {
	p := DefaultCarPartsParams()
	d := newDecoder(CarPartsLayoutID, params)
	p.Horizon = d.nonNegative("tempo_simulacao", p.Horizon)
	p.MeanInjection = d.float("media_injetora", p.MeanInjection)
	p.StdInjection = d.nonNegative("std_injetora", p.StdInjection)
	p.MeanFlame = d.float("media_flamagem", p.MeanFlame)
	p.StdFlame = d.nonNegative("std_flamagem", p.StdFlame)
	p.MeanGluing = d.float("media_colagem", p.MeanGluing)
	p.StdGluing = d.nonNegative("std_colagem", p.StdGluing)
	p.SetupInjection = d.nonNegative("tempo_setup_injetora", p.SetupInjection)
	p.SetupFlame = d.nonNegative("tempo_setup_flamagem", p.SetupFlame)
	p.SetupGluing = d.nonNegative("tempo_setup_colagem", p.SetupGluing)
	p.InitialStock = d.float("estoque_inicial", p.InitialStock)
	p.SafetyStockFlame = d.float("estoque_seg_flamagem", p.SafetyStockFlame)
	p.FinishingTime = d.nonNegative("media_acabamento", p.FinishingTime)
	p.PollInterval = d.positive("intervalo_verificacao", p.PollInterval)
	// An injection cycle of zero length would spawn parts forever without
	// advancing the clock.
	d.check(p.SetupInjection > 0 || p.MeanInjection > 0, "media_injetora",
		"injection cycle must take time (media_injetora or tempo_setup_injetora > 0)")
	return p, d.err
}

// BusyIdle splits a stage's horizon into service and idle time.
type BusyIdle struct {
	Busy float64 `json:"util"`
	Idle float64 `json:"ocioso"`
}

// CarPartsResult reports a car parts line run. Times are in minutes.
type CarPartsResult struct {
	Entries       int                 `json:"quantidade_entradas"`
	Exits         int                 `json:"quantidade_saidas"`
	MeanCycleTime float64             `json:"tempo_medio_ciclo"`
	Processed     map[string]int      `json:"quantidade_processadas"`
	BusyIdle      map[string]BusyIdle `json:"tempo_util_ocioso"`
	MeanQueueWait map[string]float64  `json:"tempo_espera_filas"`
	MeanQueueSize map[string]float64  `json:"tamanho_fila"`
	DroppedFlame  int                 `json:"descartadas_flamagem"`

	Trace *trace.TraceSummary `json:"trace,omitempty"`
}

// Layout implements Result.
func (CarPartsResult) Layout() string { return CarPartsLayoutID }

// bufferedPart is a part sitting in an inter-stage buffer.
type bufferedPart struct {
	item  int
	since float64 // instant the part entered the buffer
}

// flowTimes is one part's passage through the line.
type flowTimes struct {
	entry  float64
	exit   float64
	exited bool
}

// carPartsLine is the per-run state of the car parts line.
type carPartsLine struct {
	params CarPartsParams
	sim    *sim.Simulator

	injection, finishing, flame, gluing *stage

	// Input buffers of the polled stages.
	buffers map[string]*deque.Deque[bufferedPart]

	flow    []flowTimes // indexed by item-1
	exited  int
	dropped int

	processed *sim.Counters
	busy      *sim.Accumulator
	waits     map[string]*sim.Series
	queueLens map[string]*sim.Series
}

func runCarParts(params Parameters, ctx runContext) (Result, error) {
	p, err := decodeCarPartsParams(params)
	if err != nil {
		return nil, err
	}
	l := newCarPartsLine(p, ctx)
	l.sim.Run()
	logrus.Debugf("%s: %d events executed", CarPartsLayoutID, l.sim.Executed())
	res := l.result()
	res.Trace = ctx.summarize()
	return res, nil
}

func newCarPartsLine(p CarPartsParams, ctx runContext) *carPartsLine {
	s := sim.NewSimulator(p.Horizon)
	rng := sim.NewPartitionedRNG(ctx.key)
	all := []string{stageInjection, stageFinishing, stageFlame, stageGluing}
	l := &carPartsLine{
		params:    p,
		sim:       s,
		buffers:   make(map[string]*deque.Deque[bufferedPart], len(bufferedStages)),
		processed: sim.NewCounters(all...),
		busy:      sim.NewAccumulator(all...),
		waits:     make(map[string]*sim.Series, len(bufferedStages)),
		queueLens: make(map[string]*sim.Series, len(bufferedStages)),
	}
	for _, name := range bufferedStages {
		l.buffers[name] = &deque.Deque[bufferedPart]{}
		l.waits[name] = &sim.Series{}
		l.queueLens[name] = &sim.Series{}
	}

	l.injection = &stage{
		name:  stageInjection,
		setup: p.SetupInjection,
		mean:  p.MeanInjection,
		std:   p.StdInjection,
		rng:   rng.ForSubsystem(stageInjection),
		busy:  l.busy,
		trace: ctx.trace,
	}
	l.finishing = &stage{
		name:     stageFinishing,
		resource: sim.NewResource(s, stageFinishing, 1),
		mean:     p.FinishingTime,
		rng:      rng.ForSubsystem(stageFinishing),
		busy:     l.busy,
		trace:    ctx.trace,
	}
	l.flame = &stage{
		name:     stageFlame,
		resource: sim.NewResource(s, stageFlame, 1),
		setup:    p.SetupFlame,
		mean:     p.MeanFlame,
		std:      p.StdFlame,
		rng:      rng.ForSubsystem(stageFlame),
		factor:   func() float64 { return congestionFactor(l.waits[stageFlame], p.SafetyStockFlame) },
		busy:     l.busy,
		trace:    ctx.trace,
	}
	l.gluing = &stage{
		name:     stageGluing,
		resource: sim.NewResource(s, stageGluing, 1),
		setup:    p.SetupGluing,
		mean:     p.MeanGluing,
		std:      p.StdGluing,
		rng:      rng.ForSubsystem(stageGluing),
		busy:     l.busy,
		trace:    ctx.trace,
	}

	s.Process(stageInjection, l.injecting)
	s.Process(stageFinishing, func(p *sim.Process) { l.poll(p, stageFinishing, l.finish) })
	s.Process(stageFlame, func(p *sim.Process) { l.poll(p, stageFlame, l.flameTreat) })
	s.Process(stageGluing, func(p *sim.Process) { l.poll(p, stageGluing, l.glue) })
	return l
}

// injecting moulds parts back to back for the whole run; nothing stops it
// but the horizon.
func (l *carPartsLine) injecting(p *sim.Process) {
	var next func()
	next = func() {
		l.flow = append(l.flow, flowTimes{entry: p.Now()})
		item := len(l.flow)
		l.injection.work(p, item, p.Now(), func() {
			l.push(stageFinishing, item, p.Now())
			l.processed.Inc(stageInjection)
			next()
		})
	}
	next()
}

// poll wakes every PollInterval, samples the buffer length and, when a part
// is waiting, hands the oldest one to handle. handle calls resume once the
// stage is free to poll again.
func (l *carPartsLine) poll(p *sim.Process, name string, handle func(p *sim.Process, part bufferedPart, resume func())) {
	buf := l.buffers[name]
	var tick func()
	tick = func() {
		p.Timeout(l.params.PollInterval, func() {
			l.queueLens[name].Add(float64(buf.Len()))
			if buf.Len() == 0 {
				tick()
				return
			}
			part := buf.PopFront()
			l.waits[name].Add(p.Now() - part.since)
			handle(p, part, tick)
		})
	}
	tick()
}

func (l *carPartsLine) finish(p *sim.Process, part bufferedPart, resume func()) {
	l.finishing.work(p, part.item, part.since, func() {
		l.push(stageFlame, part.item, p.Now())
		l.processed.Inc(stageFinishing)
		l.finishing.release(p, resume)
	})
}

// flameTreat pays a transfer delay drawn from the flame distribution before
// taking the machine. Output that would overflow the gluing buffer past the
// safety stock is dropped, not requeued.
func (l *carPartsLine) flameTreat(p *sim.Process, part bufferedPart, resume func()) {
	transfer := sim.ServiceTime(l.flame.rng, l.params.MeanFlame, l.params.StdFlame, 1)
	p.Timeout(transfer, func() {
		l.flame.work(p, part.item, part.since, func() {
			if float64(l.buffers[stageGluing].Len()) < max(1, l.params.SafetyStockFlame) {
				l.push(stageGluing, part.item, p.Now())
				l.processed.Inc(stageFlame)
			} else {
				l.dropped++
			}
			l.flame.release(p, resume)
		})
	})
}

func (l *carPartsLine) glue(p *sim.Process, part bufferedPart, resume func()) {
	l.gluing.work(p, part.item, part.since, func() {
		f := &l.flow[part.item-1]
		f.exit, f.exited = p.Now(), true
		l.exited++
		l.processed.Inc(stageGluing)
		l.gluing.release(p, resume)
	})
}

func (l *carPartsLine) push(name string, item int, now float64) {
	buf, ok := l.buffers[name]
	if !ok {
		panic(fmt.Sprintf("push: no buffer for stage %q", name))
	}
	buf.PushBack(bufferedPart{item: item, since: now})
}

func (l *carPartsLine) result() CarPartsResult {
	h := l.params.Horizon
	toMinutes := func(v float64) float64 { return v / secondsPerMinute }

	var cycle sim.Series
	for _, f := range l.flow {
		if f.exited {
			cycle.Add(toMinutes(f.exit - f.entry))
		}
	}

	busy := l.busy.Snapshot(nil)
	busyIdle := make(map[string]BusyIdle, len(busy))
	for name, b := range busy {
		busyIdle[name] = BusyIdle{Busy: toMinutes(b), Idle: toMinutes(h - b)}
	}

	wait := make(map[string]float64, len(bufferedStages))
	size := make(map[string]float64, len(bufferedStages))
	for _, name := range bufferedStages {
		wait[name] = toMinutes(l.waits[name].Mean())
		size[name] = sim.RoundHalfEven(l.queueLens[name].Mean())
	}

	return CarPartsResult{
		Entries:       len(l.flow),
		Exits:         l.exited,
		MeanCycleTime: cycle.Mean(),
		Processed:     l.processed.Snapshot(),
		BusyIdle:      busyIdle,
		MeanQueueWait: wait,
		MeanQueueSize: size,
		DroppedFlame:  l.dropped,
	}
}
