package trace

// TraceLevel controls the verbosity of stage tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelStages records one entry per completed stage visit.
	TraceLevelStages TraceLevel = "stages"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelStages: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects stage records during one run.
// A nil *SimulationTrace is valid and records nothing.
type SimulationTrace struct {
	Config TraceConfig
	Stages []StageRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
// Returns nil when the level disables tracing.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	if config.Level == TraceLevelNone || config.Level == "" {
		return nil
	}
	return &SimulationTrace{
		Config: config,
		Stages: make([]StageRecord, 0),
	}
}

// RecordStage appends a stage record. No-op on a nil trace.
func (st *SimulationTrace) RecordStage(record StageRecord) {
	if st == nil {
		return
	}
	st.Stages = append(st.Stages, record)
}

// Enabled reports whether records are being kept.
func (st *SimulationTrace) Enabled() bool {
	return st != nil
}
