package trace

// Level controls the verbosity of decision tracing.
type Level string

const (
	// LevelNone disables tracing (zero overhead).
	LevelNone Level = "none"
	// LevelDecisions captures all dispatch and machine lifecycle decisions.
	LevelDecisions Level = "decisions"
)

// validLevels maps accepted trace level strings.
var validLevels = map[Level]bool{
	LevelNone:      true,
	LevelDecisions: true,
	"":             true, // empty defaults to none
}

// IsValidLevel returns true if the given level string is recognized.
func IsValidLevel(level string) bool {
	return validLevels[Level(level)]
}

// EvaluationTrace collects decision records during an evaluation run.
type EvaluationTrace struct {
	Level      Level
	Dispatches []DispatchRecord
	Unserved   []UnservedRecord
	Machines   []MachineRecord
}

// NewEvaluationTrace creates an EvaluationTrace ready for recording.
func NewEvaluationTrace(level Level) *EvaluationTrace {
	return &EvaluationTrace{
		Level:      level,
		Dispatches: make([]DispatchRecord, 0),
		Unserved:   make([]UnservedRecord, 0),
		Machines:   make([]MachineRecord, 0),
	}
}

// Enabled reports whether records should be collected. Safe on nil.
func (et *EvaluationTrace) Enabled() bool {
	return et != nil && et.Level == LevelDecisions
}

// RecordDispatch appends a dispatch decision record.
func (et *EvaluationTrace) RecordDispatch(record DispatchRecord) {
	if !et.Enabled() {
		return
	}
	et.Dispatches = append(et.Dispatches, record)
}

// RecordUnserved appends an unserved-job record.
func (et *EvaluationTrace) RecordUnserved(record UnservedRecord) {
	if !et.Enabled() {
		return
	}
	et.Unserved = append(et.Unserved, record)
}

// RecordMachine appends a machine lifecycle record.
func (et *EvaluationTrace) RecordMachine(record MachineRecord) {
	if !et.Enabled() {
		return
	}
	et.Machines = append(et.Machines, record)
}
