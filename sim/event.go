package sim

// Event is one entry of the replayed contest log. Each event carries a UTC
// timestamp (integer seconds) and the category of the queue it belongs to.
// The engine relies on the event source being time-ordered; it never
// re-sorts the stream.
type Event interface {
	Timestamp() int64
	Category() string
}

// CommandKind discriminates the two machine commands a contestant may issue.
type CommandKind string

const (
	// KindLaunch requests a new machine for a category.
	KindLaunch CommandKind = "launch"
	// KindTerminate releases the category machine closest to the end of
	// its paid billing period.
	KindTerminate CommandKind = "terminate"
)

// Job is a unit of platform work arriving for one category.
// Immutable once created.
type Job struct {
	time     int64
	category string
	duration float64
	guid     string
}

// NewJob creates a Job event.
func NewJob(timestamp int64, category string, duration float64, guid string) Job {
	return Job{time: timestamp, category: category, duration: duration, guid: guid}
}

// Timestamp returns the job's arrival time.
func (j Job) Timestamp() int64 { return j.time }

// Category returns the scheduling queue the job belongs to.
func (j Job) Category() string { return j.category }

// Duration returns the task duration in seconds.
func (j Job) Duration() float64 { return j.duration }

// GUID returns the job's unique identifier.
func (j Job) GUID() string { return j.guid }

// Command is a contestant machine command (launch or terminate).
// Immutable once created.
type Command struct {
	time     int64
	category string
	kind     CommandKind
}

// NewCommand creates a Command event.
func NewCommand(timestamp int64, category string, kind CommandKind) Command {
	return Command{time: timestamp, category: category, kind: kind}
}

// Timestamp returns the time the command was issued.
func (c Command) Timestamp() int64 { return c.time }

// Category returns the machine pool the command targets.
func (c Command) Category() string { return c.category }

// Kind returns the command kind.
func (c Command) Kind() CommandKind { return c.kind }
