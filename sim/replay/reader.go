// Package replay turns contest log text into the typed events the engine
// consumes. The reader is lazy (one line per Next call), finite, and
// non-restartable; it trusts the log to be time-ordered and leaves ordering
// to the producer.
//
// Two timestamp encodings appear in the wild and both are handled:
//
//	<unix-ts> <duration> <guid> <category>          job
//	<unix-ts> launch|terminate <category>           command
//	YYYY-MM-DD HH:MM:SS <guid> <category> <duration> job (civil time, UTC)
//	YYYY-MM-DD HH:MM:SS launch|terminate <category>  command
//
// Lines matching neither shape are noise and are skipped silently.
package replay

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/scale-contest/scale-eval/sim"
)

// civilLayout is the civil date/time encoding, interpreted as UTC.
const civilLayout = "2006-01-02 15:04:05"

// LogReader reads one event per Next call from an underlying reader.
type LogReader struct {
	scanner *bufio.Scanner
}

// NewLogReader creates a LogReader over r.
func NewLogReader(r io.Reader) *LogReader {
	return &LogReader{scanner: bufio.NewScanner(r)}
}

// Next returns the next parsable event. It returns io.EOF once the input is
// exhausted; any other error comes from the underlying reader. Unparsable
// lines never surface as errors.
func (lr *LogReader) Next() (sim.Event, error) {
	for lr.scanner.Scan() {
		if ev, ok := parseLine(lr.scanner.Text()); ok {
			return ev, nil
		}
	}
	if err := lr.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// ReadAll drains the reader into a slice. Intended for tests and small logs;
// the engine itself consumes events one at a time.
func ReadAll(r io.Reader) ([]sim.Event, error) {
	lr := NewLogReader(r)
	var events []sim.Event
	for {
		ev, err := lr.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}

// parseLine tries both timestamp encodings. ok is false for noise lines.
func parseLine(line string) (sim.Event, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, false
	}

	if ts, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
		return parseUnix(ts, fields[1:])
	}
	if len(fields) >= 4 {
		if t, err := time.Parse(civilLayout, fields[0]+" "+fields[1]); err == nil {
			return parseCivil(t.Unix(), fields[2:])
		}
	}
	return nil, false
}

// parseUnix handles "<duration> <guid> <category>" and "<kind> <category>".
func parseUnix(ts int64, rest []string) (sim.Event, bool) {
	switch len(rest) {
	case 3:
		duration, err := strconv.ParseFloat(rest[0], 64)
		if err != nil || duration < 0 {
			return nil, false
		}
		return sim.NewJob(ts, rest[2], duration, rest[1]), true
	case 2:
		kind, ok := commandKind(rest[0])
		if !ok {
			return nil, false
		}
		return sim.NewCommand(ts, rest[1], kind), true
	}
	return nil, false
}

// parseCivil handles "<guid> <category> <duration>" and "<kind> <category>".
// The civil job shape puts the duration last, unlike the unix shape.
func parseCivil(ts int64, rest []string) (sim.Event, bool) {
	switch len(rest) {
	case 3:
		duration, err := strconv.ParseFloat(rest[2], 64)
		if err != nil || duration < 0 {
			return nil, false
		}
		return sim.NewJob(ts, rest[1], duration, rest[0]), true
	case 2:
		kind, ok := commandKind(rest[0])
		if !ok {
			return nil, false
		}
		return sim.NewCommand(ts, rest[1], kind), true
	}
	return nil, false
}

func commandKind(word string) (sim.CommandKind, bool) {
	switch sim.CommandKind(word) {
	case sim.KindLaunch:
		return sim.KindLaunch, true
	case sim.KindTerminate:
		return sim.KindTerminate, true
	}
	return "", false
}
