// Package sim provides the discrete-event grading engine for the
// cloud-autoscaling contest.
//
// # Reading Guide
//
// Start with these three files to understand the engine kernel:
//   - event.go: the typed events replayed from the contest logs (Job, Command)
//   - machine.go: the virtual machine model, boot delay, and anchored billing periods
//   - state.go: the event loop, per-category queues and pools, billing, and drain
//
// # Architecture
//
// The sim package owns the engine; collaborators live in sub-packages:
//   - sim/replay/: the lazy log reader that turns text logs into typed events
//   - sim/trace/: decision-trace recording for post-run analysis
//
// A single State instance consumes a time-ordered event stream one event at
// a time. Jobs queue per category; launch/terminate commands grow and shrink
// the per-category machine pools. Dispatch is pluggable through the
// DispatchPolicy interface (best-fit with a bounded penalty window, or
// randomized first-fit). After the stream is exhausted, Drain runs a final
// dispatch pass and bills every surviving machine; the billed total (or the
// disqualification sentinel) feeds the scorer in score.go.
package sim
