// Package wizard implements the rental request state machine.
//
// Store is a pure reducer over a model.FormState: it applies field changes,
// moves between pages and tracks the submission. Wizard wraps a Store with
// the orchestration rules: section validation gates navigation, a single
// submission may be in flight at a time, and a successful submission locks
// the form until StartOver.
//
// Wizard is safe for concurrent use. The gateway call made by Submit runs
// without holding the lock, so Snapshot keeps answering while a request is
// in flight.
package wizard
