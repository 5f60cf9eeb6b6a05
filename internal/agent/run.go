package agent

// Run is a single in-flight question. Events streams progress; after the
// channel closes, Err reports whether the run ended with a fatal error
// instead of a done event.
type Run struct {
	events chan Event
	err    error
}

// Events returns the run's progress stream. The channel closes when the run
// finishes, successfully or not.
func (r *Run) Events() <-chan Event {
	return r.events
}

// Err reports the fatal error that terminated the run, if any. Valid only
// after Events() is closed. A run that ends with a done event returns nil.
func (r *Run) Err() error {
	return r.err
}
