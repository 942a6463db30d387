package dispatch

import "time"

// Attempt is the record of one dispatch handed to a Recorder.
type Attempt struct {
	Method     Method
	URL        string
	StatusCode int
	Status     Status
	Err        string
	At         time.Time
}

// Recorder persists dispatch attempts (e.g. to a request journal). Recorder
// failures never fail the dispatch; they are logged and dropped.
type Recorder interface {
	Record(a Attempt) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(a Attempt) error

// Record calls the wrapped function.
func (f RecorderFunc) Record(a Attempt) error { return f(a) }
