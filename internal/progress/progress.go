// Package progress defines the progress-reporting contract shared by long-running
// enhancement operations.
//
// A Func receives (percent, message) pairs. Percent is in [0,100] and never decreases
// within one logical operation; a successful operation always ends with 100. On
// failure the stream simply stops.
package progress

import "sync"

// Complete is the terminal message of every successful operation.
const Complete = "Complete!"

// Event is a single progress report.
type Event struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// Func receives progress reports. A nil Func is valid and discards everything.
type Func func(percent int, message string)

// Report calls fn if it is non-nil.
func (fn Func) Report(percent int, message string) {
	if fn != nil {
		fn(percent, message)
	}
}

// Monotonic wraps fn so that percent values are clamped to [0,100] and any report
// that would move backwards is dropped.
func Monotonic(fn Func) Func {
	if fn == nil {
		return nil
	}
	last := -1
	return func(percent int, message string) {
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		if percent < last {
			return
		}
		last = percent
		fn(percent, message)
	}
}

// Recorder collects events. It is safe for concurrent use so callers can hand its
// Func to an operation running on another goroutine.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Func returns a Func that appends to the recorder.
func (r *Recorder) Func() Func {
	return func(percent int, message string) {
		r.mu.Lock()
		r.events = append(r.events, Event{Percent: percent, Message: message})
		r.mu.Unlock()
	}
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Last returns the most recent event and false if nothing was recorded.
func (r *Recorder) Last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}
