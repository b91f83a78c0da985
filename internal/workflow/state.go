/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package workflow

// State is a step of an operation run.
type State int

const (
	StateBuilding State = iota
	StateComparing
	StateUnchanged
	StateWriting
	StateSigning
	StateSubmitting
	StateApplied
	StateFailed
)

var stateNames = [...]string{
	StateBuilding:   "Building",
	StateComparing:  "Comparing",
	StateUnchanged:  "Unchanged",
	StateWriting:    "Writing",
	StateSigning:    "Signing",
	StateSubmitting: "Submitting",
	StateApplied:    "Applied",
	StateFailed:     "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Run records the states an operation went through.
type Run struct {
	op     Operation
	states []State
}

func newRun(op Operation) *Run {
	return &Run{op: op}
}

func (r *Run) enter(s State) {
	if n := len(r.states); n > 0 {
		logger.Debugf("%s: %s -> %s", r.op, r.states[n-1], s)
	} else {
		logger.Debugf("%s: -> %s", r.op, s)
	}
	r.states = append(r.states, s)
}

// Current returns the latest state, or StateBuilding for a run that has not
// started.
func (r *Run) Current() State {
	if len(r.states) == 0 {
		return StateBuilding
	}
	return r.states[len(r.states)-1]
}

// Trace returns a copy of the states entered so far.
func (r *Run) Trace() []State {
	return append([]State(nil), r.states...)
}
