package picker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// State is the stage a picker session is in.
type State string

const (
	AwaitingHour   State = "awaiting_hour"
	AwaitingMinute State = "awaiting_minute"
	Completed      State = "completed"
	Cancelled      State = "cancelled"
)

// ErrNoSession is returned by Feed when the user has no open session.
var ErrNoSession = errors.New("no time picker session")

// ValidationError means the input was rejected and the session stays at Stage.
type ValidationError struct {
	Stage  State
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input %q at %s: %s", e.Input, e.Stage, e.Reason)
}

// Step is the picker state after one input. Hour and Minute are set once known.
type Step struct {
	State  State
	Hour   int
	Minute int
}

type session struct {
	stage State
	hour  int
}

// FSM collects an (hour, minute) pair per user over two inputs.
type FSM struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

// New returns an FSM with no open sessions.
func New() *FSM {
	return &FSM{sessions: make(map[int64]*session)}
}

// Start opens a session at AwaitingHour, replacing any open one.
func (f *FSM) Start(userID int64) Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[userID] = &session{stage: AwaitingHour}
	return Step{State: AwaitingHour}
}

func (f *FSM) Active(userID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[userID]
	return ok
}

// Cancel drops the user's session and reports whether one was open.
func (f *FSM) Cancel(userID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[userID]
	delete(f.sessions, userID)
	return ok
}

// Feed advances the user's session. A *ValidationError leaves the session where it was.
// Completed and Cancelled steps have already removed the session.
func (f *FSM) Feed(userID int64, input string) (Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sess, ok := f.sessions[userID]
	if !ok {
		return Step{}, ErrNoSession
	}

	input = strings.TrimSpace(input)
	if isCancel(input) {
		delete(f.sessions, userID)
		return Step{State: Cancelled}, nil
	}

	switch sess.stage {
	case AwaitingHour:
		hour, err := parseBounded(input, 23)
		if err != nil {
			return Step{State: AwaitingHour}, &ValidationError{Stage: AwaitingHour, Input: input, Reason: err.Error()}
		}
		sess.hour = hour
		sess.stage = AwaitingMinute
		return Step{State: AwaitingMinute, Hour: hour}, nil
	case AwaitingMinute:
		minute, err := parseBounded(input, 59)
		if err != nil {
			return Step{State: AwaitingMinute, Hour: sess.hour}, &ValidationError{Stage: AwaitingMinute, Input: input, Reason: err.Error()}
		}
		delete(f.sessions, userID)
		return Step{State: Completed, Hour: sess.hour, Minute: minute}, nil
	default:
		delete(f.sessions, userID)
		return Step{}, ErrNoSession
	}
}

func isCancel(input string) bool {
	lower := strings.ToLower(input)
	if idx := strings.Index(lower, "@"); idx >= 0 {
		lower = lower[:idx]
	}
	return lower == "cancel" || lower == "/cancel"
}

func parseBounded(raw string, max int) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if v < 0 || v > max {
		return 0, fmt.Errorf("must be between 0 and %d", max)
	}
	return v, nil
}
