package statement

import "fmt"

// State is the remote lifecycle state of a submitted statement.
type State int

const (
	StateWaiting State = iota
	StateRunning
	StateAvailable
	StateCancelling
	StateCancelled
	StateError
)

var stateNames = map[State]string{
	StateWaiting:    "WAITING",
	StateRunning:    "RUNNING",
	StateAvailable:  "AVAILABLE",
	StateCancelling: "CANCELLING",
	StateCancelled:  "CANCELLED",
	StateError:      "ERROR",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether the remote side will not move the statement
// to another state. CANCELLING is not terminal; the remote session still
// transitions it to CANCELLED.
func (s State) Terminal() bool {
	switch s {
	case StateAvailable, StateCancelled, StateError:
		return true
	case StateWaiting, StateRunning, StateCancelling:
		return false
	}
	return false
}

// ParseState maps the remote state string onto a State. Unknown strings
// are an error so a new remote state can never be misread as WAITING.
func ParseState(s string) (State, error) {
	switch s {
	case "WAITING":
		return StateWaiting, nil
	case "RUNNING":
		return StateRunning, nil
	case "AVAILABLE":
		return StateAvailable, nil
	case "CANCELLING":
		return StateCancelling, nil
	case "CANCELLED":
		return StateCancelled, nil
	case "ERROR":
		return StateError, nil
	}
	return StateWaiting, fmt.Errorf("gluedbapi: unknown statement state %q", s)
}
