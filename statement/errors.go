package statement

import (
	"errors"
	"fmt"
)

// ErrInternal is returned when the remote session ends a statement in the
// ERROR state, which means the session itself broke rather than the SQL.
var ErrInternal = errors.New("gluedbapi: internal statement failure")

// DatabaseError is a classified non-ok outcome reported by the remote
// session for a statement that did run.
type DatabaseError struct {
	SessionID   string
	StatementID int64
	State       State
	Status      string
	ErrorName   string
	ErrorValue  string
}

func (e *DatabaseError) Error() string {
	switch e.State {
	case StateCancelled, StateCancelling:
		return fmt.Sprintf("gluedbapi: statement %s.%d cancelled", e.SessionID, e.StatementID)
	default:
		return fmt.Sprintf("gluedbapi: session %s statement %d returned %q, %s: %s",
			e.SessionID, e.StatementID, e.Status, e.ErrorName, e.ErrorValue)
	}
}

// ParseError reports that a statement finished ok but its textual output
// could not be decoded as a result payload.
type ParseError struct {
	Fragment string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gluedbapi: parse statement output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
