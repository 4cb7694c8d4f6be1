package statement

import "context"

// Executor is the remote interactive session the adapter submits code to.
// Implementations wrap the real service client; tests use in-memory fakes.
type Executor interface {
	// RunStatement submits code to the session and returns the statement
	// envelope. The remote side is expected to block until the statement
	// reaches a terminal state, but callers must be prepared for a
	// non-terminal state to come back (see Statement.Wait).
	RunStatement(ctx context.Context, sessionID, code string) (Response, error)

	// GetStatement re-reads the current envelope for a statement.
	GetStatement(ctx context.Context, sessionID string, statementID int64) (Response, error)
}

// Response is the envelope returned by the remote session for both
// submission and status reads.
type Response struct {
	Statement Info `json:"Statement"`
}

// Info carries one statement's remote-side identity, state and output.
type Info struct {
	ID     int64  `json:"Id"`
	State  string `json:"State"`
	Output Output `json:"Output"`
}

// Output is the terminal payload of a statement.
type Output struct {
	Status     string `json:"Status"`
	Data       Data   `json:"Data"`
	ErrorName  string `json:"ErrorName"`
	ErrorValue string `json:"ErrorValue"`
}

// Data holds the textual result of a successful statement.
type Data struct {
	TextPlain string `json:"TextPlain"`
}
