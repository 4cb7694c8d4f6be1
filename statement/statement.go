package statement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultPollInterval is the gap between status reads in Wait.
const DefaultPollInterval = time.Second

// ParseFailureMode controls what happens when a statement finishes ok but
// its output cannot be decoded.
type ParseFailureMode int

const (
	// ParseFailureLog records the failure on the statement, logs it and
	// treats the run as having produced no structured result.
	ParseFailureLog ParseFailureMode = iota

	// ParseFailureRaise returns the failure from Run/Wait instead.
	ParseFailureRaise
)

// Option customizes a Statement at construction.
type Option func(*Statement)

// WithLogger sets the logger used for statement lifecycle events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Statement) {
		if log != nil {
			s.log = log
		}
	}
}

// WithParseFailureMode sets the output parse-failure policy.
func WithParseFailureMode(mode ParseFailureMode) Option {
	return func(s *Statement) { s.onParseFailure = mode }
}

// WithPollInterval sets the interval between status reads in Wait.
func WithPollInterval(d time.Duration) Option {
	return func(s *Statement) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// Statement owns one submitted statement's lifecycle: submit the code,
// classify the terminal state and extract the structured result.
// A Statement is built for a single Run and is not safe for concurrent use.
type Statement struct {
	client         Executor
	sessionID      string
	code           string
	log            *slog.Logger
	onParseFailure ParseFailureMode
	pollInterval   time.Duration

	id       int64
	state    State
	payload  *Payload
	parseErr *ParseError
}

// New builds a Statement for the given session and code text. The code is
// submitted as-is; use BuildCode/StripCommentHeader to prepare SQL first.
func New(client Executor, sessionID, code string, opts ...Option) *Statement {
	s := &Statement{
		client:       client,
		sessionID:    sessionID,
		code:         code,
		log:          slog.Default(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID is the remote-side statement id, zero until the first submit returns.
func (s *Statement) ID() int64 { return s.id }

// State is the last remote state observed for the statement.
func (s *Statement) State() State { return s.state }

// Code is the text that was (or will be) submitted.
func (s *Statement) Code() string { return s.code }

// Payload is the structured result recorded by a successful run, nil when
// the statement produced none.
func (s *Statement) Payload() *Payload { return s.payload }

// ParseFailure is the output decode failure recorded by the last run, nil
// when the output parsed cleanly or the statement never finished ok.
func (s *Statement) ParseFailure() *ParseError { return s.parseErr }

// Run submits the code once and classifies whatever state comes back as
// already resolved. The remote session is expected to block until the
// statement is terminal; when it does not, Run returns no payload and the
// caller can poll with Wait.
func (s *Statement) Run(ctx context.Context) (*Payload, error) {
	s.log.Debug("submitting statement", "session", s.sessionID)
	resp, err := s.client.RunStatement(ctx, s.sessionID, s.code)
	if err != nil {
		return nil, fmt.Errorf("gluedbapi: submit statement: %w", err)
	}
	return s.classify(resp)
}

// Refresh re-reads the statement's live envelope from the session.
func (s *Statement) Refresh(ctx context.Context) (Response, error) {
	resp, err := s.client.GetStatement(ctx, s.sessionID, s.id)
	if err != nil {
		return Response{}, fmt.Errorf("gluedbapi: refresh statement %s.%d: %w", s.sessionID, s.id, err)
	}
	return resp, nil
}

// Wait polls the session until the statement reaches a terminal state and
// classifies it the same way Run does. It is the retry/poll wrapper for
// sessions whose submit call returns before completion.
func (s *Statement) Wait(ctx context.Context) (*Payload, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		resp, err := s.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		st, err := ParseState(resp.Statement.State)
		if err != nil {
			return nil, err
		}
		if st.Terminal() {
			return s.classify(resp)
		}
		s.state = st

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Statement) classify(resp Response) (*Payload, error) {
	s.id = resp.Statement.ID

	st, err := ParseState(resp.Statement.State)
	if err != nil {
		return nil, err
	}
	s.state = st
	s.log.Debug("statement state", "session", s.sessionID, "statement", s.id, "state", st.String())

	switch st {
	case StateAvailable:
		return s.finish(resp.Statement.Output)
	case StateError:
		return nil, fmt.Errorf("%w: session %s statement %d", ErrInternal, s.sessionID, s.id)
	case StateCancelled, StateCancelling:
		return nil, &DatabaseError{SessionID: s.sessionID, StatementID: s.id, State: st}
	case StateWaiting, StateRunning:
		// Submission came back before the session settled. Run never
		// blocks on the session twice; callers poll with Wait.
		s.log.Warn("statement not terminal after submit",
			"session", s.sessionID, "statement", s.id, "state", st.String())
		return nil, nil
	}
	return nil, fmt.Errorf("gluedbapi: unhandled statement state %v", st)
}

func (s *Statement) finish(out Output) (*Payload, error) {
	if out.Status == "ok" {
		p, err := ParsePayload(out.Data.TextPlain)
		if err != nil {
			s.parseErr = &ParseError{Fragment: firstFragment(out.Data.TextPlain), Err: err}
			if s.onParseFailure == ParseFailureRaise {
				return nil, s.parseErr
			}
			s.log.Warn("could not parse statement output",
				"session", s.sessionID, "statement", s.id, "err", err)
			return nil, nil
		}
		s.payload = p
		return p, nil
	}

	// Recreating a table the session knows as a plain relation makes the
	// wrapper report "is not a view" even though the statement took
	// effect. Treat it as completed without structured output.
	if strings.Contains(out.ErrorValue, "is not a view") {
		s.log.Warn("session reported non-ok status, continuing",
			"session", s.sessionID, "statement", s.id,
			"status", out.Status, "error_name", out.ErrorName, "error_value", out.ErrorValue)
		return nil, nil
	}

	return nil, &DatabaseError{
		SessionID:   s.sessionID,
		StatementID: s.id,
		State:       StateAvailable,
		Status:      out.Status,
		ErrorName:   out.ErrorName,
		ErrorValue:  out.ErrorValue,
	}
}

func firstFragment(text string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(first)
}
