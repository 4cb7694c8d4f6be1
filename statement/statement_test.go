package statement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeExecutor is an in-memory Executor. RunStatement returns runResp;
// GetStatement pops from statuses so tests can script poll sequences.
type fakeExecutor struct {
	runResp    Response
	runErr     error
	runCalls   int
	gotSession string
	gotCode    string

	statuses []Response
	getErr   error
	getCalls int
}

func (f *fakeExecutor) RunStatement(_ context.Context, sessionID, code string) (Response, error) {
	f.runCalls++
	f.gotSession = sessionID
	f.gotCode = code
	return f.runResp, f.runErr
}

func (f *fakeExecutor) GetStatement(_ context.Context, _ string, _ int64) (Response, error) {
	f.getCalls++
	if f.getErr != nil {
		return Response{}, f.getErr
	}
	resp := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return resp, nil
}

func availableOK(id int64, text string) Response {
	return Response{Statement: Info{
		ID:     id,
		State:  "AVAILABLE",
		Output: Output{Status: "ok", Data: Data{TextPlain: text}},
	}}
}

func TestRunAvailableOK(t *testing.T) {
	exec := &fakeExecutor{runResp: availableOK(7, samplePayload)}
	s := New(exec, "sess-1", "SqlWrapper2.execute('''select 1''')")

	p, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, int64(2), p.Rowcount)

	require.Equal(t, int64(7), s.ID())
	require.Equal(t, StateAvailable, s.State())
	require.Same(t, p, s.Payload())
	require.Nil(t, s.ParseFailure())
	require.Equal(t, "sess-1", exec.gotSession)
	require.Equal(t, "SqlWrapper2.execute('''select 1''')", exec.gotCode)
}

func TestRunSubmitError(t *testing.T) {
	exec := &fakeExecutor{runErr: errors.New("connection reset")}
	s := New(exec, "sess-1", "code")

	_, err := s.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection reset")
}

func TestRunParseFailureLogged(t *testing.T) {
	exec := &fakeExecutor{runResp: availableOK(3, "not json\nalso not json")}
	s := New(exec, "sess-1", "code")

	p, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Nil(t, p)

	pe := s.ParseFailure()
	require.NotNil(t, pe)
	require.Equal(t, "not json", pe.Fragment)
}

func TestRunParseFailureRaised(t *testing.T) {
	exec := &fakeExecutor{runResp: availableOK(3, "not json")}
	s := New(exec, "sess-1", "code", WithParseFailureMode(ParseFailureRaise))

	_, err := s.Run(context.Background())
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "not json", pe.Fragment)
}

func TestRunNonOKRaisesDatabaseError(t *testing.T) {
	exec := &fakeExecutor{runResp: Response{Statement: Info{
		ID:    5,
		State: "AVAILABLE",
		Output: Output{
			Status:     "error",
			ErrorName:  "AnalysisException",
			ErrorValue: "Table or view not found: missing_table",
		},
	}}}
	s := New(exec, "sess-2", "code")

	_, err := s.Run(context.Background())
	require.Error(t, err)

	var dbErr *DatabaseError
	require.ErrorAs(t, err, &dbErr)
	require.Equal(t, "error", dbErr.Status)
	require.Equal(t, "AnalysisException", dbErr.ErrorName)
	require.Equal(t, "Table or view not found: missing_table", dbErr.ErrorValue)
	require.Equal(t, "sess-2", dbErr.SessionID)
	require.Equal(t, int64(5), dbErr.StatementID)
}

func TestRunNonViewErrorSuppressed(t *testing.T) {
	exec := &fakeExecutor{runResp: Response{Statement: Info{
		ID:    5,
		State: "AVAILABLE",
		Output: Output{
			Status:     "error",
			ErrorName:  "AnalysisException",
			ErrorValue: "my_table is not a view",
		},
	}}}
	s := New(exec, "sess-2", "code")

	p, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Nil(t, p)
	require.Equal(t, StateAvailable, s.State())
}

func TestRunErrorState(t *testing.T) {
	exec := &fakeExecutor{runResp: Response{Statement: Info{ID: 9, State: "ERROR"}}}
	s := New(exec, "sess-3", "code")

	_, err := s.Run(context.Background())
	require.ErrorIs(t, err, ErrInternal)
}

func TestRunCancelled(t *testing.T) {
	for _, state := range []string{"CANCELLED", "CANCELLING"} {
		t.Run(state, func(t *testing.T) {
			exec := &fakeExecutor{runResp: Response{Statement: Info{ID: 11, State: state}}}
			s := New(exec, "sess-4", "code")

			_, err := s.Run(context.Background())
			require.Error(t, err)

			var dbErr *DatabaseError
			require.ErrorAs(t, err, &dbErr)
			require.Equal(t, "sess-4", dbErr.SessionID)
			require.Equal(t, int64(11), dbErr.StatementID)
			require.Contains(t, err.Error(), "sess-4")
			require.Contains(t, err.Error(), "11")
		})
	}
}

func TestRunUnknownState(t *testing.T) {
	exec := &fakeExecutor{runResp: Response{Statement: Info{ID: 1, State: "MYSTERY"}}}
	s := New(exec, "sess-5", "code")

	_, err := s.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "MYSTERY")
}

func TestRunNonTerminalReturnsNoPayload(t *testing.T) {
	exec := &fakeExecutor{runResp: Response{Statement: Info{ID: 2, State: "RUNNING"}}}
	s := New(exec, "sess-6", "code")

	p, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Nil(t, p)
	require.Equal(t, StateRunning, s.State())
}

func TestWaitPollsUntilTerminal(t *testing.T) {
	exec := &fakeExecutor{
		runResp: Response{Statement: Info{ID: 2, State: "RUNNING"}},
		statuses: []Response{
			{Statement: Info{ID: 2, State: "RUNNING"}},
			{Statement: Info{ID: 2, State: "RUNNING"}},
			availableOK(2, samplePayload),
		},
	}
	s := New(exec, "sess-7", "code", WithPollInterval(time.Millisecond))

	p, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Nil(t, p)

	p, err = s.Wait(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, int64(2), p.Rowcount)
	require.Equal(t, StateAvailable, s.State())
	require.Equal(t, 3, exec.getCalls)
}

func TestWaitContextCancelled(t *testing.T) {
	exec := &fakeExecutor{
		statuses: []Response{{Statement: Info{ID: 2, State: "RUNNING"}}},
	}
	s := New(exec, "sess-7", "code", WithPollInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRefresh(t *testing.T) {
	exec := &fakeExecutor{
		runResp:  availableOK(4, samplePayload),
		statuses: []Response{availableOK(4, samplePayload)},
	}
	s := New(exec, "sess-8", "code")

	_, err := s.Run(context.Background())
	require.NoError(t, err)

	resp, err := s.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(4), resp.Statement.ID)
	require.Equal(t, "AVAILABLE", resp.Statement.State)
}
