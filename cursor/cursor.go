package cursor

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/tuannm99/gluedbapi/cache"
	"github.com/tuannm99/gluedbapi/statement"
)

var (
	// ErrCursorClosed is returned for any operation on a closed cursor.
	ErrCursorClosed = errors.New("gluedbapi: cursor is closed")
	// ErrCursorAlreadyClosed is returned when a cursor is closed twice.
	ErrCursorAlreadyClosed = errors.New("gluedbapi: cursor already closed")
	// ErrCursorAlreadyRunning is returned when Execute is re-entered
	// while a statement is still in flight.
	ErrCursorAlreadyRunning = errors.New("gluedbapi: cursor already running")
)

// Conn is the owning connection seen from a cursor: the executor client
// plus the remote session the cursor submits into.
type Conn interface {
	Client() statement.Executor
	SessionID() string
}

// Option customizes a Cursor at construction.
type Option func(*Cursor)

// WithLogger sets the logger used for cursor and statement events.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cursor) {
		if log != nil {
			c.log = log
		}
	}
}

// WithCache enables a read-through result cache for statements that
// produce a result set. ttl <= 0 means entries never expire.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Cursor) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithParseFailureMode sets the statement output parse-failure policy.
func WithParseFailureMode(mode statement.ParseFailureMode) Option {
	return func(c *Cursor) { c.parseMode = mode }
}

// WithPollInterval sets the poll interval of statements created by the
// cursor (used by Statement.Wait).
func WithPollInterval(d time.Duration) Option {
	return func(c *Cursor) { c.pollInterval = d }
}

// Cursor runs one execute-then-fetch cycle at a time against a remote
// session. It holds at most one in-flight statement; the guard is
// cooperative, not a lock, so concurrent use of a single cursor needs
// external synchronization.
type Cursor struct {
	name         string
	conn         Conn
	log          *slog.Logger
	cache        cache.Cache
	cacheTTL     time.Duration
	parseMode    statement.ParseFailureMode
	pollInterval time.Duration

	stmt     *statement.Statement
	results  *ResultSet
	sql      string
	running  bool
	closed   bool
	fetchIdx int
}

// New creates a cursor over the given connection.
func New(conn Conn, opts ...Option) *Cursor {
	c := &Cursor{
		name: newCursorID(),
		conn: conn,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("cursor", c.name)
	return c
}

// Name is the cursor's unique identifier.
func (c *Cursor) Name() string { return c.name }

// Closed reports whether Close was called.
func (c *Cursor) Closed() bool { return c.closed }

// Statement is the cursor's current statement, nil before the first
// Execute. Replaced on every Execute that submits.
func (c *Cursor) Statement() *statement.Statement { return c.stmt }

// Execute submits the SQL text and replaces the cursor's result set with
// the parsed outcome. It returns the parsed payload, nil when the
// statement completed without structured output. Bind parameters are not
// supported by the remote wrapper and are ignored.
func (c *Cursor) Execute(ctx context.Context, query string, bindings ...any) (*statement.Payload, error) {
	if c.closed {
		return nil, ErrCursorClosed
	}
	if c.running {
		return nil, ErrCursorAlreadyRunning
	}
	if len(bindings) > 0 {
		c.log.Debug("ignoring bind parameters", "count", len(bindings))
	}

	c.sql = statement.StripCommentHeader(query)
	code := statement.BuildCode(c.sql)

	if c.cache != nil {
		key := cache.Key(c.conn.SessionID(), code)
		p, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			c.log.Warn("result cache read failed", "err", err)
		case ok:
			c.log.Debug("result cache hit")
			c.results = newResultSet(p)
			c.fetchIdx = 0
			return p, nil
		}
	}

	c.running = true
	defer func() { c.running = false }()

	c.stmt = statement.New(c.conn.Client(), c.conn.SessionID(), code,
		statement.WithLogger(c.log),
		statement.WithParseFailureMode(c.parseMode),
		statement.WithPollInterval(c.pollInterval),
	)

	p, err := c.stmt.Run(ctx)
	if err != nil {
		// A failed run leaves the previous result set readable.
		return nil, err
	}

	c.fetchIdx = 0
	if p == nil {
		c.results = nil
		return nil, nil
	}
	c.results = newResultSet(p)

	if c.cache != nil && len(p.Description) > 0 {
		key := cache.Key(c.conn.SessionID(), code)
		if err := c.cache.Set(ctx, key, p, c.cacheTTL); err != nil {
			c.log.Warn("result cache write failed", "err", err)
		}
	}
	return p, nil
}

// FetchOne returns the next row in positional form and advances the
// forward-only index. ok is false once the result set is exhausted or
// when no execute has produced one; an exhausted result set does not
// rewind, only a new Execute resets the index. A row whose values are
// all nil is still a row: presence is signalled by ok, never by the
// row's content.
func (c *Cursor) FetchOne() (row []any, ok bool, err error) {
	if c.closed {
		return nil, false, ErrCursorClosed
	}
	if c.results == nil {
		return nil, false, nil
	}
	row, ok = c.results.Row(c.fetchIdx)
	if !ok {
		return nil, false, nil
	}
	c.fetchIdx++
	return row, true, nil
}

// FetchAll returns every row in result order without touching the
// forward-only index. A cursor with no result set yields nil, not an
// error.
func (c *Cursor) FetchAll() ([][]any, error) {
	if c.closed {
		return nil, ErrCursorClosed
	}
	if c.results == nil {
		return nil, nil
	}
	rows := make([][]any, 0, c.results.Len())
	for i := 0; ; i++ {
		row, ok := c.results.Row(i)
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// RowCount is the reported row count of the last result; ok is false
// when no execute has produced a result set yet.
func (c *Cursor) RowCount() (n int64, ok bool) {
	if c.results == nil {
		return 0, false
	}
	return c.results.RowCount(), true
}

// Columns returns the column names of the last result, nil when there is
// no result set or it carries no description.
func (c *Cursor) Columns() []string {
	if c.results == nil {
		return nil
	}
	return c.results.Columns()
}

// Description returns the (name, type) descriptors of the last result.
func (c *Cursor) Description() []statement.Column {
	if c.results == nil {
		return nil
	}
	return c.results.Description()
}

// Close marks the cursor permanently closed. The session and transport
// belong to the connection and are not touched.
func (c *Cursor) Close() error {
	if c.closed {
		return ErrCursorAlreadyClosed
	}
	c.closed = true
	return nil
}

// AdapterResponse packages a statement's live remote status with the SQL
// text that produced it, independent of the cached terminal result.
type AdapterResponse struct {
	Message     string
	Code        string
	SessionID   string
	StatementID int64
	State       string
}

// Response re-reads the current statement's remote status on demand.
// It returns nil when the cursor has not executed anything yet.
func (c *Cursor) Response(ctx context.Context) (*AdapterResponse, error) {
	if c.closed {
		return nil, ErrCursorClosed
	}
	if c.stmt == nil {
		return nil, nil
	}
	resp, err := c.stmt.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return &AdapterResponse{
		Message:     resp.Statement.State,
		Code:        c.sql,
		SessionID:   c.conn.SessionID(),
		StatementID: resp.Statement.ID,
		State:       resp.Statement.State,
	}, nil
}

func newCursorID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
