// Package gluedbapi is a cursor-style client for a remote interactive
// statement-execution session. It submits SQL (or raw session scripts)
// through an injected Executor, classifies the terminal outcome and
// exposes the parsed result through forward-only and bulk fetch.
//
// Session establishment, credentials and the transport itself stay with
// the caller: anything implementing statement.Executor plugs in.
package gluedbapi

import (
	"errors"
	"log/slog"
	"time"

	"github.com/tuannm99/gluedbapi/cache"
	"github.com/tuannm99/gluedbapi/cursor"
	"github.com/tuannm99/gluedbapi/statement"
)

var (
	// ErrNilExecutor is returned when a connection is built without an
	// executor client.
	ErrNilExecutor = errors.New("gluedbapi: nil executor")
	// ErrNoSession is returned when a connection is built without a
	// session id.
	ErrNoSession = errors.New("gluedbapi: empty session id")
)

// Option customizes a Connection.
type Option func(*Connection)

// WithLogger sets the logger handed to cursors and statements.
func WithLogger(log *slog.Logger) Option {
	return func(c *Connection) {
		if log != nil {
			c.log = log
		}
	}
}

// WithCache enables a result cache on cursors created by the connection.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Connection) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithParseFailureMode sets the statement output parse-failure policy.
func WithParseFailureMode(mode statement.ParseFailureMode) Option {
	return func(c *Connection) { c.parseMode = mode }
}

// WithPollInterval sets the status poll interval used by Statement.Wait.
func WithPollInterval(d time.Duration) Option {
	return func(c *Connection) { c.pollInterval = d }
}

// Connection pairs an executor client with one remote session and acts
// as the cursor factory. It does not own the session: closing cursors
// never tears the session down.
type Connection struct {
	client       statement.Executor
	sessionID    string
	log          *slog.Logger
	cache        cache.Cache
	cacheTTL     time.Duration
	parseMode    statement.ParseFailureMode
	pollInterval time.Duration
}

// NewConnection wires an executor client to a session.
func NewConnection(client statement.Executor, sessionID string, opts ...Option) (*Connection, error) {
	if client == nil {
		return nil, ErrNilExecutor
	}
	if sessionID == "" {
		return nil, ErrNoSession
	}
	c := &Connection{
		client:    client,
		sessionID: sessionID,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Client returns the executor collaborator.
func (c *Connection) Client() statement.Executor { return c.client }

// SessionID returns the remote session identifier.
func (c *Connection) SessionID() string { return c.sessionID }

// Cursor creates a positional-row cursor on the connection.
func (c *Connection) Cursor() *cursor.Cursor {
	return cursor.New(c, c.cursorOptions()...)
}

// DictCursor creates a cursor whose rows are column-name→value mappings.
func (c *Connection) DictCursor() *cursor.DictCursor {
	return cursor.NewDict(c, c.cursorOptions()...)
}

func (c *Connection) cursorOptions() []cursor.Option {
	opts := []cursor.Option{
		cursor.WithLogger(c.log),
		cursor.WithParseFailureMode(c.parseMode),
		cursor.WithPollInterval(c.pollInterval),
	}
	if c.cache != nil {
		opts = append(opts, cursor.WithCache(c.cache, c.cacheTTL))
	}
	return opts
}
