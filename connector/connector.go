// Package connector talks to a business-application server over one of two
// interchangeable wire protocols.
//
// Obtain a connector with New, log in once to get a user id, then call
// Execute, ExecWorkflow and Report as needed. The connector holds no session
// state beyond the database name remembered at login; the caller keeps the
// (uid, password) pair and supplies it on every call.
package connector

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/chjbbs/oerplib/netrpc"
)

// Protocol identifiers accepted by New.
const (
	ProtocolHTTPRPC   = "http-rpc"
	ProtocolSocketRPC = "socket-rpc"

	DefaultProtocol = ProtocolHTTPRPC
)

// Report polling defaults: one second between status polls, two hundred
// polls before the job is abandoned.
const (
	DefaultPollInterval    = time.Second
	DefaultPollMaxAttempts = 200
)

// Connector is the operation set shared by both protocol variants.
// A connector instance is not safe for concurrent use: Login mutates the
// remembered database name read by every later call.
type Connector interface {
	// Login authenticates against the named database and returns the
	// user id supplied on all later calls. Fails with ErrLogin.
	Login(ctx context.Context, database, user, password string) (int64, error)

	// Execute invokes an arbitrary method on a named remote model,
	// passing the open-ended argument list through unchanged.
	// Fails with ErrExecute, carrying a Fault when the server sent one.
	Execute(ctx context.Context, uid int64, password, model, method string, args ...any) (any, error)

	// ExecWorkflow triggers a workflow signal on one remote object.
	// Every failure collapses to ErrWorkflow.
	ExecWorkflow(ctx context.Context, uid int64, password, model, signal string, objectID int64) error

	// Report renders a document for one object and blocks until the
	// server reports it ready, a poll fails, or the attempt ceiling is
	// reached. Fails with ErrReport.
	Report(ctx context.Context, uid int64, password string, req ReportRequest) (*Report, error)
}

// ReportRequest names one document to render.
type ReportRequest struct {
	Name     string
	Model    string
	ObjectID int64
	// Type selects the render format; empty means "pdf".
	Type string
	// Context is passed through to the server untouched.
	Context map[string]any
}

func (r ReportRequest) reportType() string {
	if r.Type == "" {
		return "pdf"
	}
	return r.Type
}

func (r ReportRequest) contextOrEmpty() map[string]any {
	if r.Context == nil {
		return map[string]any{}
	}
	return r.Context
}

// Report is a rendered document with the metadata the server attached.
type Report struct {
	State  bool
	Format string
	Data   []byte
	// Raw keeps the full status payload for callers that need
	// server-specific metadata beyond Format and Data.
	Raw map[string]any
}

// SleepFunc delays between report status polls. It returns early with the
// context error when ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type options struct {
	transport    http.RoundTripper
	basePath     string
	dialer       netrpc.Dialer
	pollInterval time.Duration
	maxAttempts  int
	sleep        SleepFunc
	log          zerolog.Logger
}

func defaultOptions() options {
	return options{
		basePath:     "xmlrpc",
		dialer:       &netrpc.TCPDialer{},
		pollInterval: DefaultPollInterval,
		maxAttempts:  DefaultPollMaxAttempts,
		sleep:        sleepWithContext,
		log:          zerolog.Nop(),
	}
}

// Option adjusts connector construction.
type Option func(*options)

// WithTransport sets the HTTP round tripper used by the http-rpc variant.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithBasePath overrides the URL base path of the http-rpc endpoints.
func WithBasePath(base string) Option {
	return func(o *options) { o.basePath = base }
}

// WithDialer sets the dialer used by the socket-rpc variant.
func WithDialer(d netrpc.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithPolling overrides the report poll interval and attempt ceiling.
func WithPolling(interval time.Duration, maxAttempts int) Option {
	return func(o *options) {
		if interval > 0 {
			o.pollInterval = interval
		}
		if maxAttempts > 0 {
			o.maxAttempts = maxAttempts
		}
	}
}

// WithSleep replaces the delay function used between report polls.
func WithSleep(sleep SleepFunc) Option {
	return func(o *options) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// New builds the connector variant registered under protocol. An empty
// protocol selects DefaultProtocol. The port arrives as text (flag or config
// value) and must parse as an integer; anything else fails with ErrConfig.
func New(server, port, protocol string, opts ...Option) (Connector, error) {
	if protocol == "" {
		protocol = DefaultProtocol
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	switch protocol {
	case ProtocolHTTPRPC, ProtocolSocketRPC:
	default:
		return nil, fmt.Errorf(
			"%w: unsupported protocol %q, choose one of: %s, %s",
			ErrConfig, protocol, ProtocolHTTPRPC, ProtocolSocketRPC,
		)
	}

	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("%w: port %q is invalid, an integer is required", ErrConfig, port)
	}

	if protocol == ProtocolSocketRPC {
		return newSocketConnector(server, p, o), nil
	}
	return newHTTPConnector(server, p, o)
}
