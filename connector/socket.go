package connector

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/chjbbs/oerplib/netrpc"
)

// socketConnector implements the contract over the framed socket protocol.
// Every operation runs one full connect/send/receive/close cycle, including
// each status poll inside Report.
type socketConnector struct {
	server string
	port   int
	addr   string

	dialer netrpc.Dialer

	database string

	poll pollConfig
	log  zerolog.Logger
}

func newSocketConnector(server string, port int, o options) *socketConnector {
	return &socketConnector{
		server: server,
		port:   port,
		addr:   net.JoinHostPort(server, strconv.Itoa(port)),
		dialer: o.dialer,
		poll:   pollConfig{interval: o.pollInterval, maxAttempts: o.maxAttempts, sleep: o.sleep},
		log:    o.log.With().Str("protocol", ProtocolSocketRPC).Logger(),
	}
}

// request runs one request cycle: dial, send the (service, method, args...)
// tuple, read the single reply, close on every exit path.
func (c *socketConnector) request(ctx context.Context, service, method string, args ...any) (any, error) {
	c.log.Debug().Str("service", service).Str("method", method).Msg("request")

	conn, err := c.dialer.Dial(ctx, c.addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	tuple := append([]any{service, method}, args...)
	if err := conn.Send(tuple); err != nil {
		return nil, err
	}
	return conn.Receive()
}

func (c *socketConnector) Login(ctx context.Context, database, user, password string) (int64, error) {
	c.database = database

	result, err := c.request(ctx, "common", "login", database, user, password)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLogin, err)
	}
	uid, ok := asInt64(result)
	if !ok || uid == 0 {
		return 0, fmt.Errorf("%w: authentication rejected by server", ErrLogin)
	}
	return uid, nil
}

func (c *socketConnector) Execute(ctx context.Context, uid int64, password, model, method string, args ...any) (any, error) {
	callArgs := append([]any{c.database, uid, password, model, method}, args...)
	result, err := c.request(ctx, "object", "execute", callArgs...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecute, err)
	}
	return result, nil
}

func (c *socketConnector) ExecWorkflow(ctx context.Context, uid int64, password, model, signal string, objectID int64) error {
	_, err := c.request(ctx, "object", "exec_workflow", c.database, uid, password, model, signal, objectID)
	if err != nil {
		return ErrWorkflow
	}
	return nil
}

func (c *socketConnector) Report(ctx context.Context, uid int64, password string, req ReportRequest) (*Report, error) {
	data := map[string]any{
		"model":       req.Model,
		"id":          req.ObjectID,
		"report_type": req.reportType(),
	}

	jobID, err := c.request(ctx, "report", "report",
		c.database, uid, password, req.Name, []any{req.ObjectID}, data, req.contextOrEmpty())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReport, err)
	}

	payload, err := pollReport(ctx, c.poll, func() (any, bool, error) {
		result, err := c.request(ctx, "report", "report_get", c.database, uid, password, jobID)
		if err != nil {
			return nil, false, err
		}
		status, ok := result.(map[string]any)
		if !ok {
			return nil, false, fmt.Errorf("unexpected report status payload %T", result)
		}
		return status, truthy(status["state"]), nil
	})
	if err != nil {
		return nil, err
	}

	return reportFromPayload(payload.(map[string]any)), nil
}

// asInt64 normalizes the user id across decoders: the socket envelope decodes
// numbers as float64, doubles tend to hand back native ints.
func asInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case float64:
		return int64(val), true
	default:
		return 0, false
	}
}
