package connector

import (
	"context"
	"errors"
	"fmt"

	"github.com/kolo/xmlrpc"
	"github.com/rs/zerolog"
)

// xmlrpcCaller is the single method used from the underlying XML-RPC client,
// kept narrow so tests can substitute doubles per service handle.
type xmlrpcCaller interface {
	Call(serviceMethod string, args any, reply any) error
}

// httpConnector implements the contract over HTTP method-call encoding with
// three long-lived handles, one per logical service endpoint.
type httpConnector struct {
	server string
	port   int
	url    string

	object xmlrpcCaller
	report xmlrpcCaller
	common xmlrpcCaller

	database string

	poll pollConfig
	log  zerolog.Logger
}

func newHTTPConnector(server string, port int, o options) (*httpConnector, error) {
	url := fmt.Sprintf("http://%s:%d/%s", server, port, o.basePath)

	c := &httpConnector{
		server: server,
		port:   port,
		url:    url,
		poll:   pollConfig{interval: o.pollInterval, maxAttempts: o.maxAttempts, sleep: o.sleep},
		log:    o.log.With().Str("protocol", ProtocolHTTPRPC).Logger(),
	}

	for _, ep := range []struct {
		path   string
		target *xmlrpcCaller
	}{
		{"object", &c.object},
		{"report", &c.report},
		{"common", &c.common},
	} {
		client, err := xmlrpc.NewClient(url+"/"+ep.path, o.transport)
		if err != nil {
			return nil, fmt.Errorf("%w: endpoint %s/%s: %v", ErrConfig, url, ep.path, err)
		}
		*ep.target = client
	}
	return c, nil
}

func (c *httpConnector) Login(ctx context.Context, database, user, password string) (int64, error) {
	c.database = database
	c.log.Debug().Str("database", database).Str("user", user).Msg("login")

	var uid int64
	if err := c.common.Call("login", []any{database, user, password}, &uid); err != nil {
		var fault xmlrpc.FaultError
		if errors.As(err, &fault) {
			return 0, fmt.Errorf("%w: fault code %d", ErrLogin, fault.Code)
		}
		return 0, fmt.Errorf("%w: %v", ErrLogin, err)
	}
	if uid == 0 {
		return 0, fmt.Errorf("%w: authentication rejected by server", ErrLogin)
	}
	return uid, nil
}

func (c *httpConnector) Execute(ctx context.Context, uid int64, password, model, method string, args ...any) (any, error) {
	c.log.Debug().Str("model", model).Str("method", method).Int("args", len(args)).Msg("execute")

	callArgs := append([]any{c.database, uid, password, model, method}, args...)
	var result any
	if err := c.object.Call("execute", callArgs, &result); err != nil {
		var fault xmlrpc.FaultError
		if errors.As(err, &fault) {
			return nil, fmt.Errorf("%w: %w", ErrExecute, &Fault{Code: fault.Code, Message: fault.String})
		}
		return nil, fmt.Errorf("%w: %v", ErrExecute, err)
	}
	return result, nil
}

func (c *httpConnector) ExecWorkflow(ctx context.Context, uid int64, password, model, signal string, objectID int64) error {
	c.log.Debug().Str("model", model).Str("signal", signal).Int64("object_id", objectID).Msg("exec_workflow")

	var result any
	if err := c.object.Call("exec_workflow", []any{c.database, uid, password, model, signal, objectID}, &result); err != nil {
		return ErrWorkflow
	}
	return nil
}

// xmlrpcReportStatus is the status payload of one report job. The state
// member stays unset while the server renders; result carries the document
// base64-encoded once ready.
type xmlrpcReportStatus struct {
	State  bool   `xmlrpc:"state"`
	Result string `xmlrpc:"result"`
	Format string `xmlrpc:"format"`
}

func (c *httpConnector) Report(ctx context.Context, uid int64, password string, req ReportRequest) (*Report, error) {
	c.log.Debug().Str("report", req.Name).Str("model", req.Model).Int64("object_id", req.ObjectID).Msg("report")

	data := map[string]any{
		"model":       req.Model,
		"id":          req.ObjectID,
		"report_type": req.reportType(),
	}

	var jobID any
	err := c.report.Call("report",
		[]any{c.database, uid, password, req.Name, []any{req.ObjectID}, data, req.contextOrEmpty()},
		&jobID)
	if err != nil {
		var fault xmlrpc.FaultError
		if errors.As(err, &fault) {
			return nil, fmt.Errorf("%w: %w", ErrReport, &Fault{Code: fault.Code, Message: fault.String})
		}
		return nil, fmt.Errorf("%w: %v", ErrReport, err)
	}

	payload, err := pollReport(ctx, c.poll, func() (any, bool, error) {
		var status xmlrpcReportStatus
		if err := c.report.Call("report_get", []any{c.database, uid, password, jobID}, &status); err != nil {
			return nil, false, err
		}
		return status, status.State, nil
	})
	if err != nil {
		return nil, err
	}

	status := payload.(xmlrpcReportStatus)
	return reportFromPayload(map[string]any{
		"state":  status.State,
		"result": status.Result,
		"format": status.Format,
	}), nil
}
