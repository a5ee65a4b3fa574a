package connector

import (
	"errors"
	"fmt"
)

// One sentinel per failure kind. Operations always wrap these with %w so
// callers can branch with errors.Is regardless of protocol variant.
var (
	ErrConfig   = errors.New("connector: invalid configuration")
	ErrLogin    = errors.New("connector: login failed")
	ErrExecute  = errors.New("connector: execute query failed")
	ErrWorkflow = errors.New("connector: workflow query has failed")
	ErrReport   = errors.New("connector: report query failed")
)

// Fault carries the fault code and message returned by the remote server.
// Retrieve it with errors.As from an ErrExecute or ErrReport failure.
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	if f.Message == "" {
		return fmt.Sprintf("fault %d", f.Code)
	}
	return fmt.Sprintf("fault %d: %s", f.Code, f.Message)
}
