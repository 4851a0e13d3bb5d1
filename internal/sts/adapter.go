// Package sts sends canonical records to the STS risk calculator over its
// form endpoint or its websocket endpoint.
package sts

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sts-risk-cli/internal/model"
	"github.com/sells-group/sts-risk-cli/internal/record"
)

// Adapter sends one record and returns the unparsed reply.
type Adapter interface {
	Name() string
	Send(ctx context.Context, rec *record.Canonical) (model.Reply, error)
}

// ErrProtocolTimeout means the stream endpoint never produced a usable reply
// within the read budget.
var ErrProtocolTimeout = eris.New("sts: no usable reply within read attempts")

// TransportError is a failed exchange with the calculator: a non-success
// HTTP status, a failed websocket dial, or a broken connection.
type TransportError struct {
	Adapter    string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("sts: %s transport: status %d: %v", e.Adapter, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("sts: %s transport: status %d", e.Adapter, e.StatusCode)
	default:
		return fmt.Sprintf("sts: %s transport: %v", e.Adapter, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }
