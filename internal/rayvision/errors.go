package rayvision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/five82/rayvision/internal/schema"
)

// Envelope codes with dedicated handling.
const (
	CodeSuccess        = 200
	CodeParameterError = 601
)

// ValidationError and SchemaNotFoundError are produced by the payload
// validator before any request is signed.
type (
	ValidationError     = schema.ValidationError
	SchemaNotFoundError = schema.SchemaNotFoundError
	FieldError          = schema.FieldError
)

// SigningError reports missing credential or header material. It is a
// programming or configuration error.
type SigningError struct {
	Reason string
	Err    error
}

func (e *SigningError) Error() string {
	if e.Err == nil {
		return "signing: " + e.Reason
	}
	return fmt.Sprintf("signing: %s: %v", e.Reason, e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// Transport failure kinds.
const (
	KindTimeout   = "timeout"
	KindCancelled = "cancelled"
	KindTransport = "transport"
	KindDecode    = "decode"
)

// TransportError reports a failed round trip or a response that is not a
// well-formed envelope. The underlying cause is kept intact.
type TransportError struct {
	Kind   string
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("transport error (%s): POST %s: status %d: %v", e.Kind, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("transport error (%s): POST %s: %v", e.Kind, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request ran out of time.
func (e *TransportError) Timeout() bool {
	return e.Kind == KindTimeout
}

// ParameterError is returned for envelope code 601: the server rejected the
// request parameters.
type ParameterError struct {
	Message string
	Payload map[string]any
	URL     string
}

func (e *ParameterError) Error() string {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", e.Payload))
	}
	return fmt.Sprintf("Error code: %d, Error message: Request parameter error (%s), Post data: %s, URL: %s",
		CodeParameterError, e.Message, data, e.URL)
}

// APIError is returned for any envelope code other than 200 and 601.
type APIError struct {
	Code    int
	Message string
	URL     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Error code: %d, Error message: %s, URL: %s", e.Code, e.Message, e.URL)
}

func newTransportError(ctx context.Context, url string, err error) *TransportError {
	return &TransportError{Kind: transportKind(ctx, err), URL: url, Err: err}
}

func transportKind(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if ctx != nil {
		switch ctx.Err() {
		case context.Canceled:
			return KindCancelled
		case context.DeadlineExceeded:
			return KindTimeout
		}
	}
	return KindTransport
}
