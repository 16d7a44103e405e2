package transfer

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a transfer failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindUpstreamStatus
	KindMissingHeader
	KindIO
	KindTransport
	KindInvalidPlan
)

func (k Kind) String() string {
	switch k {
	case KindUpstreamStatus:
		return "upstream status"
	case KindMissingHeader:
		return "missing or invalid header"
	case KindIO:
		return "io"
	case KindTransport:
		return "transport"
	case KindInvalidPlan:
		return "invalid plan"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every transfer component. Part is -1
// when the failure is not tied to a single range.
type Error struct {
	Kind       Kind
	Op         string
	Part       int
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Part >= 0 {
		fmt.Fprintf(&b, " (part %d)", e.Part)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": unexpected status code %d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op string, part int, err error) *Error {
	return &Error{Kind: kind, Op: op, Part: part, Err: err}
}

func statusError(op string, part int, code int) *Error {
	return &Error{Kind: KindUpstreamStatus, Op: op, Part: part, StatusCode: code}
}
