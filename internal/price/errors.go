package price

import (
	"context"
	"errors"
	"fmt"
	"net"
)

type FetchErrorKind int

const (
	KindUnavailable FetchErrorKind = iota
	KindTimeout
	KindParse
)

func (k FetchErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindParse:
		return "parse_error"
	default:
		return "unavailable"
	}
}

// FetchError is the only failure a Source reports. The resolver recovers from it.
type FetchError struct {
	Source string
	Kind   FetchErrorKind
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func Unavailable(source string, err error) *FetchError {
	return &FetchError{Source: source, Kind: KindUnavailable, Err: err}
}

func ParseError(source string, err error) *FetchError {
	return &FetchError{Source: source, Kind: KindParse, Err: err}
}

// Classify turns a transport error into a FetchError, detecting deadlines and
// network timeouts.
func Classify(source string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		(errors.As(err, &ne) && ne.Timeout()) {
		return &FetchError{Source: source, Kind: KindTimeout, Err: err}
	}
	return Unavailable(source, err)
}
