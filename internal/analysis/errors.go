package analysis

import (
	"errors"
	"fmt"
)

// Kind classifies a failed analysis request.
type Kind int

const (
	// KindTransport covers connection, DNS, timeout and body read failures.
	KindTransport Kind = iota + 1
	// KindStatus is any HTTP status other than 200.
	KindStatus
	// KindPayload is a 200 response whose body is empty or not an object/array.
	KindPayload
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindPayload:
		return "payload"
	default:
		return "unknown"
	}
}

// RequestError is returned by Client.Analyze for every failed request.
type RequestError struct {
	Kind       Kind
	StatusCode int // set for KindStatus and KindPayload
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("analysis request failed (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("analysis request failed (%s): %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or 0 when err is not a *RequestError.
func KindOf(err error) Kind {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}
