package backend

import (
	"errors"
	"fmt"
)

// TransportError reports that a service could not be reached or the
// connection failed mid-call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError reports a response that does not match the expected
// shape for the operation.
type ValidationError struct {
	Op     string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid response: %s", e.Op, e.Detail)
}

// ServiceError is a structured error payload returned by a backend
// service.
type ServiceError struct {
	Op         string
	Code       string
	Message    string
	Detail     string
	HTTPStatus int
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: service error %s: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: service error: %s", e.Op, e.Message)
}

// EmptyResultError reports a success response that is semantically
// empty, such as a zero-step plan.
type EmptyResultError struct {
	Op      string
	Message string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s: empty result: %s", e.Op, e.Message)
}

// UserMessage converts any stage or step failure into the best-effort
// human-readable text shown in the log. Precedence: structured error
// code and message, then the response detail, then the raw error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.Code != "" && svcErr.Message != "" {
			return fmt.Sprintf("%s: %s", svcErr.Code, svcErr.Message)
		}
		if svcErr.Message != "" {
			return svcErr.Message
		}
		if svcErr.Detail != "" {
			return svcErr.Detail
		}
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Detail
	}

	var emptyErr *EmptyResultError
	if errors.As(err, &emptyErr) {
		return emptyErr.Message
	}

	var transErr *TransportError
	if errors.As(err, &transErr) {
		return transErr.Err.Error()
	}

	return err.Error()
}
