package api

import "errors"

// ErrUnauthenticated marks a 401 response. By the time the caller sees it the
// client has already wiped local credentials and fired the unauthenticated
// hook, so callers usually just surface the message and bail.
var ErrUnauthenticated = errors.New("unauthenticated")

// RequestError is any non-2xx response from the backend. Message is the
// backend's `detail` field verbatim when present; otherwise a generic
// "Request failed with status <code>" (or "Server error (<code>)" when the
// body was not parseable JSON).
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error {
	if e.Status == 401 {
		return ErrUnauthenticated
	}
	return nil
}

// ValidationError is raised client-side before any network call is made
// (password confirmation, minimum lengths). The message is user-facing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
