package siga

import (
	"errors"
	"fmt"
)

// ErrAuthenticationDenied is returned by retrieval operations when the portal
// refused the account's credentials.
var ErrAuthenticationDenied = errors.New("siga: authentication denied")

// ErrSessionExpired is returned when an authenticated page answers with a redirect
// (back to the login page) instead of its content.
var ErrSessionExpired = errors.New("siga: session expired")

// NetworkError is a transport level failure or an unexpected status code.
type NetworkError struct {
	Op         string
	Url        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("siga: %s %s: unexpected status %d", e.Op, e.Url, e.StatusCode)
	}
	return fmt.Sprintf("siga: %s %s: %s", e.Op, e.Url, e.Err.Error())
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ExtractionError means an element or key the portal is expected to serve
// was missing or malformed.
type ExtractionError struct {
	Page  string
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("siga: extract %s from %s: not found", e.Field, e.Page)
	}
	return fmt.Sprintf("siga: extract %s from %s: %s", e.Field, e.Page, e.Err.Error())
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func missing(page, field string) error {
	return &ExtractionError{Page: page, Field: field}
}

func malformed(page, field string, err error) error {
	return &ExtractionError{Page: page, Field: field, Err: err}
}
