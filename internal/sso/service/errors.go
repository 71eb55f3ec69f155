package service

import (
	"errors"
	"fmt"
)

var (
	ErrProviderNotFound     = errors.New("provider not found or inactive")
	ErrGroupMappingNotFound = errors.New("group mapping not found")
	ErrGroupNotFound        = errors.New("group not found")
	ErrSessionNotFound      = errors.New("session not found")
)

// ValidationError reports a missing or invalid request parameter. These are
// caller mistakes and map to a 400 at the HTTP layer.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StateError reports a forged, expired, or otherwise undecodable callback
// state. Security relevant, but still caller-visible as a 400.
type StateError struct {
	Reason string
	Err    error
}

func (e *StateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bad state: %s: %v", e.Reason, e.Err)
	}
	return "bad state: " + e.Reason
}

func (e *StateError) Unwrap() error { return e.Err }

// UpstreamError reports a failed or malformed response from the identity
// provider, or a provider misconfiguration discovered mid-flow. Maps to 500.
// Never retried here; retries are the caller's concern.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
	}
	return "upstream " + e.Op
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError reports a local account or group write failure. Maps to
// 500. The callback path computes everything before writing, so one of these
// means nothing was partially committed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
