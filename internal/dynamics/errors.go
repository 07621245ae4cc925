package dynamics

import (
	"errors"
	"fmt"
)

// ErrNoCandidateRecords means a lookup sample found an empty collection.
// Callers treat it as "skip the field", never as a fatal failure.
var ErrNoCandidateRecords = errors.New("no candidate records in collection")

// MetadataError is a metadata fetch that failed: transport error, non-2xx
// status, or an error object inside an otherwise successful body.
type MetadataError struct {
	Op  string // which gateway operation failed
	Err error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

func metadataErr(op string, err error) *MetadataError {
	return &MetadataError{Op: op, Err: err}
}

// CreationError is a non-success creation response, carrying the remote
// error message when the body could be parsed.
type CreationError struct {
	Status  int
	Message string
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create failed (HTTP %d): %s", e.Status, e.Message)
}

// MalformedResponseError is a success response missing the expected
// record-identifier marker.
type MalformedResponseError struct {
	Header string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("create succeeded but no record id in OData-EntityId header %q", e.Header)
}

// remoteError is the {"error": {...}} envelope Dynamics puts in error bodies
// and, for some metadata endpoints, in 200 bodies.
type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *remoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}
