// Package backend is the query protocol the directory consumes. A Client
// builds requests with a PostgREST-style fluent API and hands them to a
// Driver (in-memory, PostgREST over HTTP, or SQL).
package backend

import (
	"context"
	"fmt"
)

// Row is one result record. Embedded relations appear as nested maps.
type Row map[string]any

// RemoteError is the error shape every driver reports.
type RemoteError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Error implements error.
func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (code %s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// RemoteStatus implements apperr.RemoteFailure.
func (e *RemoteError) RemoteStatus() int {
	return e.Status
}

// Response carries either rows or an error.
type Response struct {
	Data []Row
	Err  *RemoteError
}

// Result unpacks the response into Go's (value, error) form.
func (r Response) Result() ([]Row, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Data == nil {
		return []Row{}, nil
	}
	return r.Data, nil
}

// Driver executes built requests.
type Driver interface {
	Run(ctx context.Context, req *Request) Response
	Close() error
}

// Client is the entry point for building queries.
type Client struct {
	driver Driver
}

// NewClient wraps a driver.
func NewClient(d Driver) *Client {
	return &Client{driver: d}
}

// From starts a query against table.
func (c *Client) From(table string) *Query {
	return &Query{
		driver: c.driver,
		req: Request{
			Table:  table,
			Select: Selection{All: true},
		},
	}
}

// Driver returns the underlying driver.
func (c *Client) Driver() Driver {
	return c.driver
}

// Close releases driver resources.
func (c *Client) Close() error {
	return c.driver.Close()
}

// Common PostgREST/Postgres error codes emitted by the drivers.
const (
	CodeUndefinedColumn     = "42703"
	CodeUndefinedTable      = "42P01"
	CodeMissingRelationship = "PGRST200"
	CodeParseError          = "PGRST100"
	CodeTransport           = "TRANSPORT"
)

// MissingColumnError is the canonical error for an absent column.
func MissingColumnError(column string) *RemoteError {
	return &RemoteError{
		Message: fmt.Sprintf("column %q does not exist", column),
		Status:  400,
		Code:    CodeUndefinedColumn,
	}
}

// MissingRelationshipError is the canonical error for an absent embed.
func MissingRelationshipError(from, to string) *RemoteError {
	return &RemoteError{
		Message: fmt.Sprintf("Could not find a relationship between '%s' and '%s' in the schema cache", from, to),
		Status:  400,
		Code:    CodeMissingRelationship,
	}
}

// ParseError reports a malformed request.
func ParseError(err error) *RemoteError {
	return &RemoteError{
		Message: fmt.Sprintf("failed to parse request: %v", err),
		Status:  400,
		Code:    CodeParseError,
	}
}

// TransportError reports that the backend could not be reached. It is
// classified like a 503 so the executor retries it.
func TransportError(err error) *RemoteError {
	return &RemoteError{
		Message: err.Error(),
		Status:  503,
		Code:    CodeTransport,
	}
}
