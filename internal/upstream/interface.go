// Package upstream talks to the attendance API on behalf of the gateway.
// It forwards resolved credentials and sanitized coordinates and hands the
// upstream's reply back verbatim so the caller can relay it.
package upstream

import (
	"context"
	"timegate/pkg/domain"
)

// Response carries an upstream reply so handlers can relay status and body
// unchanged to the gateway's caller.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// ClockRequest is a clock-in or clock-out submission for a coordinate that
// already passed geofence validation.
type ClockRequest struct {
	Credentials domain.Credentials
	Coordinate  domain.Coordinate
}

// Client is the abstraction over the attendance API. Implementations must be
// safe for concurrent use and honor context cancellation so that a client
// disconnect aborts the in-flight upstream call.
type Client interface {
	// ClockIn records the start of a work period at the given coordinate.
	ClockIn(ctx context.Context, req ClockRequest) (*Response, error)
	// ClockOut records the end of a work period at the given coordinate.
	ClockOut(ctx context.Context, req ClockRequest) (*Response, error)
	// Employee fetches the employee sub-resource by ID, pass-through.
	Employee(ctx context.Context, creds domain.Credentials, id string) (*Response, error)
}
