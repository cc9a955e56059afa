// Package domain contains the core data types for the Drivers Log client.
// This package has zero dependencies on the other internal packages and is
// imported by every one of them (store, api, session, timeline, draft).
package domain

import "time"

// TimeLayout is the wire format the trip API uses for every timestamp.
const TimeLayout = "2006-01-02 15:04:05"

// TripStatus is the derived lifecycle state of today's trip.
// It is never stored — always recomputed from the session's events.
type TripStatus string

const (
	// StatusNotStarted means no start event exists for today.
	StatusNotStarted TripStatus = "not_started"
	// StatusInProgress means the trip has started and not yet finished.
	StatusInProgress TripStatus = "in_progress"
	// StatusFinished means a finish event exists and its trip number
	// matches the start event's trip number.
	StatusFinished TripStatus = "finished"
)

// TripEvent is a start or finish checkpoint for a trip.
// RouteNumber is only present on finish events; Lat/Long are optional
// device coordinates and zero when unavailable.
type TripEvent struct {
	TripNumber  string    `json:"TripNumber,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Location    string    `json:"location"`
	Odometer    string    `json:"odometer"`
	Truck       string    `json:"truck"`
	Trailer     string    `json:"trailer"`
	RouteNumber string    `json:"routeNumber,omitempty"`
	Lat         float64   `json:"lat,omitempty"`
	Long        float64   `json:"long,omitempty"`
}

// Session is the single source of truth for today's trip: whether one
// exists, its server-assigned identity, and whether it is finished.
// A Session is created when a trip start succeeds and superseded whole
// when a new trip starts.
type Session struct {
	// TripNumber is the opaque server-assigned identifier correlating the
	// start event, its activities, and its finish event. Empty until a
	// start submission succeeds.
	TripNumber string `json:"TripNumber"`

	// Start is set exactly once, when the trip starts.
	Start *TripEvent `json:"start,omitempty"`

	// Finish is set exactly once, when the trip finishes. A non-nil
	// Finish alone does not mean today's trip is over — see Matched.
	Finish *TripEvent `json:"finish,omitempty"`

	// MaxActivityLimit is the server-provided end of the activity window,
	// echoed on start and displayed alongside the start row.
	MaxActivityLimit string `json:"maxactivitytimelimit,omitempty"`
}

// Status derives the lifecycle state from the session's events.
func (s Session) Status() TripStatus {
	switch {
	case s.Start == nil:
		return StatusNotStarted
	case s.Matched():
		return StatusFinished
	default:
		return StatusInProgress
	}
}

// Matched reports whether the finish event actually belongs to this
// session's trip. A finish record cached from a previous day can survive
// in the store and coexist with a fresh start; comparing trip numbers —
// not mere presence — is the authoritative "is today's trip finished"
// check.
func (s Session) Matched() bool {
	return s.Start != nil && s.Finish != nil &&
		s.Finish.TripNumber == s.Start.TripNumber
}
