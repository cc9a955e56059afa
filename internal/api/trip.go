package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/simplydispatch/driverslog/internal/domain"
)

// tripPath is the unified endpoint for start, add-activity, finish, and
// activity-list fetch. The body's populated slice tells the server which
// operation is meant.
const tripPath = "/trip.php"

// requestStatus is the constant status field the server expects in every
// trip envelope.
const requestStatus = 200

// TripResult is the decoded outcome of a mutating trip call.
// Session is populated only for successful start and finish calls.
type TripResult struct {
	Kind       ResultKind
	Message    string
	TripNumber string
	Session    domain.Session
}

// tripRequest is the tagged wire envelope accepted by trip.php.
// Exactly one of Start, Activities, Finish is populated for a mutation;
// none of them (TripNumber alone) requests the trip's activity list.
type tripRequest struct {
	Status     int            `json:"status"`
	TripNumber string         `json:"TripNumber,omitempty"`
	Start      []wireEvent    `json:"start,omitempty"`
	Activities []wireActivity `json:"activities,omitempty"`
	Finish     []wireEvent    `json:"finish,omitempty"`
}

type tripResponse struct {
	Data *tripData `json:"data"`
}

type tripData struct {
	Code                 string         `json:"code"`
	Message              string         `json:"message"`
	TripNumber           string         `json:"TripNumber"`
	MaxActivityTimeLimit string         `json:"maxactivitytimelimit"`
	Start                []wireEvent    `json:"start"`
	Finish               []wireEvent    `json:"finish"`
	Activities           []wireActivity `json:"activities"`
}

type wireEvent struct {
	Timestamp   string  `json:"timestamp"`
	Location    string  `json:"location"`
	Odometer    string  `json:"odometer"`
	Truck       string  `json:"truck"`
	Trailer     string  `json:"trailer"`
	RouteNumber string  `json:"routeNumber,omitempty"`
	Lat         float64 `json:"lat,omitempty"`
	Long        float64 `json:"long,omitempty"`
}

type wireActivity struct {
	Activity       string `json:"activity"`
	Location       string `json:"location"`
	Timestamp      string `json:"timestamp,omitempty"`
	TimestampFrom  string `json:"timestampfrom,omitempty"`
	TimestampTo    string `json:"timestampto,omitempty"`
	Qty            string `json:"qty,omitempty"`
	Type           string `json:"Type,omitempty"`
	PartyName      string `json:"partyname,omitempty"`
	Notes          string `json:"notes,omitempty"`
	TrackingNumber string `json:"trackingnumber,omitempty"`
}

// StartTrip submits the trip start event. On success the result's Session
// carries the server-assigned TripNumber, the echoed start event, and the
// max activity time limit.
func (c *Client) StartTrip(ctx context.Context, start domain.TripEvent) (TripResult, error) {
	req := tripRequest{
		Status: requestStatus,
		Start:  []wireEvent{eventToWire(start)},
	}
	result, err := c.postTrip(ctx, req)
	if err != nil {
		return TripResult{}, fmt.Errorf("api.Client.StartTrip: %w", err)
	}
	return result, nil
}

// FinishTrip submits the trip finish event for the given trip number.
func (c *Client) FinishTrip(ctx context.Context, tripNumber string, finish domain.TripEvent) (TripResult, error) {
	req := tripRequest{
		Status:     requestStatus,
		TripNumber: tripNumber,
		Finish:     []wireEvent{eventToWire(finish)},
	}
	result, err := c.postTrip(ctx, req)
	if err != nil {
		return TripResult{}, fmt.Errorf("api.Client.FinishTrip: %w", err)
	}
	return result, nil
}

// AddActivities submits one or more activity entries for the given trip.
func (c *Client) AddActivities(ctx context.Context, tripNumber string, entries []domain.ActivityEntry) (TripResult, error) {
	req := tripRequest{
		Status:     requestStatus,
		TripNumber: tripNumber,
		Activities: make([]wireActivity, 0, len(entries)),
	}
	for _, e := range entries {
		req.Activities = append(req.Activities, activityToWire(e))
	}
	result, err := c.postTrip(ctx, req)
	if err != nil {
		return TripResult{}, fmt.Errorf("api.Client.AddActivities: %w", err)
	}
	return result, nil
}

// TripActivities fetches the server's activity list for the given trip,
// in server order. Always returns a non-nil slice on success.
func (c *Client) TripActivities(ctx context.Context, tripNumber string) ([]domain.ActivityEntry, error) {
	req := tripRequest{Status: requestStatus, TripNumber: tripNumber}

	var resp tripResponse
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint(tripPath, nil), req, &resp); err != nil {
		return nil, fmt.Errorf("api.Client.TripActivities: %w: %w", domain.ErrRemote, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("api.Client.TripActivities: %w: missing data envelope", domain.ErrRemote)
	}

	entries := make([]domain.ActivityEntry, 0, len(resp.Data.Activities))
	for _, w := range resp.Data.Activities {
		entries = append(entries, wireToActivity(w))
	}
	return entries, nil
}

// postTrip sends a trip envelope and decodes the tagged result.
func (c *Client) postTrip(ctx context.Context, req tripRequest) (TripResult, error) {
	var resp tripResponse
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint(tripPath, nil), req, &resp); err != nil {
		return TripResult{}, fmt.Errorf("%w: %w", domain.ErrRemote, err)
	}
	if resp.Data == nil {
		return TripResult{}, fmt.Errorf("%w: missing data envelope", domain.ErrRemote)
	}

	result := TripResult{
		Kind:       kindOf(resp.Data.Code),
		Message:    resp.Data.Message,
		TripNumber: resp.Data.TripNumber,
	}
	if result.Kind == ResultSuccess {
		result.Session = sessionFromData(resp.Data)
	}
	return result, nil
}

// sessionFromData converts a successful start/finish payload to a Session.
func sessionFromData(data *tripData) domain.Session {
	s := domain.Session{
		TripNumber:       data.TripNumber,
		MaxActivityLimit: data.MaxActivityTimeLimit,
	}
	if len(data.Start) > 0 {
		ev := wireToEvent(data.Start[0])
		ev.TripNumber = data.TripNumber
		s.Start = &ev
	}
	if len(data.Finish) > 0 {
		ev := wireToEvent(data.Finish[0])
		ev.TripNumber = data.TripNumber
		s.Finish = &ev
	}
	return s
}

func eventToWire(ev domain.TripEvent) wireEvent {
	return wireEvent{
		Timestamp:   ev.Timestamp.Format(domain.TimeLayout),
		Location:    ev.Location,
		Odometer:    ev.Odometer,
		Truck:       ev.Truck,
		Trailer:     ev.Trailer,
		RouteNumber: ev.RouteNumber,
		Lat:         ev.Lat,
		Long:        ev.Long,
	}
}

func wireToEvent(w wireEvent) domain.TripEvent {
	ev := domain.TripEvent{
		Location:    w.Location,
		Odometer:    w.Odometer,
		Truck:       w.Truck,
		Trailer:     w.Trailer,
		RouteNumber: w.RouteNumber,
		Lat:         w.Lat,
		Long:        w.Long,
	}
	if t, ok := parseWireTime(w.Timestamp); ok {
		ev.Timestamp = t
	}
	return ev
}

func activityToWire(e domain.ActivityEntry) wireActivity {
	w := wireActivity{
		Activity:       e.Activity,
		Location:       e.Location,
		Qty:            e.Quantity,
		Type:           e.LoadType,
		PartyName:      e.PartyName,
		Notes:          e.Notes,
		TrackingNumber: e.TrackingNumber,
	}
	if e.Timestamp != nil {
		w.Timestamp = e.Timestamp.Format(domain.TimeLayout)
	}
	if e.TimestampFrom != nil {
		w.TimestampFrom = e.TimestampFrom.Format(domain.TimeLayout)
	}
	if e.TimestampTo != nil {
		w.TimestampTo = e.TimestampTo.Format(domain.TimeLayout)
	}
	return w
}

func wireToActivity(w wireActivity) domain.ActivityEntry {
	e := domain.ActivityEntry{
		Activity:       w.Activity,
		Location:       w.Location,
		Quantity:       w.Qty,
		LoadType:       w.Type,
		PartyName:      w.PartyName,
		Notes:          w.Notes,
		TrackingNumber: w.TrackingNumber,
	}
	if t, ok := parseWireTime(w.Timestamp); ok {
		e.Timestamp = &t
	}
	if t, ok := parseWireTime(w.TimestampFrom); ok {
		e.TimestampFrom = &t
	}
	if t, ok := parseWireTime(w.TimestampTo); ok {
		e.TimestampTo = &t
	}
	return e
}

// parseWireTime parses a wire timestamp. Malformed or empty values are
// dropped rather than failing the whole fetch — partial data degrades
// gracefully.
func parseWireTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(domain.TimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
