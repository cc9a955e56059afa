// Package session owns the lifecycle of "today's trip": whether one
// exists, whether it is finished, and the identifiers that correlate the
// locally cached state with the server's records. It is the only place
// that mutates trip state; screens read through Current and Timeline.
//
// All writes to the persistent cache happen after a confirmed success
// response from the API — never optimistically.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/simplydispatch/driverslog/internal/api"
	"github.com/simplydispatch/driverslog/internal/domain"
	"github.com/simplydispatch/driverslog/internal/draft"
	"github.com/simplydispatch/driverslog/internal/store"
	"github.com/simplydispatch/driverslog/internal/timeline"
)

// ErrInFlight is returned when Start, Finish, or AddActivity is called
// while a previous submission is still running. The server has no
// idempotency key, so duplicate concurrent submissions must be refused
// outright. Wraps domain.ErrState.
var ErrInFlight = fmt.Errorf("%w: a submission is already in flight", domain.ErrState)

// TripAPI defines the remote operations the service depends on.
// Declared here, in the consumer package, so tests can inject a mock
// without touching the real client.
type TripAPI interface {
	StartTrip(ctx context.Context, start domain.TripEvent) (api.TripResult, error)
	FinishTrip(ctx context.Context, tripNumber string, finish domain.TripEvent) (api.TripResult, error)
	AddActivities(ctx context.Context, tripNumber string, entries []domain.ActivityEntry) (api.TripResult, error)
	TripActivities(ctx context.Context, tripNumber string) ([]domain.ActivityEntry, error)
}

// StartDetails is the validated input for starting a trip.
// Clock is the picker's 24-hour "HH:MM"; the calendar date is attached
// at submission time.
type StartDetails struct {
	Activity string
	Location string
	Clock    string
	Truck    string
	Trailer  string
	Odometer string
	Lat      float64
	Long     float64
}

// FinishDetails is the validated input for finishing a trip.
// The finish form additionally requires a route number.
type FinishDetails struct {
	StartDetails
	RouteNumber string
}

// Service is the single owner of today's trip session.
type Service struct {
	api   TripAPI
	cache store.Store
	log   *slog.Logger
	now   func() time.Time

	mu       sync.Mutex
	inFlight bool
	current  domain.Session
}

// New constructs a Service. Call Reload before first use to pick up any
// session cached by a previous run.
func New(tripAPI TripAPI, cache store.Store, log *slog.Logger) *Service {
	return &Service{
		api:   tripAPI,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// SetClock overrides the wall clock, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Current returns a copy of the session as last loaded or mutated.
func (s *Service) Current() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Reload re-reads the cached session and finish blobs. Call it on
// startup and whenever a view regains focus, so the in-memory state
// tracks what the last confirmed submission persisted.
//
// An unreadable blob is treated as absent (and logged); a missing cache
// entry is the normal not-started state, not an error.
func (s *Service) Reload(ctx context.Context) error {
	var session domain.Session
	if ok, err := s.loadBlob(ctx, store.KeyStartedTrip, &session); err != nil {
		return fmt.Errorf("session.Service.Reload: %w", err)
	} else if !ok {
		session = domain.Session{}
	}

	var finish domain.Session
	if ok, err := s.loadBlob(ctx, store.KeyFinishTrip, &finish); err != nil {
		return fmt.Errorf("session.Service.Reload: %w", err)
	} else if ok && finish.Finish != nil {
		// The finish blob keeps its own trip number; Matched decides
		// whether it belongs to the current session.
		session.Finish = finish.Finish
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()
	return nil
}

// Start validates details, submits the trip start, and on success makes
// the returned session current and persists it. Starting a new trip
// supersedes whatever session was cached before, including clearing any
// previous day's finish record.
func (s *Service) Start(ctx context.Context, details StartDetails) (domain.Session, error) {
	if err := s.begin(); err != nil {
		return domain.Session{}, fmt.Errorf("session.Service.Start: %w", err)
	}
	defer s.end()

	if err := validateDetails(details, false); err != nil {
		return domain.Session{}, err
	}

	at, err := s.composeToday(details.Clock)
	if err != nil {
		return domain.Session{}, err
	}
	event := domain.TripEvent{
		Timestamp: at,
		Location:  details.Location,
		Odometer:  draft.DigitsOnly(details.Odometer),
		Truck:     details.Truck,
		Trailer:   details.Trailer,
		Lat:       details.Lat,
		Long:      details.Long,
	}

	result, err := s.api.StartTrip(ctx, event)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session.Service.Start: %w", err)
	}
	if err := resultError(result); err != nil {
		return domain.Session{}, fmt.Errorf("session.Service.Start: %w", err)
	}

	session := result.Session
	if session.Start == nil {
		// Server accepted but did not echo the event; keep our copy.
		event.TripNumber = session.TripNumber
		session.Start = &event
	}

	// A new trip invalidates the previous one wholesale. Clearing the
	// old finish blob here (rather than relying on the trip-number
	// mismatch alone) keeps the cache from accumulating stale records.
	if err := s.cache.Remove(ctx, store.KeyFinishTrip); err != nil {
		return domain.Session{}, fmt.Errorf("session.Service.Start: clear finish cache: %w", err)
	}
	if err := s.persist(ctx, store.KeyStartedTrip, session); err != nil {
		return domain.Session{}, fmt.Errorf("session.Service.Start: %w", err)
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.log.Info("trip started", "trip_number", session.TripNumber)
	return session, nil
}

// Finish validates details, submits the trip finish, and on success
// records the finish event and persists it under the session's trip
// number. Requires an in-progress session.
func (s *Service) Finish(ctx context.Context, details FinishDetails) (domain.Session, error) {
	if err := s.begin(); err != nil {
		return domain.Session{}, fmt.Errorf("session.Service.Finish: %w", err)
	}
	defer s.end()

	current := s.Current()
	switch current.Status() {
	case domain.StatusNotStarted:
		return domain.Session{}, fmt.Errorf("session.Service.Finish: %w: no trip started today", domain.ErrState)
	case domain.StatusFinished:
		return domain.Session{}, fmt.Errorf("session.Service.Finish: %w: trip %s is already finished", domain.ErrState, current.TripNumber)
	}

	if err := validateDetails(details.StartDetails, true); err != nil {
		return domain.Session{}, err
	}
	if strings.TrimSpace(details.RouteNumber) == "" {
		return domain.Session{}, fmt.Errorf("%w: missing routeNumber", domain.ErrValidation)
	}

	at, err := s.composeToday(details.Clock)
	if err != nil {
		return domain.Session{}, err
	}
	event := domain.TripEvent{
		TripNumber:  current.TripNumber,
		Timestamp:   at,
		Location:    details.Location,
		Odometer:    draft.DigitsOnly(details.Odometer),
		Truck:       details.Truck,
		Trailer:     details.Trailer,
		RouteNumber: draft.DigitsOnly(details.RouteNumber),
		Lat:         details.Lat,
		Long:        details.Long,
	}

	result, err := s.api.FinishTrip(ctx, current.TripNumber, event)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session.Service.Finish: %w", err)
	}
	if err := resultError(result); err != nil {
		return domain.Session{}, fmt.Errorf("session.Service.Finish: %w", err)
	}

	finish := result.Session.Finish
	if finish == nil {
		finish = &event
	}
	finish.TripNumber = current.TripNumber

	finishBlob := domain.Session{TripNumber: current.TripNumber, Finish: finish}
	if err := s.persist(ctx, store.KeyFinishTrip, finishBlob); err != nil {
		return domain.Session{}, fmt.Errorf("session.Service.Finish: %w", err)
	}

	s.mu.Lock()
	s.current.Finish = finish
	current = s.current
	s.mu.Unlock()

	s.log.Info("trip finished", "trip_number", current.TripNumber)
	return current, nil
}

// AddActivity validates and submits one activity entry for the current
// trip. Requires an in-progress session: appending to a finished trip —
// or before one starts — is a state error, not a validation error.
func (s *Service) AddActivity(ctx context.Context, entry domain.ActivityEntry) error {
	if err := s.begin(); err != nil {
		return fmt.Errorf("session.Service.AddActivity: %w", err)
	}
	defer s.end()

	current := s.Current()
	switch current.Status() {
	case domain.StatusNotStarted:
		return fmt.Errorf("session.Service.AddActivity: %w: no trip started today", domain.ErrState)
	case domain.StatusFinished:
		return fmt.Errorf("session.Service.AddActivity: %w: trip %s is already finished", domain.ErrState, current.TripNumber)
	}

	if !entry.HasTime() {
		return fmt.Errorf("%w: an activity needs a timestamp or a complete from/to range", domain.ErrValidation)
	}

	result, err := s.api.AddActivities(ctx, current.TripNumber, []domain.ActivityEntry{entry})
	if err != nil {
		return fmt.Errorf("session.Service.AddActivity: %w", err)
	}
	if err := resultError(result); err != nil {
		return fmt.Errorf("session.Service.AddActivity: %w", err)
	}

	s.log.Info("activity added", "trip_number", current.TripNumber, "activity", entry.Activity)
	return nil
}

// Activities fetches the server's activity list for the current trip,
// in server order. With no started session there is nothing to fetch
// and it returns an empty list.
func (s *Service) Activities(ctx context.Context) ([]domain.ActivityEntry, error) {
	current := s.Current()
	if current.Start == nil {
		return []domain.ActivityEntry{}, nil
	}

	entries, err := s.api.TripActivities(ctx, current.TripNumber)
	if err != nil {
		return nil, fmt.Errorf("session.Service.Activities: %w", err)
	}
	if entries == nil {
		entries = []domain.ActivityEntry{}
	}
	return entries, nil
}

// Timeline fetches the current activities and builds the rendered
// timeline. A failed fetch degrades to the start row alone — the view
// must never go blank because one refresh failed.
func (s *Service) Timeline(ctx context.Context) timeline.Timeline {
	entries, err := s.Activities(ctx)
	if err != nil {
		s.log.Warn("activity fetch failed; rendering partial timeline", "error", err)
		entries = nil
	}
	return timeline.Build(s.Current(), entries)
}

// begin marks a submission in flight; end clears it.
func (s *Service) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrInFlight
	}
	s.inFlight = true
	return nil
}

func (s *Service) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// composeToday joins the submission-time calendar date with a picker
// clock value — the same date rule FormDraft uses.
func (s *Service) composeToday(clock string) (time.Time, error) {
	t, err := time.Parse(draft.ClockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q is not HH:MM", domain.ErrValidation, clock)
	}
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}

// persist JSON-encodes value into the cache under key.
func (s *Service) persist(ctx context.Context, key string, value domain.Session) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.cache.Set(ctx, key, string(encoded)); err != nil {
		return err
	}
	return nil
}

// loadBlob reads and decodes a cached blob. Returns ok=false when the
// key is absent or the blob is unreadable.
func (s *Service) loadBlob(ctx context.Context, key string, out *domain.Session) (bool, error) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.log.Warn("discarding unreadable cache blob", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// validateDetails checks the required fields shared by start and finish.
// The error lists every missing field so the alert is actionable in one
// pass.
func validateDetails(d StartDetails, finishing bool) error {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("activity", d.Activity)
	check("location", d.Location)
	check("time", d.Clock)
	check("truck", d.Truck)
	check("trailer", d.Trailer)
	check("odometer", d.Odometer)

	if len(missing) > 0 {
		verb := "start"
		if finishing {
			verb = "finish"
		}
		return fmt.Errorf("%w: cannot %s trip, missing %s", domain.ErrValidation, verb, strings.Join(missing, ", "))
	}
	return nil
}

// resultError maps a decoded API result onto the error kinds callers
// dispatch on. "invalid" means the apikey was rejected — a stale session
// requiring a fresh sign-in, not a retry.
func resultError(result api.TripResult) error {
	switch result.Kind {
	case api.ResultSuccess:
		return nil
	case api.ResultInvalid:
		return fmt.Errorf("%w: apikey rejected, sign in again", domain.ErrState)
	default:
		msg := result.Message
		if msg == "" {
			msg = "server reported failure"
		}
		return fmt.Errorf("%w: %s", domain.ErrRemote, msg)
	}
}
