package devserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/simplydispatch/driverslog/internal/domain"
)

// wireEvent and wireActivity mirror the client's wire shapes for the
// trip.php contract.
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

// tripEnvelope is the tagged request body: exactly one of Start,
// Activities, Finish populated for a mutation, none of them for an
// activity-list fetch.
type tripEnvelope struct {
	Status     int            `json:"status"`
	TripNumber string         `json:"TripNumber"`
	Start      []wireEvent    `json:"start"`
	Activities []wireActivity `json:"activities"`
	Finish     []wireEvent    `json:"finish"`
}

// tripPayload is the data half of every trip.php response.
type tripPayload struct {
	Code                 string         `json:"code"`
	Message              string         `json:"message,omitempty"`
	TripNumber           string         `json:"TripNumber,omitempty"`
	MaxActivityTimeLimit string         `json:"maxactivitytimelimit,omitempty"`
	Start                []wireEvent    `json:"start,omitempty"`
	Finish               []wireEvent    `json:"finish,omitempty"`
	Activities           []wireActivity `json:"activities,omitempty"`
}

// handleTrip dispatches the unified trip endpoint on the populated
// slice, matching the production contract.
func (s *Server) handleTrip(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeInvalid(w)
		return
	}

	var req tripEnvelope
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCode(w, "Failure", "unreadable request body")
		return
	}

	switch {
	case len(req.Start) > 0:
		s.startTrip(w, req.Start[0])
	case len(req.Finish) > 0:
		s.finishTrip(w, req.TripNumber, req.Finish[0])
	case len(req.Activities) > 0:
		s.addActivities(w, req.TripNumber, req.Activities)
	default:
		s.listActivities(w, req.TripNumber)
	}
}

func (s *Server) startTrip(w http.ResponseWriter, start wireEvent) {
	if start.Location == "" || start.Timestamp == "" {
		writeCode(w, "Failure", "start event incomplete")
		return
	}

	limit := s.activityLimit(start.Timestamp)

	s.mu.Lock()
	trip := &tripState{
		tripNumber: s.nextTripNumber(),
		maxLimit:   limit,
		start:      start,
		activities: []wireActivity{},
	}
	s.trips[trip.tripNumber] = trip
	s.mu.Unlock()

	s.log.Info("trip started", "trip_number", trip.tripNumber)
	writeJSON(w, envelope{Data: tripPayload{
		Code:                 "success",
		TripNumber:           trip.tripNumber,
		MaxActivityTimeLimit: trip.maxLimit,
		Start:                []wireEvent{trip.start},
	}})
}

func (s *Server) finishTrip(w http.ResponseWriter, tripNumber string, finish wireEvent) {
	s.mu.Lock()
	trip, ok := s.trips[tripNumber]
	if ok {
		if trip.finish != nil {
			s.mu.Unlock()
			writeCode(w, "Failure", "trip already finished")
			return
		}
		trip.finish = &finish
	}
	s.mu.Unlock()

	if !ok {
		writeCode(w, "Failure", "unknown trip number")
		return
	}

	s.log.Info("trip finished", "trip_number", tripNumber)
	writeJSON(w, envelope{Data: tripPayload{
		Code:       "success",
		TripNumber: tripNumber,
		Finish:     []wireEvent{finish},
	}})
}

func (s *Server) addActivities(w http.ResponseWriter, tripNumber string, activities []wireActivity) {
	for _, a := range activities {
		if a.Activity == "" {
			writeCode(w, "Failure", "activity entry incomplete")
			return
		}
	}

	s.mu.Lock()
	trip, ok := s.trips[tripNumber]
	if ok && trip.finish == nil {
		trip.activities = append(trip.activities, activities...)
	}
	finished := ok && trip.finish != nil
	s.mu.Unlock()

	switch {
	case !ok:
		writeCode(w, "Failure", "unknown trip number")
	case finished:
		writeCode(w, "Failure", "trip already finished")
	default:
		writeJSON(w, envelope{Data: tripPayload{Code: "success", TripNumber: tripNumber}})
	}
}

func (s *Server) listActivities(w http.ResponseWriter, tripNumber string) {
	s.mu.Lock()
	trip, ok := s.trips[tripNumber]
	var activities []wireActivity
	if ok {
		activities = append([]wireActivity{}, trip.activities...)
	}
	s.mu.Unlock()

	if !ok {
		writeCode(w, "Failure", "unknown trip number")
		return
	}
	writeJSON(w, envelope{Data: tripPayload{
		Code:       "success",
		TripNumber: tripNumber,
		Activities: activities,
	}})
}

// activityLimit computes maxactivitytimelimit from the start timestamp.
// An unparseable timestamp falls back to the server clock.
func (s *Server) activityLimit(startTimestamp string) string {
	at, err := time.Parse(domain.TimeLayout, startTimestamp)
	if err != nil {
		at = s.now()
	}
	return at.Add(maxActivityWindow).Format(domain.TimeLayout)
}
