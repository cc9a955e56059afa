// Package timeline turns a trip session and its fetched activity list
// into the ordered, renderable "today's trip" sequence. Build is a pure
// transform: eager, deterministic, and tolerant of partial data — a
// failed activity fetch still yields the start row.
package timeline

import (
	"strings"

	"github.com/simplydispatch/driverslog/internal/domain"
)

// RowKind tells the renderer which part of the trip a row belongs to.
type RowKind string

const (
	RowStart    RowKind = "start"
	RowActivity RowKind = "activity"
	RowFinish   RowKind = "finish"
)

// Marker is the visual class attached to a row's timeline dot.
type Marker string

const (
	MarkerStart    Marker = "start"
	MarkerActivity Marker = "activity"
	MarkerWaiting  Marker = "waiting"
	MarkerFinish   Marker = "finish"
)

// clockLayout renders range endpoints as 24-hour clock times.
const clockLayout = "15:04"

// Row is one rendered timeline item.
type Row struct {
	Kind  RowKind
	Label string

	// TimeDisplay is "HH:MM - HH:MM" for duration entries and the raw
	// wire timestamp for point entries and start/finish rows.
	TimeDisplay string

	// EndLimit is the server's max-activity time limit; start row only.
	EndLimit string

	Location string

	// QuantityDisplay combines quantity and load type ("3 Pallet");
	// empty when the entry has no quantity.
	QuantityDisplay string

	Notes  string
	Marker Marker
}

// Timeline is the materialized view of today's trip.
// NeedsFinish is true while the trip is in progress: the renderer shows
// the "Finish Trip" call-to-action where the finish row would go. It is
// presentation state, deliberately not a Row.
type Timeline struct {
	Rows        []Row
	NeedsFinish bool
}

// Build assembles the timeline from the session's start event, the
// activities as received from the server, and — only when the cached
// finish record actually matches this trip — the finish event.
//
// Activities keep server order. The client never re-sorts: duration
// entries have no single sortable instant, and mixing point and range
// sort keys is ambiguous. A session with no start event yields an empty
// timeline (there is no trip to render).
func Build(session domain.Session, activities []domain.ActivityEntry) Timeline {
	if session.Start == nil {
		return Timeline{Rows: []Row{}}
	}

	rows := make([]Row, 0, len(activities)+2)

	rows = append(rows, Row{
		Kind:        RowStart,
		Label:       "Start",
		TimeDisplay: session.Start.Timestamp.Format(domain.TimeLayout),
		EndLimit:    session.MaxActivityLimit,
		Location:    session.Start.Location,
		Marker:      MarkerStart,
	})

	for _, entry := range activities {
		rows = append(rows, activityRow(entry))
	}

	matched := session.Matched()
	if matched {
		rows = append(rows, Row{
			Kind:        RowFinish,
			Label:       "Finish",
			TimeDisplay: session.Finish.Timestamp.Format(domain.TimeLayout),
			Location:    session.Finish.Location,
			Marker:      MarkerFinish,
		})
	}

	return Timeline{Rows: rows, NeedsFinish: !matched}
}

func activityRow(entry domain.ActivityEntry) Row {
	row := Row{
		Kind:     RowActivity,
		Label:    entry.Activity,
		Location: entry.Location,
		Notes:    entry.Notes,
		Marker:   markerFor(entry.Activity),
	}

	switch {
	case entry.IsRange():
		row.TimeDisplay = entry.TimestampFrom.Format(clockLayout) + " - " + entry.TimestampTo.Format(clockLayout)
	case entry.Timestamp != nil:
		row.TimeDisplay = entry.Timestamp.Format(domain.TimeLayout)
	}

	if entry.Quantity != "" {
		row.QuantityDisplay = strings.TrimSpace(entry.Quantity + " " + entry.LoadType)
	}

	return row
}

// markerFor derives the dot class from the activity name. Waiting-style
// entries are matched by case-sensitive substring, not equality — the
// server's waiting list contains variants like "Waiting for Pickup" and
// "Waiting at Dock".
func markerFor(activity string) Marker {
	if strings.Contains(activity, "Waiting") {
		return MarkerWaiting
	}
	return MarkerActivity
}
