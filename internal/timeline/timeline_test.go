package timeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplydispatch/driverslog/internal/domain"
	"github.com/simplydispatch/driverslog/internal/timeline"
)

func startedSession() domain.Session {
	return domain.Session{
		TripNumber: "T100",
		Start: &domain.TripEvent{
			TripNumber: "T100",
			Timestamp:  time.Date(2025, 1, 29, 8, 0, 0, 0, time.UTC),
			Location:   "Toronto Yard",
		},
		MaxActivityLimit: "2025-01-29 20:00:00",
	}
}

func at(hour, min int) time.Time {
	return time.Date(2025, 1, 29, hour, min, 0, 0, time.UTC)
}

// ---- Build tests -----------------------------------------------------------

func TestBuild_NoActivities_StartRowOnly(t *testing.T) {
	tl := timeline.Build(startedSession(), nil)

	require.Len(t, tl.Rows, 1)
	row := tl.Rows[0]
	assert.Equal(t, timeline.RowStart, row.Kind)
	assert.Equal(t, "Start", row.Label)
	assert.Equal(t, "2025-01-29 08:00:00", row.TimeDisplay)
	assert.Equal(t, "2025-01-29 20:00:00", row.EndLimit)
	assert.Equal(t, "Toronto Yard", row.Location)
	assert.Equal(t, timeline.MarkerStart, row.Marker)
	assert.True(t, tl.NeedsFinish)
}

func TestBuild_NoStartEvent_EmptyTimeline(t *testing.T) {
	tl := timeline.Build(domain.Session{}, nil)

	assert.NotNil(t, tl.Rows)
	assert.Empty(t, tl.Rows)
	assert.False(t, tl.NeedsFinish)
}

// The scenario from the daily flow: Start, a Pickup at a point in time,
// then a waiting period as a range — three rows, server order, with the
// waiting row's marker distinct from the pickup's.
func TestBuild_StartPickupWaiting(t *testing.T) {
	pickupAt := at(9, 0)
	from, to := at(9, 5), at(9, 30)

	activities := []domain.ActivityEntry{
		{Activity: "Pickup", Location: "Dock 4", Timestamp: &pickupAt, Quantity: "3", LoadType: "Pallet"},
		{Activity: "Waiting for Pickup", Location: "Dock 4", TimestampFrom: &from, TimestampTo: &to},
	}

	tl := timeline.Build(startedSession(), activities)

	require.Len(t, tl.Rows, 3)
	assert.Equal(t, timeline.RowStart, tl.Rows[0].Kind)

	pickup := tl.Rows[1]
	assert.Equal(t, "Pickup", pickup.Label)
	assert.Equal(t, "2025-01-29 09:00:00", pickup.TimeDisplay)
	assert.Equal(t, "3 Pallet", pickup.QuantityDisplay)
	assert.Equal(t, timeline.MarkerActivity, pickup.Marker)

	waiting := tl.Rows[2]
	assert.Equal(t, "Waiting for Pickup", waiting.Label)
	assert.Equal(t, "09:05 - 09:30", waiting.TimeDisplay)
	assert.Equal(t, timeline.MarkerWaiting, waiting.Marker)
	assert.NotEqual(t, pickup.Marker, waiting.Marker)
}

// Server order is trusted; the builder never re-sorts by timestamp even
// when the server's ordering disagrees with the clock.
func TestBuild_PreservesServerOrder(t *testing.T) {
	later, earlier := at(15, 0), at(9, 0)
	activities := []domain.ActivityEntry{
		{Activity: "Delivery", Location: "B", Timestamp: &later},
		{Activity: "Pickup", Location: "A", Timestamp: &earlier},
	}

	tl := timeline.Build(startedSession(), activities)

	require.Len(t, tl.Rows, 3)
	assert.Equal(t, "Delivery", tl.Rows[1].Label)
	assert.Equal(t, "Pickup", tl.Rows[2].Label)
}

// The waiting marker is a substring match, not an equality check.
func TestBuild_WaitingMarkerSubstring(t *testing.T) {
	ts := at(10, 0)
	activities := []domain.ActivityEntry{
		{Activity: "Waiting at Dock", Location: "Dock 2", Timestamp: &ts},
		{Activity: "waiting at dock", Location: "Dock 2", Timestamp: &ts}, // case matters
	}

	tl := timeline.Build(startedSession(), activities)

	assert.Equal(t, timeline.MarkerWaiting, tl.Rows[1].Marker)
	assert.Equal(t, timeline.MarkerActivity, tl.Rows[2].Marker)
}

func TestBuild_MatchedFinishAppendsFinishRow(t *testing.T) {
	s := startedSession()
	s.Finish = &domain.TripEvent{
		TripNumber: "T100",
		Timestamp:  time.Date(2025, 1, 29, 18, 30, 0, 0, time.UTC),
		Location:   "Home Terminal",
	}

	tl := timeline.Build(s, nil)

	require.Len(t, tl.Rows, 2)
	finish := tl.Rows[1]
	assert.Equal(t, timeline.RowFinish, finish.Kind)
	assert.Equal(t, "2025-01-29 18:30:00", finish.TimeDisplay)
	assert.Equal(t, timeline.MarkerFinish, finish.Marker)
	assert.False(t, tl.NeedsFinish)
}

// A finish record from a different trip number must not produce a finish
// row; the call-to-action stays visible instead.
func TestBuild_StaleFinishIgnored(t *testing.T) {
	s := startedSession()
	s.Finish = &domain.TripEvent{
		TripNumber: "T099",
		Timestamp:  time.Date(2025, 1, 28, 18, 30, 0, 0, time.UTC),
		Location:   "Home Terminal",
	}

	tl := timeline.Build(s, nil)

	require.Len(t, tl.Rows, 1)
	assert.Equal(t, timeline.RowStart, tl.Rows[0].Kind)
	assert.True(t, tl.NeedsFinish)
}

// Build must be a pure function: identical inputs, structurally
// identical output, no hidden state.
func TestBuild_Idempotent(t *testing.T) {
	ts := at(9, 0)
	activities := []domain.ActivityEntry{
		{Activity: "Pickup", Location: "Dock 4", Timestamp: &ts},
	}
	s := startedSession()

	first := timeline.Build(s, activities)
	second := timeline.Build(s, activities)

	assert.Equal(t, first, second)
}
