package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplydispatch/driverslog/internal/export"
	"github.com/simplydispatch/driverslog/internal/timeline"
)

func sampleTimeline() timeline.Timeline {
	return timeline.Timeline{
		Rows: []timeline.Row{
			{
				Kind:        timeline.RowStart,
				Label:       "Start Day",
				TimeDisplay: "2025-01-29 08:00:00",
				EndLimit:    "2025-01-29 20:00:00",
				Location:    "Toronto Yard",
				Marker:      timeline.MarkerStart,
			},
			{
				Kind:            timeline.RowActivity,
				Label:           "Pickup",
				TimeDisplay:     "2025-01-29 09:15:00",
				Location:        "Dock 4",
				QuantityDisplay: "3 Pallet",
				Notes:           "fragile",
				Marker:          timeline.MarkerActivity,
			},
			{
				Kind:        timeline.RowActivity,
				Label:       "Waiting for dock",
				TimeDisplay: "10:00 - 11:30",
				Location:    "Consignee gate",
				Marker:      timeline.MarkerWaiting,
			},
		},
		NeedsFinish: true,
	}
}

// ---- CSV tests -------------------------------------------------------------

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, export.WriteCSV(&buf, sampleTimeline()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"entry", "label", "time", "end_limit", "location", "quantity", "notes"}, records[0])
	assert.Equal(t, []string{"start", "Start Day", "2025-01-29 08:00:00", "2025-01-29 20:00:00", "Toronto Yard", "", ""}, records[1])
	assert.Equal(t, []string{"activity", "Pickup", "2025-01-29 09:15:00", "", "Dock 4", "3 Pallet", "fragile"}, records[2])
	assert.Equal(t, []string{"activity", "Waiting for dock", "10:00 - 11:30", "", "Consignee gate", "", ""}, records[3])
}

func TestWriteCSV_EmptyTimelineStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, export.WriteCSV(&buf, timeline.Timeline{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"entry", "label", "time", "end_limit", "location", "quantity", "notes"}, records[0])
}

// Fields containing commas must survive the round trip intact.
func TestWriteCSV_QuotesCommas(t *testing.T) {
	tl := timeline.Timeline{Rows: []timeline.Row{{
		Kind:     timeline.RowActivity,
		Label:    "Delivery",
		Location: "100 Queen St W, Toronto, ON",
	}}}
	var buf bytes.Buffer

	require.NoError(t, export.WriteCSV(&buf, tl))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "100 Queen St W, Toronto, ON", records[1][4])
}

// ---- PDF tests -------------------------------------------------------------

func TestWritePDF(t *testing.T) {
	generatedAt := time.Date(2025, 1, 29, 19, 0, 0, 0, time.UTC)

	got, err := export.WritePDF("T100", sampleTimeline(), generatedAt)

	require.NoError(t, err)
	// A structural sanity check is all a PDF byte blob affords.
	assert.True(t, bytes.HasPrefix(got, []byte("%PDF-")), "output is not a PDF")
	assert.Greater(t, len(got), 1000)
}

func TestWritePDF_EmptyTimeline(t *testing.T) {
	got, err := export.WritePDF("", timeline.Timeline{}, time.Now())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(got, []byte("%PDF-")))
}
