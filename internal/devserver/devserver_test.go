package devserver_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplydispatch/driverslog/internal/api"
	"github.com/simplydispatch/driverslog/internal/devserver"
	"github.com/simplydispatch/driverslog/internal/domain"
)

func newClient(t *testing.T) *api.Client {
	t.Helper()
	srv := devserver.NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return api.New(ts.URL, 2*time.Second)
}

// signedIn registers and logs in a driver, leaving the apikey on the client.
func signedIn(t *testing.T) *api.Client {
	t.Helper()
	c := newClient(t)
	ctx := context.Background()
	require.NoError(t, c.Register(ctx, "Pat Driver", "pat@example.com", "hunter2"))
	_, err := c.Login(ctx, "pat@example.com", "hunter2")
	require.NoError(t, err)
	return c
}

func startEvent() domain.TripEvent {
	return domain.TripEvent{
		Timestamp: time.Date(2025, 1, 29, 8, 0, 0, 0, time.UTC),
		Location:  "Toronto Yard",
		Odometer:  "120345",
		Truck:     "TRK-12",
		Trailer:   "TRL-7",
	}
}

// ---- auth tests ------------------------------------------------------------

func TestAuth_RegisterAndLogin(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "Pat Driver", "pat@example.com", "hunter2"))

	key, err := c.Login(ctx, "pat@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, key)

	assert.NoError(t, c.ValidateUser(ctx))
}

func TestAuth_LoginWrongPassword(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	require.NoError(t, c.Register(ctx, "Pat Driver", "pat@example.com", "hunter2"))

	_, err := c.Login(ctx, "pat@example.com", "wrong")

	assert.ErrorIs(t, err, api.ErrInvalidCredentials)
}

func TestAuth_DuplicateRegister(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	require.NoError(t, c.Register(ctx, "Pat Driver", "pat@example.com", "hunter2"))

	err := c.Register(ctx, "Pat Again", "pat@example.com", "other")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuth_UpdatePassword(t *testing.T) {
	c := signedIn(t)
	ctx := context.Background()

	require.NoError(t, c.UpdatePassword(ctx, "newpass"))

	_, err := c.Login(ctx, "pat@example.com", "hunter2")
	assert.ErrorIs(t, err, api.ErrInvalidCredentials)
	_, err = c.Login(ctx, "pat@example.com", "newpass")
	assert.NoError(t, err)
}

// ---- trip tests ------------------------------------------------------------

func TestTrip_FullDay(t *testing.T) {
	c := signedIn(t)
	ctx := context.Background()

	// Start: the server assigns the trip number and activity window.
	started, err := c.StartTrip(ctx, startEvent())
	require.NoError(t, err)
	require.Equal(t, api.ResultSuccess, started.Kind)
	assert.Equal(t, "T001", started.TripNumber)
	assert.Equal(t, "2025-01-29 22:00:00", started.Session.MaxActivityLimit)
	require.NotNil(t, started.Session.Start)
	assert.Equal(t, "Toronto Yard", started.Session.Start.Location)

	// Add a point activity and a range activity.
	pickupAt := time.Date(2025, 1, 29, 9, 15, 0, 0, time.UTC)
	from := time.Date(2025, 1, 29, 10, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 29, 11, 30, 0, 0, time.UTC)
	added, err := c.AddActivities(ctx, started.TripNumber, []domain.ActivityEntry{
		{Activity: "Pickup", Location: "Dock 4", Timestamp: &pickupAt, Quantity: "3", LoadType: "Pallet"},
		{Activity: "Waiting for dock", Location: "Consignee gate", TimestampFrom: &from, TimestampTo: &to},
	})
	require.NoError(t, err)
	require.Equal(t, api.ResultSuccess, added.Kind)

	// The fetch returns them in submission order.
	entries, err := c.TripActivities(ctx, started.TripNumber)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Pickup", entries[0].Activity)
	require.NotNil(t, entries[0].Timestamp)
	assert.Equal(t, pickupAt, *entries[0].Timestamp)
	assert.Equal(t, "Waiting for dock", entries[1].Activity)
	require.NotNil(t, entries[1].TimestampFrom)
	require.NotNil(t, entries[1].TimestampTo)

	// Finish closes the trip.
	finish := startEvent()
	finish.Timestamp = time.Date(2025, 1, 29, 18, 30, 0, 0, time.UTC)
	finish.RouteNumber = "44"
	finished, err := c.FinishTrip(ctx, started.TripNumber, finish)
	require.NoError(t, err)
	require.Equal(t, api.ResultSuccess, finished.Kind)
	require.NotNil(t, finished.Session.Finish)
	assert.Equal(t, "T001", finished.Session.Finish.TripNumber)

	// No further mutations after the finish.
	again, err := c.FinishTrip(ctx, started.TripNumber, finish)
	require.NoError(t, err)
	assert.Equal(t, api.ResultFailure, again.Kind)

	late, err := c.AddActivities(ctx, started.TripNumber, []domain.ActivityEntry{
		{Activity: "Pickup", Location: "Dock 5", Timestamp: &pickupAt},
	})
	require.NoError(t, err)
	assert.Equal(t, api.ResultFailure, late.Kind)
}

func TestTrip_NumbersAssignedInOrder(t *testing.T) {
	c := signedIn(t)
	ctx := context.Background()

	first, err := c.StartTrip(ctx, startEvent())
	require.NoError(t, err)
	second, err := c.StartTrip(ctx, startEvent())
	require.NoError(t, err)

	assert.Equal(t, "T001", first.TripNumber)
	assert.Equal(t, "T002", second.TripNumber)
}

func TestTrip_UnknownTripNumber(t *testing.T) {
	c := signedIn(t)

	result, err := c.FinishTrip(context.Background(), "T999", startEvent())

	require.NoError(t, err)
	assert.Equal(t, api.ResultFailure, result.Kind)
	assert.Contains(t, result.Message, "unknown trip number")
}

func TestTrip_RejectsMissingAPIKey(t *testing.T) {
	c := newClient(t) // never logged in

	result, err := c.StartTrip(context.Background(), startEvent())

	require.NoError(t, err)
	assert.Equal(t, api.ResultInvalid, result.Kind)
}

// ---- dropdown tests --------------------------------------------------------

func TestDropdowns(t *testing.T) {
	c := signedIn(t)
	ctx := context.Background()

	dd, err := c.ActivityDropdowns(ctx)
	require.NoError(t, err)
	assert.Contains(t, []string(dd.Activity), "Pickup")
	assert.Contains(t, []string(dd.Primary), "Start Day")
	assert.Contains(t, []string(dd.Waiting), "Waiting for dock")

	loadTypes, err := c.LoadTypes(ctx)
	require.NoError(t, err)
	assert.Contains(t, []string(loadTypes), "Pallet")

	eq, err := c.EquipmentLists(ctx)
	require.NoError(t, err)
	assert.Contains(t, eq.Trucks, "TRK-12")
	assert.Contains(t, eq.Trailers, "TRL-7")
}
