// Package draft validates and normalizes one pending activity entry
// before it becomes a submittable domain.ActivityEntry. A Draft is the
// mutable staging object behind the add-activity and waiting-time forms;
// picker open/closed state and other purely visual concerns stay in the
// UI layer.
package draft

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simplydispatch/driverslog/internal/domain"
)

// ClockLayout is the 24-hour clock format the time pickers produce.
const ClockLayout = "15:04"

// Draft mirrors ActivityEntry's fields with times held as picker clock
// strings. The calendar date is attached only at submission.
type Draft struct {
	// ID identifies the draft across edits; a fresh one is assigned on
	// Reset so a resubmitted form is never confused with the last one.
	ID uuid.UUID

	Activity string
	Location string

	// Clock is the point-in-time entry ("15:04"); FromClock/ToClock are
	// the duration entry. The two representations are mutually exclusive
	// and at least one must be complete at submission.
	Clock     string
	FromClock string
	ToClock   string

	Quantity       string
	LoadType       string
	PartyName      string
	Notes          string
	TrackingNumber string

	// Allowed is the server-fetched activity allow-list and
	// AllowedLoadTypes the load-type one. Empty lists permit anything so
	// a failed dropdown fetch never blocks submission.
	Allowed          domain.AllowList
	AllowedLoadTypes domain.AllowList

	now func() time.Time
}

// New returns an empty draft using the wall clock for submission dates.
func New() *Draft {
	return NewAt(time.Now)
}

// NewAt returns an empty draft with an injected clock, for tests.
func NewAt(now func() time.Time) *Draft {
	return &Draft{ID: uuid.New(), now: now}
}

// SetQuantity stages a quantity keystroke, stripping non-digit runes.
// Non-numeric input is dropped silently — the input-mask policy — so
// "12a3b4" stages as "1234".
func (d *Draft) SetQuantity(input string) {
	d.Quantity = DigitsOnly(input)
}

// SetTrackingNumber stages a tracking number keystroke under the same
// digits-only mask as SetQuantity.
func (d *Draft) SetTrackingNumber(input string) {
	d.TrackingNumber = DigitsOnly(input)
}

// LocationLabel names what the location field semantically holds: a
// shipper location when the activity is exactly "Pickup", a delivery or
// consignee location otherwise. This drives placeholder text and how the
// geocode query is framed; the stored shape is unaffected.
func (d *Draft) LocationLabel() string {
	if d.Activity == "Pickup" {
		return "Shipper"
	}
	return "Location"
}

// ToActivityEntry validates the draft and produces the submittable entry.
// Returns domain.ErrValidation naming what is missing or malformed.
//
// The calendar date for every produced timestamp is "today" at the moment
// of this call, joined with the user-chosen clock time. A draft opened
// before midnight and submitted after it therefore dates to the new day —
// known behavior, kept deliberately.
func (d *Draft) ToActivityEntry() (domain.ActivityEntry, error) {
	var missing []string
	if strings.TrimSpace(d.Activity) == "" {
		missing = append(missing, "activity")
	}
	if strings.TrimSpace(d.Location) == "" {
		missing = append(missing, "location")
	}
	if d.Clock == "" && d.FromClock == "" && d.ToClock == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return domain.ActivityEntry{}, fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}

	if !d.Allowed.Permits(d.Activity) {
		return domain.ActivityEntry{}, fmt.Errorf("%w: activity %q is not in the current list", domain.ErrValidation, d.Activity)
	}
	if d.LoadType != "" && !d.AllowedLoadTypes.Permits(d.LoadType) {
		return domain.ActivityEntry{}, fmt.Errorf("%w: load type %q is not in the current list", domain.ErrValidation, d.LoadType)
	}

	entry := domain.ActivityEntry{
		Activity:       d.Activity,
		Location:       d.Location,
		Quantity:       d.Quantity,
		LoadType:       d.LoadType,
		PartyName:      d.PartyName,
		Notes:          d.Notes,
		TrackingNumber: d.TrackingNumber,
	}

	switch {
	case d.FromClock != "" || d.ToClock != "":
		// A duration entry needs both ends.
		if d.FromClock == "" || d.ToClock == "" {
			return domain.ActivityEntry{}, fmt.Errorf("%w: both from and to times are required", domain.ErrValidation)
		}
		from, err := d.today(d.FromClock)
		if err != nil {
			return domain.ActivityEntry{}, err
		}
		to, err := d.today(d.ToClock)
		if err != nil {
			return domain.ActivityEntry{}, err
		}
		entry.TimestampFrom = &from
		entry.TimestampTo = &to
	default:
		at, err := d.today(d.Clock)
		if err != nil {
			return domain.ActivityEntry{}, err
		}
		entry.Timestamp = &at
	}

	return entry, nil
}

// Reset clears the draft back to empty after a successful submission,
// keeping the injected clock and allow-lists.
func (d *Draft) Reset() {
	*d = Draft{ID: uuid.New(), Allowed: d.Allowed, AllowedLoadTypes: d.AllowedLoadTypes, now: d.now}
}

// today joins the submission-time calendar date with a picker clock value.
func (d *Draft) today(clock string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q is not HH:MM", domain.ErrValidation, clock)
	}
	now := d.now()
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}

// DigitsOnly strips every non-digit rune from input. It backs the
// numeric input masks (odometer, quantity, route number, tracking
// number) and is applied on every keystroke, not only at submission.
func DigitsOnly(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
