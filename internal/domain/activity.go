package domain

import "time"

// ActivityEntry is one intermediate event within a trip: a pickup, a
// delivery, a waiting period, and so on. Entries are immutable once
// accepted by the server and are re-fetched as part of the trip's
// activity list on each view refresh.
//
// Exactly one time representation applies: Timestamp for a point-in-time
// event, or TimestampFrom+TimestampTo for a duration event such as a
// waiting period. An entry with neither is invalid and must be rejected
// before submission.
type ActivityEntry struct {
	Activity      string
	Location      string
	Timestamp     *time.Time
	TimestampFrom *time.Time
	TimestampTo   *time.Time

	Quantity       string
	LoadType       string
	PartyName      string
	Notes          string
	TrackingNumber string
}

// IsRange reports whether the entry is a duration event with both ends set.
func (e ActivityEntry) IsRange() bool {
	return e.TimestampFrom != nil && e.TimestampTo != nil
}

// HasTime reports whether the entry carries a usable time representation:
// a point timestamp or a complete from/to range.
func (e ActivityEntry) HasTime() bool {
	return e.Timestamp != nil || e.IsRange()
}

// AllowList is a server-provided set of permitted values for an open,
// data-driven field such as activity type or load type. The server
// controls membership, so these are never compile-time enums.
//
// An empty list permits anything: dropdown fetches degrade gracefully
// and must not block submission when the list could not be loaded.
type AllowList []string

// Permits reports whether value is acceptable under the list.
func (l AllowList) Permits(value string) bool {
	if len(l) == 0 {
		return true
	}
	for _, item := range l {
		if item == value {
			return true
		}
	}
	return false
}
