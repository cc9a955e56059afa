// Package store provides the persistent key-value cache the trip session
// lives in between app restarts. Values are JSON-encoded blobs; the keys
// are the small fixed set below. The session service depends on the Store
// interface, not a concrete implementation, so unit tests can swap in the
// in-memory store.
package store

import "context"

// Cache keys. These mirror the keys the mobile client has always used,
// so a cache written by an older build stays readable.
const (
	// KeyToken holds the API key obtained at login.
	KeyToken = "token"
	// KeyStartedTrip holds the JSON session blob written after a
	// successful trip start.
	KeyStartedTrip = "startedTrip"
	// KeyFinishTrip holds the JSON finish blob written after a
	// successful trip finish.
	KeyFinishTrip = "finishtrip"
	// KeyUserProfile holds the cached user profile blob.
	KeyUserProfile = "userprofile"
)

// Store is the persistent key-value contract.
// Get returns domain.ErrNotFound when the key has no value.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
