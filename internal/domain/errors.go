package domain

import "errors"

// ErrNotFound is returned by store implementations when the requested
// cache key has no value.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing required field, a range entry with only one end set).
// The wrapped message names the offending fields so the UI can surface
// a blocking alert the user can act on.
var ErrValidation = errors.New("validation error")

// ErrState is returned when an operation is attempted in the wrong trip
// lifecycle state — finishing a trip that was never started, appending an
// activity to a finished trip, or re-submitting while a submission is in
// flight. Usually indicates a stale or missing cached session.
var ErrState = errors.New("state error")

// ErrRemote is returned when the remote API fails or replies with an
// unexpected response shape. Always recoverable by retrying; the caller
// re-enables the triggering control.
var ErrRemote = errors.New("remote error")
