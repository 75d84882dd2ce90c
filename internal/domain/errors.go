package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist — or exists but is filtered out by visibility
// rules (an unpublished itinerary read by a non-owner looks absent).
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. day_number below 1, rating out of range).
// Detected before any persistence begins. Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrPermissionDenied is returned when an authenticated caller attempts an
// operation on a resource they do not own (itinerary mutation, review edit).
// Handlers should map this to HTTP 403.
var ErrPermissionDenied = errors.New("permission denied")

// ErrDuplicate is returned when a write would violate a uniqueness invariant,
// e.g. a second review for the same (user, itinerary) pair or registering an
// email that is already taken. Handlers should map this to HTTP 409.
var ErrDuplicate = errors.New("already exists")

// ErrPersist is returned when a multi-row aggregate write fails unexpectedly
// mid-transaction. The transaction is rolled back, the full context is
// logged, and the caller sees only a generic failure (HTTP 500).
var ErrPersist = errors.New("persist error")
