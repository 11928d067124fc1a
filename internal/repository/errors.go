package repository

// Sentinel errors shared by the repositories.  These let handlers
// distinguish access failures from missing rows without depending on
// SQL internals.

import "errors"

// ErrForbidden is returned when the caller attempts to read a record
// owned by a different user.  Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEventNotFound is returned when a referenced event does not exist.
var ErrEventNotFound = errors.New("event not found")
