package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into domain errors:
//   - ErrNotFound: row does not exist
//   - ErrConflict: unique key already taken
//   - ErrExpired: guest session past its expiry
//   - ErrLockTimeout: the row lock could not be acquired in time
//   - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrLockTimeout = errors.New("lock timeout")
	ErrUnavailable = errors.New("unavailable")
)
