package places

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied is returned when the user has not granted location access.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrNoFix is returned when no locator could produce a position.
	ErrNoFix = errors.New("no location fix available")
	// ErrNoLocators is returned when a refresh is requested but none are configured.
	ErrNoLocators = errors.New("no locators configured")
)

// Locator abstracts a source of observer positions (IP geolocation,
// address geocoding, a fixed position).
type Locator interface {
	Name() string
	Locate(ctx context.Context, req LocateRequest) (Coordinate, error)
}

// Store is the contract the in-memory session store must satisfy.
type Store interface {
	Create() Session
	Get(id string) (Session, error)
	SaveFix(id string, fix Fix) (Session, error)
	SetScope(id, scope string) (Session, error)
	// SetScopeIfUnset stores scope only while the session has none.
	SetScopeIfUnset(id, scope string) (Session, error)
	SetRequest(id string, req *LocateRequest) error
	List() []Session
	PurgeExpired() int
}
