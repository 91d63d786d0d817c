package places

import "time"

// Coordinate is a point on the globe in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Location is a single establishment from the bundled dataset.
// Records are loaded once and treated as read-only afterwards.
type Location struct {
	EstablishmentName string  `json:"establishmentName"`
	Address           string  `json:"address"`
	Neighborhood      string  `json:"neighborhood"`
	City              string  `json:"city"`
	State             string  `json:"state"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Tag               string  `json:"categoryTag"`
}

// Coordinate returns the record position.
func (l Location) Coordinate() Coordinate {
	return Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Ranked is a Location enriched with its distance from the observer.
// DistanceKm is nil when no observer position was available.
type Ranked struct {
	Location
	DistanceKm      *float64 `json:"distanceKm"`
	DisplayDistance string   `json:"displayDistance"`
}

// Resolved reports whether a numeric distance was computed.
func (r Ranked) Resolved() bool {
	return r.DistanceKm != nil
}

// Permission mirrors the platform location permission status.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Address is a structured postal address used by geocoding locators.
type Address struct {
	Street  string `json:"street"`
	Number  int    `json:"number"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Empty reports whether no address component was supplied.
func (a Address) Empty() bool {
	return a.Street == "" && a.City == "" && a.State == "" && a.Country == ""
}

// LocateRequest carries the hints a Locator may use to obtain a fix.
type LocateRequest struct {
	Permission Permission `json:"permission"`
	ClientIP   string     `json:"clientIp,omitempty"`
	Address    Address    `json:"address"`
}

// Fix is a single observer position obtained from a source.
type Fix struct {
	Coordinate
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"` // always UTC
}

// Session is the per-client view of observer state.
type Session struct {
	ID        string         `json:"id"`
	Observer  *Coordinate    `json:"observer"`
	Scope     string         `json:"scope,omitempty"`
	Request   *LocateRequest `json:"-"`
	Fixes     []Fix          `json:"fixes,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
