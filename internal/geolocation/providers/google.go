package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/pontos/nearby-points/internal/places"
)

// GoogleGeocoderLocator turns a postal address into a position using the
// Google Geocoding API.
type GoogleGeocoderLocator struct {
	name    string
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
	geocode func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoderLocator sets the package-wide geocoder API key.
func NewGoogleGeocoderLocator(apiKey string) *GoogleGeocoderLocator {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoderLocator{
		name:    "google-geocoder",
		backoff: DefaultBackoff,
		circuit: newBreaker("google-geocoder"),
		geocode: geocoder.Geocoding,
	}
}

func (l *GoogleGeocoderLocator) Name() string {
	return l.name
}

func (l *GoogleGeocoderLocator) Locate(ctx context.Context, req places.LocateRequest) (places.Coordinate, error) {
	if req.Address.Empty() {
		return places.Coordinate{}, fmt.Errorf("%w: no address supplied", places.ErrNoFix)
	}

	addr := geocoder.Address{
		Street:  req.Address.Street,
		Number:  req.Address.Number,
		City:    req.Address.City,
		State:   req.Address.State,
		Country: req.Address.Country,
	}

	return locateWithResilience(ctx, l.backoff, l.circuit, func(ctx context.Context) (places.Coordinate, error) {
		type result struct {
			loc geocoder.Location
			err error
		}
		// The geocoder client has no context support.
		done := make(chan result, 1)
		go func() {
			loc, err := l.geocode(addr)
			done <- result{loc: loc, err: err}
		}()

		select {
		case <-ctx.Done():
			return places.Coordinate{}, ctx.Err()
		case r := <-done:
			if r.err != nil {
				return places.Coordinate{}, r.err
			}
			if r.loc.Latitude == 0 && r.loc.Longitude == 0 {
				return places.Coordinate{}, permanent(errors.New("geocoder returned no result"))
			}
			return places.Coordinate{Latitude: r.loc.Latitude, Longitude: r.loc.Longitude}, nil
		}
	})
}
