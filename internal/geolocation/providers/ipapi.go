package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/pontos/nearby-points/internal/places"
)

// DefaultIPAPIURL is the public ip-api.com JSON endpoint.
const DefaultIPAPIURL = "http://ip-api.com/json"

// IPAPILocator resolves the client IP address to an approximate position.
type IPAPILocator struct {
	name    string
	baseURL string
	client  *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

func NewIPAPILocator(client *http.Client, baseURL string) *IPAPILocator {
	if baseURL == "" {
		baseURL = DefaultIPAPIURL
	}
	return &IPAPILocator{
		name:    "ipapi",
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		backoff: DefaultBackoff,
		circuit: newBreaker("ipapi"),
	}
}

func (l *IPAPILocator) Name() string {
	return l.name
}

func (l *IPAPILocator) Locate(ctx context.Context, req places.LocateRequest) (places.Coordinate, error) {
	if l.client == nil {
		return places.Coordinate{}, errors.New("http client not configured")
	}
	if req.ClientIP == "" {
		return places.Coordinate{}, fmt.Errorf("%w: client ip unknown", places.ErrNoFix)
	}

	return locateWithResilience(ctx, l.backoff, l.circuit, func(ctx context.Context) (places.Coordinate, error) {
		u := fmt.Sprintf("%s/%s?fields=status,message,lat,lon", l.baseURL, url.PathEscape(req.ClientIP))
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return places.Coordinate{}, permanent(err)
		}

		resp, err := l.client.Do(httpReq)
		if err != nil {
			return places.Coordinate{}, err
		}
		defer resp.Body.Close()

		if err := checkStatus(resp); err != nil {
			return places.Coordinate{}, err
		}

		var payload struct {
			Status  string  `json:"status"`
			Message string  `json:"message"`
			Lat     float64 `json:"lat"`
			Lon     float64 `json:"lon"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return places.Coordinate{}, permanent(err)
		}

		if payload.Status != "success" {
			return places.Coordinate{}, permanent(fmt.Errorf("%w: %s", places.ErrNoFix, payload.Message))
		}

		return places.Coordinate{Latitude: payload.Lat, Longitude: payload.Lon}, nil
	})
}
