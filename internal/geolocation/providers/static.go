package providers

import (
	"context"

	"github.com/pontos/nearby-points/internal/places"
)

// StaticLocator always answers with a configured position. It is meant as
// the last link of the chain for kiosk style deployments.
type StaticLocator struct {
	position places.Coordinate
}

func NewStaticLocator(position places.Coordinate) *StaticLocator {
	return &StaticLocator{position: position}
}

func (l *StaticLocator) Name() string {
	return "static"
}

func (l *StaticLocator) Locate(ctx context.Context, _ places.LocateRequest) (places.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return places.Coordinate{}, err
	}
	return l.position, nil
}
