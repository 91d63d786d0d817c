package places

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DistanceUnavailable is shown in place of a distance when no observer
// position is known.
const DistanceUnavailable = "N/A"

// FormatDistance renders a distance with one decimal and the unit suffix.
func FormatDistance(km *float64) string {
	if km == nil {
		return DistanceUnavailable
	}
	return fmt.Sprintf("%.1f Km", *km)
}

// FormatCityName title-cases every word of a city name ("PONTA GROSSA" ->
// "Ponta Grossa") for display in scope pickers.
func FormatCityName(city string) string {
	return cases.Title(language.BrazilianPortuguese).String(strings.ToLower(city))
}

// MapPlatform selects the URL scheme understood by the device map app.
type MapPlatform string

const (
	MapPlatformAndroid MapPlatform = "android"
	MapPlatformIOS     MapPlatform = "ios"
)

// MapLink builds the URL handed to the platform map application for a
// chosen record. The label is optional.
func MapLink(platform MapPlatform, latitude, longitude float64, label string) string {
	scheme := "geo:0,0?q="
	if platform == MapPlatformIOS {
		scheme = "maps:0,0?q="
	}

	q := fmt.Sprintf("%v,%v", latitude, longitude)
	if label != "" {
		q = fmt.Sprintf("%s(%s)", q, label)
	}
	return scheme + q
}
