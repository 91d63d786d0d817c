package places

import (
	"math"
	"sort"

	"github.com/pontos/nearby-points/internal/common"
)

// FindNearest scans records left to right and returns the one closest to
// observer. Ties keep the first occurrence. Records whose distance is NaN
// never match. ok is false when nothing matched.
func FindNearest(observer Coordinate, records []Location) (nearest Location, ok bool) {
	minDist := math.Inf(1)
	for _, r := range records {
		d := Distance(observer, r.Coordinate())
		if d < minDist {
			minDist = d
			nearest = r
			ok = true
		}
	}
	return nearest, ok
}

// Rank returns the records of the given city scope, optionally narrowed by a
// free-text query on name or address, ordered by ascending distance from
// observer. Records without a distance sort last in input order.
// An empty scope yields an empty result.
func Rank(records []Location, scope string, observer *Coordinate, query string) []Ranked {
	if scope == "" {
		return []Ranked{}
	}

	out := make([]Ranked, 0)
	for _, r := range records {
		if !common.EqualFold(r.City, scope) {
			continue
		}
		if query != "" && !common.ContainsAnyFold(query, r.EstablishmentName, r.Address) {
			continue
		}
		out = append(out, NewRanked(r, observer))
	}

	sortByDistance(out)
	return out
}

// TopNearest returns the n records closest to observer across the whole
// dataset. Without an observer it returns the first n records in dataset
// order, all unresolved, so a summary view is never empty for lack of a fix.
func TopNearest(records []Location, observer *Coordinate, n int) []Ranked {
	if n <= 0 {
		return []Ranked{}
	}

	if observer == nil {
		if n > len(records) {
			n = len(records)
		}
		out := make([]Ranked, 0, n)
		for _, r := range records[:n] {
			out = append(out, NewRanked(r, nil))
		}
		return out
	}

	out := make([]Ranked, 0, len(records))
	for _, r := range records {
		out = append(out, NewRanked(r, observer))
	}
	sortByDistance(out)

	if n < len(out) {
		out = out[:n]
	}
	return out
}

// ListCities returns one representative per distinct city (compared without
// case), sorted by the representative. The last spelling seen for a city wins.
func ListCities(records []Location) []string {
	byKey := make(map[string]string)
	for _, r := range records {
		byKey[common.Fold(r.City)] = r.City
	}

	cities := make([]string, 0, len(byKey))
	for _, c := range byKey {
		cities = append(cities, c)
	}
	sort.Strings(cities)
	return cities
}

// NewRanked computes the distance of r from observer, if any, and its
// display form.
func NewRanked(r Location, observer *Coordinate) Ranked {
	ranked := Ranked{Location: r}
	if observer != nil {
		d := Distance(*observer, r.Coordinate())
		ranked.DistanceKm = &d
	}
	ranked.DisplayDistance = FormatDistance(ranked.DistanceKm)
	return ranked
}

// sortByDistance orders resolved entries by ascending distance and moves
// unresolved ones to the end. The sort is stable.
func sortByDistance(items []Ranked) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].DistanceKm, items[j].DistanceKm
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}
