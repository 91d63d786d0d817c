package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pontos/nearby-points/internal/places"
)

// record is the on-disk shape of a dataset entry.
type record struct {
	Name         string  `json:"nome_estabelecimento"`
	Address      string  `json:"endereco"`
	Neighborhood string  `json:"bairro"`
	City         string  `json:"cidade"`
	State        string  `json:"estado"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Tag          string  `json:"tag"`
}

func (r record) toLocation() places.Location {
	return places.Location{
		EstablishmentName: r.Name,
		Address:           r.Address,
		Neighborhood:      r.Neighborhood,
		City:              r.City,
		State:             r.State,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		Tag:               r.Tag,
	}
}

// ParseJSON decodes a JSON array of records, keeping source order.
// Entries are not validated.
func ParseJSON(r io.Reader) ([]places.Location, error) {
	var raw []record
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	out := make([]places.Location, 0, len(raw))
	for _, rec := range raw {
		out = append(out, rec.toLocation())
	}
	return out, nil
}

// LoadJSON reads a JSON dataset file.
func LoadJSON(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	records, err := ParseJSON(f)
	if err != nil {
		return Result{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return Result{Records: records, Source: path}, nil
}
