package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pontos/nearby-points/internal/places"
)

// DefaultSheet is read when no sheet name is configured.
const DefaultSheet = "Pos"

// LoadXLSX reads records from a worksheet whose first row holds the column
// names. Rows with unparseable coordinates are skipped and counted.
func LoadXLSX(path, sheet string) (Result, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return Result{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return Result{Records: []places.Location{}, Source: path}, nil
	}

	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colName, colCity, colLatitude, colLongitude} {
		if _, ok := idx[required]; !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	res := Result{Records: make([]places.Location, 0, len(rows)-1), Source: path}
	for _, row := range rows[1:] {
		lat, err1 := parseCoord(cell(row, colLatitude))
		lon, err2 := parseCoord(cell(row, colLongitude))
		if err1 != nil || err2 != nil {
			res.Skipped++
			continue
		}

		res.Records = append(res.Records, places.Location{
			EstablishmentName: cell(row, colName),
			Address:           cell(row, colAddress),
			Neighborhood:      cell(row, colNeighborhood),
			City:              cell(row, colCity),
			State:             cell(row, colState),
			Latitude:          lat,
			Longitude:         lon,
			Tag:               cell(row, colTag),
		})
	}
	return res, nil
}

// parseCoord accepts both "." and "," as decimal separator.
func parseCoord(val string) (float64, error) {
	val = strings.ReplaceAll(val, ",", ".")
	if val == "" {
		return 0, fmt.Errorf("empty coordinate")
	}
	return strconv.ParseFloat(val, 64)
}
