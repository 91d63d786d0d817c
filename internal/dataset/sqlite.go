package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/pontos/nearby-points/internal/places"
)

// DefaultTable is read when no table name is configured.
const DefaultTable = "postos"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadSQLite reads every row of table in rowid order. Rows with missing or
// unparseable coordinates are skipped and counted. The database is only
// read; the snapshot lives in memory afterwards.
func LoadSQLite(ctx context.Context, path, table string) (Result, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return Result{}, fmt.Errorf("invalid table name %q", table)
	}
	if _, err := os.Stat(path); err != nil {
		return Result{}, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open dataset database: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		ORDER BY rowid
	`, colName, colAddress, colNeighborhood, colCity, colState, colLatitude, colLongitude, colTag, table)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("failed to query dataset: %w", err)
	}
	defer rows.Close()

	res := Result{Records: []places.Location{}, Source: path}
	for rows.Next() {
		var name, address, neighborhood, city, state, latText, lonText, tag sql.NullString
		if err := rows.Scan(&name, &address, &neighborhood, &city, &state, &latText, &lonText, &tag); err != nil {
			return Result{}, fmt.Errorf("failed to scan dataset row: %w", err)
		}

		lat, err1 := parseCoord(latText.String)
		lon, err2 := parseCoord(lonText.String)
		if err1 != nil || err2 != nil {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, places.Location{
			EstablishmentName: name.String,
			Address:           address.String,
			Neighborhood:      neighborhood.String,
			City:              city.String,
			State:             state.String,
			Latitude:          lat,
			Longitude:         lon,
			Tag:               tag.String,
		})
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("failed to read dataset rows: %w", err)
	}
	return res, nil
}
