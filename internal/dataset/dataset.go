package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pontos/nearby-points/internal/places"
)

//go:embed data/postos.json
var bundled []byte

var (
	// ErrUnsupportedFormat is returned for dataset files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	// ErrMissingColumn is returned when a tabular source lacks a required column.
	ErrMissingColumn = errors.New("missing dataset column")
)

// Column names shared by every source format.
const (
	colName         = "nome_estabelecimento"
	colAddress      = "endereco"
	colNeighborhood = "bairro"
	colCity         = "cidade"
	colState        = "estado"
	colLatitude     = "latitude"
	colLongitude    = "longitude"
	colTag          = "tag"
)

// Options tune format specific readers.
type Options struct {
	// Sheet is the XLSX worksheet holding the records.
	Sheet string
	// Table is the SQLite table holding the records.
	Table string
}

// Result is the outcome of loading a dataset.
type Result struct {
	Records []places.Location
	// Skipped counts rows dropped because their coordinates could not be parsed.
	Skipped int
	Source  string
}

// Load reads the dataset at path, choosing the reader by file extension.
// An empty path loads the bundled dataset.
func Load(ctx context.Context, path string, opts Options) (Result, error) {
	if path == "" {
		return Bundled()
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	case ".xlsx":
		return LoadXLSX(path, opts.Sheet)
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(ctx, path, opts.Table)
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Bundled returns the dataset compiled into the binary.
func Bundled() (Result, error) {
	records, err := ParseJSON(bytes.NewReader(bundled))
	if err != nil {
		return Result{}, fmt.Errorf("bundled dataset: %w", err)
	}
	return Result{Records: records, Source: "bundled"}, nil
}
