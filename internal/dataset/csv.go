package dataset

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"figmgr/internal/figerr"
)

// Load reads a CSV file with a header row.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, figerr.DataLoad("load dataset", "input file %s not found", path)
		}
		return nil, figerr.DataLoad("load dataset", "open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, path)
}

// Read parses CSV from r. name is used in error messages.
func Read(r io.Reader, name string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, figerr.DataLoad("load dataset", "parse %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, figerr.DataLoad("load dataset", "%s is empty", name)
	}

	header := records[0]
	body := records[1:]
	if len(body) == 0 {
		return nil, figerr.DataLoad("load dataset", "%s has a header but no rows", name)
	}

	cols := make([]*Column, len(header))
	for j, colName := range header {
		cells := make([]string, len(body))
		for i, rec := range body {
			cells[i] = rec[j]
		}
		cols[j] = inferColumn(colName, cells)
	}

	d, err := FromColumns(cols...)
	if err != nil {
		return nil, figerr.DataLoad("load dataset", "%s: %w", name, err)
	}
	return d, nil
}

// Require checks that every named column exists and names all missing ones.
func (d *Dataset) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if !d.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return figerr.DataLoad("check columns", "missing columns %s (have %s)",
			strings.Join(missing, ", "), strings.Join(d.Columns(), ", "))
	}
	return nil
}
