// Package feed converts CSV media catalogs into the JSON documents consumed
// by the TV reference app and by media action feeds.
package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Row is one CSV record keyed by header column. Header columns past the end
// of a short record hold nil, which encodes as JSON null.
type Row map[string]any

// Get returns the value of column, or a *MissingColumnError when the header
// has no such column
func (r Row) Get(column string) (any, error) {
	v, ok := r[column]
	if !ok {
		return nil, &MissingColumnError{Column: column}
	}
	return v, nil
}

// Text is Get for values used as text; a nil value reads as ""
func (r Row) Text(column string) (string, error) {
	v, err := r.Get(column)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

// ReadRows parses CSV with a header line. Records shorter than the header
// get nil for their trailing columns.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	rows := []Row{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		row := make(Row, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			} else {
				row[column] = nil
			}
		}
		rows = append(rows, row)
	}
}

// ReadFile reads every row of a CSV file
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRows(f)
}
