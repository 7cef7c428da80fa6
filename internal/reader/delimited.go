package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/saldo-fin/saldo/internal/domain"
)

// ReadFile reads one raw export file into header-keyed rows, dispatching on
// the file extension. An empty file yields no rows and no error.
func ReadFile(path string, preset domain.Preset) ([]domain.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		rows, err := ReadOFX(f, preset)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return rows, nil
	default:
		rows, err := ReadDelimited(f, preset)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return rows, nil
	}
}

// ReadDelimited reads a delimited export using the preset's delimiter and
// keys each row by the header line. Every column the preset declares must be
// present in the header; a missing column fails the whole file with
// domain.ErrConfiguration, since the preset no longer matches what the bank
// exports.
func ReadDelimited(r io.Reader, preset domain.Preset) ([]domain.RawRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = preset.Delimiter
	cr.TrimLeadingSpace = true
	// Some banks pad rows unevenly; key by header and ignore the excess.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}
	for _, col := range preset.Columns() {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("header is missing column %q declared by preset %s: %w",
				col, preset.ID, domain.ErrConfiguration)
		}
	}

	var rows []domain.RawRow
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}

		row := make(domain.RawRow, len(index))
		for col, i := range index {
			if i < len(fields) {
				row[col] = fields[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
