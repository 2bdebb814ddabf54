package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prelovedguru/backend/internal/domain"
)

var errNoHeader = errors.New("csv has no header row")

// ParseRows splits a CSV document into header-keyed rows. Row positions are
// 1-based over data rows. Short rows leave their trailing columns absent and
// extra fields without a header are dropped.
func ParseRows(r io.Reader) ([]domain.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}

	var rows []domain.RawRow
	for position := 1; ; position++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", position, err)
		}

		fields := make(map[string]string, len(header))
		for i, value := range record {
			if i >= len(header) || header[i] == "" {
				continue
			}
			fields[header[i]] = value
		}
		rows = append(rows, domain.RawRow{Position: position, Fields: fields})
	}

	return rows, nil
}
