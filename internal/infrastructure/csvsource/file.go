package csvsource

import (
	"context"
	"fmt"
	"os"

	"github.com/prelovedguru/backend/internal/domain"
)

// FileSource reads the product export from the local filesystem
type FileSource struct {
	path string
}

// NewFileSource creates a source for the CSV file at path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Rows reads and parses the whole file
func (s *FileSource) Rows(ctx context.Context) ([]domain.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	rows, err := ParseRows(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return rows, nil
}
