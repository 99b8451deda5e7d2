package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/candidate-ranker/internal/types"
)

// FileSource reads candidates from a JSON file holding an array of records.
// The file is re-read on every call so edits are picked up without a restart.
type FileSource struct {
	path string
}

// NewFileSource creates a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the file the source reads.
func (s *FileSource) Path() string {
	return s.path
}

// List reads every record in the file.
func (s *FileSource) List(_ context.Context) ([]types.CandidateRecord, error) {
	return LoadFile(s.path)
}

// Get returns the record with id, or ErrNotFound.
func (s *FileSource) Get(ctx context.Context, id int64) (*types.CandidateRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return findByID(records, id)
}

// LoadFile reads a JSON array of candidate records from path.
func LoadFile(path string) ([]types.CandidateRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidates file: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := DecodeRecords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse candidates file %s: %w", path, err)
	}
	return records, nil
}

// DecodeRecords decodes a JSON array of candidate records. Unknown fields are ignored.
func DecodeRecords(r io.Reader) ([]types.CandidateRecord, error) {
	var records []types.CandidateRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []types.CandidateRecord{}
	}
	return records, nil
}

// Static serves a fixed set of records.
type Static []types.CandidateRecord

// List returns a copy of the records.
func (s Static) List(_ context.Context) ([]types.CandidateRecord, error) {
	out := make([]types.CandidateRecord, len(s))
	copy(out, s)
	return out, nil
}

// Get returns the record with id, or ErrNotFound.
func (s Static) Get(_ context.Context, id int64) (*types.CandidateRecord, error) {
	return findByID(s, id)
}
