package vector

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hyperjump/vecindex/internal/models"
)

// WriteRecords encodes records as a JSON array.
func WriteRecords(w io.Writer, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	if err := json.NewEncoder(w).Encode(records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}

// ErrTrailingData is returned by ReadRecords when anything but whitespace follows the array.
var ErrTrailingData = errors.New("unexpected data after JSON array")

// ReadRecords decodes a JSON array of serialized records.
func ReadRecords(r io.Reader) ([]models.Record, error) {
	var records []models.Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode records: %w", ErrTrailingData)
	}
	return records, nil
}

// SaveFile writes the serialized store to path. The directory is created if needed and
// the file is replaced atomically.
func (s *Store) SaveFile(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod index file: %w", err)
	}
	if err := WriteRecords(tmp, s.Serialize()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename index file: %w", err)
	}
	return nil
}

// LoadFile reads a serialized store from path into a new Store.
func LoadFile(path string, opts ...StoreOption) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	records, err := ReadRecords(f)
	if err != nil {
		return nil, err
	}
	s := NewStore(opts...)
	if err := s.Load(records); err != nil {
		return nil, err
	}
	return s, nil
}
