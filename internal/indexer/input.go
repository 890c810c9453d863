package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hyperjump/vecindex/internal/models"
	"github.com/hyperjump/vecindex/internal/vector"
)

// ErrNotRegularFile is returned by ReadInput for directories and other non-regular paths.
var ErrNotRegularFile = errors.New("not a regular file")

// ReadInput decodes the JSON array of documents at path. Numbers are kept as json.Number so
// metadata survives a later serialization unchanged.
func ReadInput(path string) ([]models.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no such file: %s: %w", path, err)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegularFile)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var docs []models.RawDocument
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse %s: %w", path, vector.ErrTrailingData)
	}
	return docs, nil
}

// LoadEmbedded builds a store from serialized records without calling any provider.
func LoadEmbedded(docs []models.RawDocument, opts ...vector.StoreOption) (*vector.Store, error) {
	records := make([]models.Record, len(docs))
	for i, doc := range docs {
		rec, err := models.ParseRecord(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		records[i] = rec
	}
	store := vector.NewStore(opts...)
	if err := store.Load(records); err != nil {
		return nil, err
	}
	return store, nil
}
