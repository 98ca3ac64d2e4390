package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/procrastinate-org/procrastinate/internal/collection"
)

// JSONStore persists the collection as a pretty-printed JSON map, the
// human-editable default backend.
type JSONStore struct {
	path string
	data *collection.Collection
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already exists at %s", s.path)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}
	s.data = collection.New()
	return s.Save()
}

func (s *JSONStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotInitialized, s.path)
		}
		return fmt.Errorf("read storage: %w", err)
	}

	data := collection.New()
	if err := json.Unmarshal(raw, data); err != nil {
		return fmt.Errorf("parse storage %s: %w", s.path, err)
	}
	s.data = data
	return nil
}

func (s *JSONStore) Data() *collection.Collection {
	return s.data
}

func (s *JSONStore) Save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage: %w", err)
	}
	if err := os.WriteFile(s.path, append(raw, '\n'), 0o600); err != nil {
		return fmt.Errorf("write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) Path() string {
	return s.path
}

var _ Provider = (*JSONStore)(nil)
