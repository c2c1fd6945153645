package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mnemo-app/mnemo/internal/store"
)

// jsonPersister keeps the collection snapshot in a single JSON file,
// written atomically via a temp file rename.
type jsonPersister struct {
	path string
}

func (p *jsonPersister) Save(snap *store.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (p *jsonPersister) Load() (*store.Snapshot, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, err
	}
	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
