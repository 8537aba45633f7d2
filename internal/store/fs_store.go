package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FSStore implements the Store interface with one JSON file per record:
// <baseDir>/<id>.json. A search trace may sit next to it as
// <baseDir>/<id>.trace.jsonl and is removed together with the record.
//
// Thread-safety: writes go through a temp file and a rename, so readers
// never see a partial record and no locks are needed.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a new filesystem-based store.
// The baseDir will be created if it doesn't exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// recordPath returns the file for id. IDs must be UUIDs so that they cannot
// name a path outside baseDir.
func (fs *FSStore) recordPath(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid record id %q: %w", id, err)
	}
	return filepath.Join(fs.baseDir, id+".json"), nil
}

// TracePath returns the trace file kept next to the record with the given ID.
func (fs *FSStore) TracePath(id string) (string, error) {
	path, err := fs.recordPath(id)
	if err != nil {
		return "", err
	}
	return TracePathFor(path), nil
}

// TracePathFor returns the trace file that belongs to a record file.
func TracePathFor(recordPath string) string {
	return strings.TrimSuffix(recordPath, ".json") + ".trace.jsonl"
}

// Save atomically writes rec to its file.
func (fs *FSStore) Save(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	path, err := fs.recordPath(rec.ID)
	if err != nil {
		return err
	}
	if err := WriteRecordFile(path, rec); err != nil {
		return err
	}

	slog.Debug("Record saved", "id", rec.ID, "path", path)
	return nil
}

// Load reads the record with the given ID.
func (fs *FSStore) Load(id string) (*Record, error) {
	path, err := fs.recordPath(id)
	if err != nil {
		return nil, &NotFoundError{ID: id}
	}

	rec, err := ReadRecordFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}
	return rec, nil
}

// List returns all readable records, oldest first. Corrupt files are skipped.
func (fs *FSStore) List() ([]Record, error) {
	entries, err := os.ReadDir(fs.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read record directory: %w", err)
	}

	records := []Record{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		rec, err := fs.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			slog.Warn("Failed to load record for listing", "file", name, "error", err)
			continue
		}
		records = append(records, *rec)
	}

	sortRecords(records)
	slog.Debug("Listed records", "count", len(records))
	return records, nil
}

// Delete removes the record file for id.
func (fs *FSStore) Delete(id string) error {
	path, err := fs.recordPath(id)
	if err != nil {
		return &NotFoundError{ID: id}
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{ID: id}
		}
		return fmt.Errorf("failed to remove record file: %w", err)
	}
	if err := DeleteTrace(TracePathFor(path)); err != nil {
		slog.Warn("Record deleted but its trace was not", "id", id, "error", err)
	}

	slog.Debug("Record deleted", "id", id, "path", path)
	return nil
}

// Size returns the size in bytes of the record file for id.
func (fs *FSStore) Size(id string) (int64, error) {
	path, err := fs.recordPath(id)
	if err != nil {
		return 0, &NotFoundError{ID: id}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, &NotFoundError{ID: id}
		}
		return 0, fmt.Errorf("failed to stat record file: %w", err)
	}
	return info.Size(), nil
}

// WriteRecordFile writes rec as indented JSON to path using a temp file and
// a rename, creating the parent directory when needed.
func WriteRecordFile(path string, rec *Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp record file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename record file: %w", err)
	}
	return nil
}

// ReadRecordFile reads a record written by WriteRecordFile. A missing file
// is returned as the os error so callers can test it with os.IsNotExist.
func ReadRecordFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to deserialize record: %w", err)
	}
	return &rec, nil
}
