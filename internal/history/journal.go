package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SchemaVersion is the current journal schema version.
const SchemaVersion = 1

// Journal defines the interface for history storage.
type Journal interface {
	// Load reads all records from storage.
	Load() ([]Record, error)

	// Append adds a record to storage.
	Append(r Record) error

	// AppendBatch adds multiple records efficiently.
	AppendBatch(rs []Record) error

	// Rewrite replaces the entire storage file (used after prune).
	Rewrite(rs []Record) error

	// Clear removes all stored records.
	Clear() error

	// Close releases file handles and resources.
	Close() error
}

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	SchemaVersion int   `json:"schema_version"`
	CreatedAt     int64 `json:"created_at"`
}

// ErrJournalClosed is returned when operations are attempted on a closed journal.
var ErrJournalClosed = errors.New("journal is closed")

// JSONLJournal implements Journal using JSONL files.
type JSONLJournal struct {
	mu     sync.RWMutex
	path   string
	file   *os.File
	closed bool
}

// NewJSONLJournal creates a new JSONLJournal.
// Creates the file if it doesn't exist.
func NewJSONLJournal(path string) (*JSONLJournal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	j := &JSONLJournal{
		path: path,
		file: file,
	}

	// Empty files get a schema header
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if info.Size() == 0 {
		if err := j.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return j, nil
}

// writeHeader writes the schema version header to the file.
func (j *JSONLJournal) writeHeader() error {
	header := schemaHeader{
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().Unix(),
	}

	data, err := json.Marshal(header)
	if err != nil {
		return err
	}

	_, err = j.file.Write(append(data, '\n'))
	return err
}

// Load reads all records from storage.
func (j *JSONLJournal) Load() ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed || j.file == nil {
		return nil, ErrJournalClosed
	}

	if _, err := j.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", j.path, err)
	}

	var records []Record
	scanner := bufio.NewScanner(j.file)

	// Increase buffer size for potentially long lines
	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		// First line is the header
		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err != nil {
				// Not a valid header, might be a headerless file.
				// Try parsing as a record.
				var r Record
				if err := json.Unmarshal(line, &r); err == nil && r.ID != "" {
					records = append(records, r)
				}
				continue
			}

			if header.SchemaVersion > SchemaVersion {
				return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
					header.SchemaVersion, SchemaVersion)
			}
			continue
		}

		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			// Skip malformed lines
			continue
		}

		if r.ID != "" {
			records = append(records, r)
		}
	}

	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("error reading file: %w", err)
	}

	// Seek back to end for appending
	if _, err := j.file.Seek(0, io.SeekEnd); err != nil {
		return records, err
	}

	return records, nil
}

// Append adds a record to storage.
func (j *JSONLJournal) Append(r Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed || j.file == nil {
		return ErrJournalClosed
	}

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	_, err = j.file.Write(append(data, '\n'))
	if err != nil {
		return err
	}

	return j.file.Sync()
}

// AppendBatch adds multiple records efficiently.
func (j *JSONLJournal) AppendBatch(rs []Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed || j.file == nil {
		return ErrJournalClosed
	}

	for _, r := range rs {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := j.file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return j.file.Sync()
}

// Rewrite replaces the entire storage file (used after prune/delete).
func (j *JSONLJournal) Rewrite(rs []Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrJournalClosed
	}

	if j.file != nil {
		if err := j.file.Close(); err != nil {
			return err
		}
		j.file = nil
	}

	// Create backup
	backupPath := j.path + ".bak"
	if err := os.Rename(j.path, backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	file, err := os.OpenFile(j.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		// Try to restore backup
		os.Rename(backupPath, j.path)
		return fmt.Errorf("failed to create new file: %w", err)
	}
	j.file = file

	if err := j.writeHeader(); err != nil {
		return err
	}

	for _, r := range rs {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := j.file.Write(append(data, '\n')); err != nil {
			return err
		}
	}

	if err := j.file.Sync(); err != nil {
		return err
	}

	// Remove backup on success
	os.Remove(backupPath)

	return nil
}

// Clear removes all stored records.
func (j *JSONLJournal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrJournalClosed
	}

	backupPath := j.path + ".bak"
	if j.file != nil {
		if err := j.file.Close(); err != nil {
			return err
		}
		j.file = nil
	}

	if err := os.Rename(j.path, backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	file, err := os.OpenFile(j.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		os.Rename(backupPath, j.path)
		return err
	}
	j.file = file

	if err := j.writeHeader(); err != nil {
		return err
	}

	return j.file.Sync()
}

// Close releases file handles and resources.
func (j *JSONLJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true

	if j.file != nil {
		err := j.file.Close()
		j.file = nil
		return err
	}
	return nil
}

// RecoverFromCorruption attempts to recover from a corrupted file.
// It creates a backup and rewrites only valid records.
func RecoverFromCorruption(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}

	var valid []Record
	scanner := bufio.NewScanner(file)
	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		// Skip header lines
		var header schemaHeader
		if json.Unmarshal(line, &header) == nil && header.SchemaVersion > 0 {
			continue
		}

		var r Record
		if err := json.Unmarshal(line, &r); err == nil && r.ID != "" {
			valid = append(valid, r)
		}
	}
	file.Close()

	// Keep the corrupted original around for inspection
	backupPath := path + ".corrupted." + time.Now().Format("20060102-150405")
	if err := os.Rename(path, backupPath); err != nil {
		return fmt.Errorf("failed to backup corrupted file: %w", err)
	}

	j, err := NewJSONLJournal(path)
	if err != nil {
		return err
	}
	defer j.Close()

	return j.AppendBatch(valid)
}
