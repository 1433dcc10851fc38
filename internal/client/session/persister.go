// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/taibuivan/inkwell/internal/platform/sec"
)

// ErrNoSession is returned by [Persister.Load] when nothing has been saved.
var ErrNoSession = errors.New("session: no persisted session")

// Record is the persisted form of a session.
type Record struct {
	Identity     *sec.Identity `json:"identity,omitempty"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}

// Persister stores a [Record] across process restarts.
type Persister interface {
	Load() (Record, error)
	Save(record Record) error
	Clear() error
}

// # File Persister

const (
	fileMode = 0o600
	dirMode  = 0o700
)

// FilePersister keeps the session as a JSON file readable only by its owner.
type FilePersister struct {
	path string
}

// NewFilePersister returns a persister writing to path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Path returns the session file location.
func (persister *FilePersister) Path() string {
	return persister.path
}

func (persister *FilePersister) Load() (Record, error) {
	data, err := os.ReadFile(persister.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, ErrNoSession
		}
		return Record{}, fmt.Errorf("session_file_read_failed: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("session_file_corrupt: %w", err)
	}
	return record, nil
}

// Save writes through a temp file and a rename so readers never see a partial file.
func (persister *FilePersister) Save(record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("session_file_encode_failed: %w", err)
	}

	dir := filepath.Dir(persister.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("session_dir_create_failed: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("session_file_write_failed: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("session_file_write_failed: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("session_file_write_failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session_file_write_failed: %w", err)
	}

	if err := os.Rename(tmp.Name(), persister.path); err != nil {
		return fmt.Errorf("session_file_write_failed: %w", err)
	}
	return nil
}

func (persister *FilePersister) Clear() error {
	if err := os.Remove(persister.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session_file_remove_failed: %w", err)
	}
	return nil
}

// # Memory Persister

// MemoryPersister keeps the record in process memory. Used by tests and
// short-lived clients.
type MemoryPersister struct {
	mu     sync.Mutex
	record *Record
}

// NewMemoryPersister returns a persister preloaded with record, if given.
func NewMemoryPersister(record *Record) *MemoryPersister {
	persister := &MemoryPersister{}
	if record != nil {
		saved := *record
		persister.record = &saved
	}
	return persister
}

func (persister *MemoryPersister) Load() (Record, error) {
	persister.mu.Lock()
	defer persister.mu.Unlock()

	if persister.record == nil {
		return Record{}, ErrNoSession
	}
	return *persister.record, nil
}

func (persister *MemoryPersister) Save(record Record) error {
	persister.mu.Lock()
	defer persister.mu.Unlock()

	persister.record = &record
	return nil
}

func (persister *MemoryPersister) Clear() error {
	persister.mu.Lock()
	defer persister.mu.Unlock()

	persister.record = nil
	return nil
}
