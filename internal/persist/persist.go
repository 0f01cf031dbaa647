// Package persist stores the catalog and ledger durably as a single JSON
// snapshot file. Writes go to a temp file in the same directory and are
// renamed into place, so a crash mid-save never leaves a half-written file
// to be read back.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/paperstreet/stocksim/internal/domain"
)

// Snapshot is the on-disk representation of the full system state. Both
// structures are written as one unit: a load after a successful save
// reproduces the catalog and ledger exactly.
type Snapshot struct {
	SavedAt  time.Time                     `json:"saved_at"`
	Catalog  map[string]*domain.Instrument `json:"catalog"`
	Accounts []*domain.Account             `json:"accounts"` // registration order
}

// EmptySnapshot returns a snapshot with no instruments and no accounts.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Catalog:  make(map[string]*domain.Instrument),
		Accounts: []*domain.Account{},
	}
}

// FileStore reads and writes snapshots at a fixed path. Saves are
// serialized: a save in progress makes a concurrent save queue behind it,
// so the file always reflects a complete snapshot and the last save wins.
type FileStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore creates a FileStore writing to the given path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the snapshot from disk. A missing or corrupt file yields an
// empty snapshot rather than a startup failure; the condition is logged.
func (s *FileStore) Load() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("no snapshot file, starting empty", slog.String("path", s.path))
		} else {
			s.logger.Error("snapshot unreadable, starting empty",
				slog.String("path", s.path), slog.String("error", err.Error()))
		}
		return EmptySnapshot()
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Error("snapshot corrupt, starting empty",
			slog.String("path", s.path), slog.String("error", err.Error()))
		return EmptySnapshot()
	}

	if snap.Catalog == nil {
		snap.Catalog = make(map[string]*domain.Instrument)
	}
	if snap.Accounts == nil {
		snap.Accounts = []*domain.Account{}
	}
	return &snap
}

// Save writes the snapshot durably. The JSON is indented so the file stays
// human-inspectable. Failure leaves the previous snapshot file intact and
// is returned to the caller; in-memory state remains authoritative and the
// next successful save recovers durability.
func (s *FileStore) Save(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return s.path
}
