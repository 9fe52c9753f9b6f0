// Package store implements the document store every ledger persists through.
//
// A collection is a JSON array of records kept in a single file under the store
// directory. Every operation loads the whole file, works on it in memory, and a
// mutating operation rewrites the whole file. Operations on one collection are
// serialized by a per-collection mutex, so a read-check-write performed inside
// UpdateByID or DeleteIf cannot interleave with another writer in the same
// process. Nothing is atomic across collections.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"tradebook/internal/logger"
	"tradebook/internal/uuid"
)

// Options configures a DB.
type Options struct {
	// Dir is the directory holding one <collection>.json file per collection.
	Dir string
	// Logger defaults to a no-op logger.
	Logger *zap.SugaredLogger
	// Clock defaults to time.Now.
	Clock func() time.Time
	// NewID defaults to uuid.New.
	NewID func() string
}

// DB is a directory of JSON collections.
type DB struct {
	dir   string
	log   *zap.SugaredLogger
	now   func() time.Time
	newID func() string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Open prepares the store directory and returns a DB rooted at it.
func Open(opts Options) (*DB, error) {
	if opts.Dir == "" {
		return nil, errors.New("store: directory is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create data directory: %w", err)
	}

	db := &DB{
		dir:   opts.Dir,
		log:   opts.Logger,
		now:   opts.Clock,
		newID: opts.NewID,
		locks: make(map[string]*sync.Mutex),
	}
	if db.log == nil {
		db.log = logger.Nop()
	}
	if db.now == nil {
		db.now = time.Now
	}
	if db.newID == nil {
		db.newID = uuid.New
	}

	db.log.Infow("document store opened", "dir", opts.Dir)
	return db, nil
}

// Dir returns the directory the store writes to.
func (db *DB) Dir() string { return db.dir }

// lock returns the mutex guarding the named collection.
func (db *DB) lock(name string) *sync.Mutex {
	db.mu.Lock()
	defer db.mu.Unlock()

	m, ok := db.locks[name]
	if !ok {
		m = &sync.Mutex{}
		db.locks[name] = m
	}
	return m
}

func (db *DB) path(name string) string {
	return filepath.Join(db.dir, name+".json")
}

// read returns the raw bytes of a collection file. A missing or blank file is
// (re)initialized to an empty array and reported as nil.
func (db *DB) read(name string) ([]byte, error) {
	data, err := os.ReadFile(db.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, db.write(name, []byte("[]"))
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, db.write(name, []byte("[]"))
	}
	return data, nil
}

// write replaces a collection file. The bytes go to a temporary file in the
// same directory first so a reader never observes a partially written file.
func (db *DB) write(name string, data []byte) error {
	tmp, err := os.CreateTemp(db.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	if err := os.Rename(tmpName, db.path(name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	return nil
}

// quarantine preserves an undecodable collection file under a timestamped
// name and resets the collection to empty.
func (db *DB) quarantine(name string, data []byte, cause error) error {
	backup := fmt.Sprintf("%s.backup.%d", db.path(name), db.now().UnixMilli())
	db.log.Errorw("collection file is corrupt, backing up and starting empty",
		"collection", name,
		"backup", backup,
		"error", cause,
	)

	if err := os.WriteFile(backup, data, 0o644); err != nil {
		db.log.Errorw("failed to back up corrupt collection", "collection", name, "error", err)
	}
	return db.write(name, []byte("[]"))
}

func (db *DB) marshal(name string, docs any) ([]byte, error) {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("store: encode %s: %w", name, err)
	}
	return data, nil
}
