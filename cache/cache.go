// Package cache stores extracted ClassRecords in SQLite, keyed by the
// content of the defining file, so unchanged classes skip parsing.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/extract"
	"github.com/teranos/libref/logger"
)

// Store reads and writes cached records. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	now    func() time.Time

	hits, misses atomic.Int64
}

// NewStore wraps a migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, logger: logger.ComponentLogger("cache"), now: time.Now}
}

// Key derives the cache key for class name in a file with content src,
// extracted by an extractor with the given fingerprint.
func Key(fingerprint, name string, src []byte) string {
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write(src)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the record stored under key.
func (s *Store) Get(ctx context.Context, key string) (*extract.ClassRecord, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT record FROM extractions WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "read cached record")
	}

	var rec extract.ClassRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, false, errors.Wrapf(err, "decode cached record %s", key)
	}

	if _, err := s.db.ExecContext(ctx, "UPDATE extractions SET last_used_at = ? WHERE key = ?", s.now().UTC(), key); err != nil {
		return nil, false, errors.Wrap(err, "touch cached record")
	}
	return &rec, true, nil
}

// Put stores rec under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key string, rec *extract.ClassRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode record")
	}
	now := s.now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO extractions (key, class, source, record, created_at, last_used_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		key, rec.Name, rec.SourceFile, string(data), now, now)
	return errors.Wrapf(err, "store record for %s", rec.Name)
}

// Extract returns the record for class name in path, from the cache when
// the file is unchanged, otherwise by running ex and caching the result.
// Failed extractions are not cached.
func (s *Store) Extract(ctx context.Context, ex *extract.Extractor, path, name string) (*extract.ClassRecord, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	key := Key(ex.Fingerprint(), name, src)

	rec, ok, err := s.Get(ctx, key)
	if err != nil {
		s.logger.Warnw("Cache read failed, extracting", logger.FieldClass, name, logger.FieldError, err)
	}
	if ok {
		s.hits.Add(1)
		ex.DescribeTraits(rec)
		s.logger.Debugw("Cache hit", logger.FieldClass, name, logger.FieldFile, path)
		return rec, nil
	}

	s.misses.Add(1)
	rec, err = ex.Extract(ctx, path, name, src)
	if err != nil {
		return nil, err
	}
	if err := s.Put(ctx, key, rec); err != nil {
		s.logger.Warnw("Cache write failed", logger.FieldClass, name, logger.FieldError, err)
	}
	return rec, nil
}

// Stats returns hit and miss counts since the store was created.
func (s *Store) Stats() (hits, misses int) {
	return int(s.hits.Load()), int(s.misses.Load())
}

// Prune deletes entries not used since before cutoff and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM extractions WHERE last_used_at < ?", cutoff.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "prune cache")
	}
	return res.RowsAffected()
}
