package cache

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/extract"
	libreftest "github.com/teranos/libref/internal/testing"
)

const capacitor = `class Capacitor(Module):
    """Stores charge."""

    capacitance = L.p_field(units=P.F)
    """Nominal capacitance."""

    @L.rt_field
    def can_bridge(self):
        return F.can_bridge_defined(self.a, self.b)
`

type docMap map[string]string

func (d docMap) Docstring(class string) (string, bool) {
	doc, ok := d[class]
	return doc, ok
}

func openStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(libreftest.CreateTestDB(t))
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Capacitor.py")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCacheHitReturnsEqualRecord(t *testing.T) {
	store := openStore(t)
	ex := extract.New(extract.DefaultOptions(), nil)
	path := writeSource(t, capacitor)
	ctx := context.Background()

	first, err := store.Extract(ctx, ex, path, "Capacitor")
	require.NoError(t, err)
	second, err := store.Extract(ctx, ex, path, "Capacitor")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	hits, misses := store.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestConcurrentExtractCountsEveryLookup(t *testing.T) {
	store := openStore(t)
	ex := extract.New(extract.DefaultOptions(), nil)
	path := writeSource(t, capacitor)
	ctx := context.Background()

	_, err := store.Extract(ctx, ex, path, "Capacitor")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Extract(ctx, ex, path, "Capacitor")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	hits, misses := store.Stats()
	assert.Equal(t, 8, hits)
	assert.Equal(t, 1, misses)
}

func TestContentChangeInvalidates(t *testing.T) {
	store := openStore(t)
	ex := extract.New(extract.DefaultOptions(), nil)
	path := writeSource(t, capacitor)
	ctx := context.Background()

	_, err := store.Extract(ctx, ex, path, "Capacitor")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(capacitor+"\n    voltage = L.p_field(units=P.V)\n"), 0o644))
	rec, err := store.Extract(ctx, ex, path, "Capacitor")
	require.NoError(t, err)

	_, misses := store.Stats()
	assert.Equal(t, 2, misses)
	assert.Len(t, rec.FieldsOf(extract.KindParameter), 2)
}

func TestCachedTraitDescriptionsFollowLibrary(t *testing.T) {
	store := openStore(t)
	path := writeSource(t, capacitor)
	ctx := context.Background()

	_, err := store.Extract(ctx, extract.New(extract.DefaultOptions(), docMap{"can_bridge": "Old."}), path, "Capacitor")
	require.NoError(t, err)

	rec, err := store.Extract(ctx, extract.New(extract.DefaultOptions(), docMap{"can_bridge": "New."}), path, "Capacitor")
	require.NoError(t, err)
	hits, _ := store.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, "New.", rec.FieldsOf(extract.KindTrait)[0].Description)
}

func TestFailuresAreNotCached(t *testing.T) {
	store := openStore(t)
	ex := extract.New(extract.DefaultOptions(), nil)
	path := writeSource(t, capacitor)
	ctx := context.Background()

	_, err := store.Extract(ctx, ex, path, "Missing")
	assert.True(t, errors.Is(err, errors.ErrClassNotFound))
	_, err = store.Extract(ctx, ex, path, "Missing")
	assert.Error(t, err)

	var n int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM extractions").Scan(&n))
	assert.Zero(t, n)

	_, err = store.Extract(ctx, ex, filepath.Join(t.TempDir(), "nope.py"), "Nope")
	assert.Error(t, err)
}

func TestPrune(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	store.now = func() time.Time { return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, store.Put(ctx, "old", &extract.ClassRecord{Name: "Old"}))
	store.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, store.Put(ctx, "new", &extract.ClassRecord{Name: "New"}))

	n, err := store.Prune(ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err := store.Get(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)
	rec, ok, err := store.Get(ctx, "new")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "New", rec.Name)
}

func TestKey(t *testing.T) {
	src := []byte(capacitor)
	assert.Equal(t, Key("f", "Capacitor", src), Key("f", "Capacitor", src))
	assert.NotEqual(t, Key("f", "Capacitor", src), Key("g", "Capacitor", src))
	assert.NotEqual(t, Key("f", "Capacitor", src), Key("f", "Resistor", src))
	assert.Len(t, Key("f", "Capacitor", src), 64)
}

func TestReadErrorFallsBackToExtraction_Sqlmock(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT record FROM extractions WHERE key = ?")).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT OR REPLACE INTO extractions")).
		WithArgs(sqlmock.AnyArg(), "Capacitor", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("database is locked"))

	store := NewStore(conn)
	rec, err := store.Extract(context.Background(), extract.New(extract.DefaultOptions(), nil), writeSource(t, capacitor), "Capacitor")
	require.NoError(t, err, "cache failures never fail extraction")
	assert.Equal(t, "Capacitor", rec.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCorruptRecord_Sqlmock(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT record FROM extractions WHERE key = ?")).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"record"}).AddRow("{not json"))

	_, ok, err := NewStore(conn).Get(context.Background(), "k")
	assert.False(t, ok)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
