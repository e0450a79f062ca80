package visitor

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"resume/internal/geo"
	"resume/internal/logging"
)

var toronto = mustLoad("America/Toronto")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

type memStore struct {
	mu   sync.Mutex
	rows map[string]Record
	err  error
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]Record)}
}

func (m *memStore) Upsert(_ context.Context, rec Record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if cur, ok := m.rows[rec.ID]; ok {
		cur.Visits++
		m.rows[rec.ID] = cur
		return cur.Visits, nil
	}
	rec.Visits = 1
	m.rows[rec.ID] = rec
	return 1, nil
}

type stubGeo struct {
	loc   geo.Location
	err   error
	calls int
}

func (s *stubGeo) Lookup(context.Context, string) (geo.Location, error) {
	s.calls++
	return s.loc, s.err
}

func TestKeyAt_Format(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 1, 10, 7, 42, 0, toronto)
	require.Equal(t, "1.2.3.4-2024/01/01 10:05AM", KeyAt("1.2.3.4", at, toronto))

	pm := time.Date(2024, 12, 31, 23, 59, 59, 0, toronto)
	require.Equal(t, "1.2.3.4-2024/12/31 11:55PM", KeyAt("1.2.3.4", pm, toronto))

	midnight := time.Date(2024, 6, 1, 0, 4, 0, 0, toronto)
	require.Equal(t, "::1-2024/06/01 12:00AM", KeyAt("::1", midnight, toronto))
}

func TestKeyAt_NormalizesTimezone(t *testing.T) {
	t.Parallel()

	// 15:03 UTC 即多伦多冬令时 10:03
	utc := time.Date(2024, 1, 1, 15, 3, 0, 0, time.UTC)
	require.Equal(t, "1.2.3.4-2024/01/01 10:00AM", KeyAt("1.2.3.4", utc, toronto))
}

func TestKeyAt_SameBucketSameKey(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 15, 14, 0, 0, 0, toronto)
	for bucket := 0; bucket < 12; bucket++ {
		base := start.Add(time.Duration(bucket) * BucketWidth)
		want := KeyAt("8.8.8.8", base, toronto)
		for off := time.Duration(0); off < BucketWidth; off += 17 * time.Second {
			require.Equal(t, want, KeyAt("8.8.8.8", base.Add(off), toronto))
		}
	}
}

func TestKeyAt_DifferentBucketsDiffer(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 15, 0, 0, 0, 0, toronto)
	seen := make(map[string]struct{})
	for i := 0; i < 24*12; i++ {
		k := KeyAt("8.8.8.8", start.Add(time.Duration(i)*BucketWidth+time.Minute), toronto)
		_, dup := seen[k]
		require.False(t, dup, "duplicate key %s", k)
		seen[k] = struct{}{}
	}

	require.NotEqual(t, KeyAt("1.1.1.1", start, toronto), KeyAt("1.1.1.2", start, toronto))
}

func TestKeyGenerator_UsesClock(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 10, 5, 0, 0, toronto))
	g := NewKeyGenerator(clock, toronto)

	first := g.Key("1.2.3.4")
	clock.Advance(4*time.Minute + 59*time.Second)
	require.Equal(t, first, g.Key("1.2.3.4"))

	clock.Advance(time.Second)
	require.Equal(t, "1.2.3.4-2024/01/01 10:10AM", g.Key("1.2.3.4"))
}

func TestNewRecord_SanitizesMissingFields(t *testing.T) {
	t.Parallel()

	rec := NewRecord("k", geo.Location{})
	require.Equal(t, Record{
		ID: "k", Country: NotFound, State: NotFound, City: NotFound, Postal: NotFound,
		Longitude: 0, Latitude: 0, Visits: 1,
	}, rec)
	require.False(t, rec.HasCoordinates())
}

func TestRecord_Bucket(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2024/01/01 10:05AM", Record{ID: "1.2.3.4-2024/01/01 10:05AM"}.Bucket())
	require.Equal(t, "", Record{ID: "nodash"}.Bucket())
}

func TestRecorder_RecordNVisits(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	r := NewRecorder(logging.Discard(), store)
	loc := geo.Location{CountryName: "Canada", Latitude: 1, Longitude: 2}

	for range 4 {
		r.Record(context.Background(), "a-2024/01/01 10:05AM", loc)
	}
	r.Record(context.Background(), "b-2024/01/01 10:05AM", loc)

	require.Len(t, store.rows, 2)
	require.Equal(t, 4, store.rows["a-2024/01/01 10:05AM"].Visits)
	require.Equal(t, 1, store.rows["b-2024/01/01 10:05AM"].Visits)
}

func TestRecorder_StoreErrorIsSwallowed(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.err = errors.New("connection refused")
	r := NewRecorder(logging.Discard(), store)

	require.NotPanics(t, func() {
		r.Record(context.Background(), "k", geo.Location{})
	})
	require.Empty(t, store.rows)
}

func TestTracker_Track(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 10, 6, 0, 0, toronto))
	g := &stubGeo{loc: geo.Location{CountryName: "Egypt"}}
	tr := NewTracker(logging.Discard(), g, NewKeyGenerator(clock, toronto), NewRecorder(logging.Discard(), store))

	tr.Track(context.Background(), "1.2.3.4")
	tr.Track(context.Background(), "1.2.3.4")

	rec, ok := store.rows["1.2.3.4-2024/01/01 10:05AM"]
	require.True(t, ok)
	require.Equal(t, 2, rec.Visits)
	require.Equal(t, "Egypt", rec.Country)
	require.Equal(t, 2, g.calls)
}

func TestTracker_GeoErrorAbandonsWrite(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	g := &stubGeo{err: errors.New("timeout")}
	tr := NewTracker(logging.Discard(), g, NewKeyGenerator(nil, toronto), NewRecorder(logging.Discard(), store))

	tr.Track(context.Background(), "1.2.3.4")
	require.Empty(t, store.rows)
}

func TestClientAddr(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:4321"
	require.Equal(t, "192.0.2.1", ClientAddr(req))

	req.Header.Set("X-Real-IP", "203.0.113.9")
	require.Equal(t, "203.0.113.9", ClientAddr(req))

	req.Header.Set("CF-Connecting-IP", "198.51.100.7")
	require.Equal(t, "198.51.100.7", ClientAddr(req))

	req.Header.Set("X-Forwarded-For", " 1.2.3.4 , 10.0.0.1")
	require.Equal(t, "1.2.3.4", ClientAddr(req))
}

func TestClientAddr_RejectsNonIPHeaders(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:4321"
	req.Header.Set("X-Forwarded-For", "evil-0001/01/01 10:00AM")
	req.Header.Set("CF-Connecting-IP", "unknown")
	require.Equal(t, "192.0.2.1", ClientAddr(req))

	req.Header.Set("X-Real-IP", "203.0.113.9")
	require.Equal(t, "203.0.113.9", ClientAddr(req))

	// IPv4 映射地址与 zone 归一化
	req.Header.Set("X-Forwarded-For", "::ffff:198.51.100.7")
	require.Equal(t, "198.51.100.7", ClientAddr(req))
	req.Header.Set("X-Forwarded-For", "fe80::1%eth0")
	require.Equal(t, "fe80::1", ClientAddr(req))

	bad := httptest.NewRequest("GET", "/", nil)
	bad.RemoteAddr = "not-an-addr"
	require.Equal(t, "", ClientAddr(bad))
}

func TestTracker_SpoofedHeaderKeepsKeyShape(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 31, 12, 0, 0, 0, toronto))
	tr := NewTracker(logging.Discard(), &stubGeo{}, NewKeyGenerator(clock, toronto), NewRecorder(logging.Discard(), store))

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:4321"
	req.Header.Set("X-Forwarded-For", "evil-0001/01/01 10:00AM")
	tr.Track(context.Background(), ClientAddr(req))

	require.Len(t, store.rows, 1)
	for id, rec := range store.rows {
		require.Equal(t, "192.0.2.1-2024/03/31 12:00PM", id)
		require.Equal(t, "2024/03/31 12:00PM", rec.Bucket())
	}
}

func TestTracker_EmptyAddrSkipped(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	g := &stubGeo{}
	tr := NewTracker(logging.Discard(), g, NewKeyGenerator(nil, toronto), NewRecorder(logging.Discard(), store))

	tr.Track(context.Background(), "")
	require.Empty(t, store.rows)
	require.Zero(t, g.calls)
}
