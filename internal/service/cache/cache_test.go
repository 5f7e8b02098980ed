package cache_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/darkkaiser/morning-brief/internal/service/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock 테스트에서 시간을 직접 진행시키기 위한 시계
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type forecast struct {
	City  string  `json:"city"`
	HighC float64 `json:"high_c"`
}

func countingFetch(calls *atomic.Int32, v forecast) func(context.Context) (forecast, error) {
	return func(context.Context) (forecast, error) {
		calls.Add(1)
		return v, nil
	}
}

// failingStore 조회와 저장이 항상 실패하는 저장소
type failingStore struct {
	cache.MemoryStore
}

func (*failingStore) Get(context.Context, string) (cache.Entry, bool, error) {
	return cache.Entry{}, false, errors.New("disk I/O error")
}

func (*failingStore) Put(context.Context, cache.Entry) error {
	return errors.New("read-only file system")
}

// =============================================================================
// Fetch
// =============================================================================

func TestFetch_Disabled(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	c := cache.New(store, cache.Options{Enabled: false, Window: time.Hour})

	var calls atomic.Int32
	for range 3 {
		v, err := cache.Fetch(context.Background(), c, "weather", countingFetch(&calls, forecast{City: "Seattle"}))
		require.NoError(t, err)
		assert.Equal(t, "Seattle", v.City)
	}

	assert.EqualValues(t, 3, calls.Load(), "비활성 캐시는 호출마다 정확히 한 번 fetch한다")
	_, found, _ := store.Get(context.Background(), "weather")
	assert.False(t, found, "비활성 캐시는 저장소를 사용하지 않는다")

	var nilCache *cache.Cache
	_, err := cache.Fetch(context.Background(), nilCache, "weather", countingFetch(&calls, forecast{}))
	require.NoError(t, err)
	assert.EqualValues(t, 4, calls.Load())
}

func TestFetch_Window(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := cache.NewMemoryStore()
	c := cache.New(store, cache.Options{Enabled: true, Window: 30 * time.Minute, Clock: clock.Now})

	var calls atomic.Int32
	fetch := countingFetch(&calls, forecast{City: "Seattle", HighC: 12.5})

	v, err := cache.Fetch(context.Background(), c, "weather", fetch)
	require.NoError(t, err)
	assert.Equal(t, 12.5, v.HighC)
	assert.EqualValues(t, 1, calls.Load())

	clock.Advance(29 * time.Minute)
	v, err = cache.Fetch(context.Background(), c, "weather", fetch)
	require.NoError(t, err)
	assert.Equal(t, forecast{City: "Seattle", HighC: 12.5}, v)
	assert.EqualValues(t, 1, calls.Load(), "유효 기간 안에서는 fetch하지 않는다")

	first, found, err := store.Get(context.Background(), "weather")
	require.NoError(t, err)
	require.True(t, found)

	clock.Advance(time.Minute)
	_, err = cache.Fetch(context.Background(), c, "weather", fetch)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load(), "유효 기간이 지나면 다시 fetch한다")

	refreshed, found, err := store.Get(context.Background(), "weather")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, refreshed.CreatedAt.After(first.CreatedAt), "다시 fetch한 값으로 캐시가 갱신되어야 한다")

	clock.Advance(29 * time.Minute)
	v, err = cache.Fetch(context.Background(), c, "weather", fetch)
	require.NoError(t, err)
	assert.Equal(t, forecast{City: "Seattle", HighC: 12.5}, v)
	assert.EqualValues(t, 2, calls.Load(), "갱신된 항목의 유효 기간 안에서는 fetch하지 않는다")
}

func TestFetch_ErrorNotCached(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	c := cache.New(store, cache.Options{Enabled: true, Window: time.Hour})

	fetchErr := errors.New("upstream down")
	_, err := cache.Fetch(context.Background(), c, "world", func(context.Context) ([]string, error) {
		return nil, fetchErr
	})
	assert.ErrorIs(t, err, fetchErr)

	_, found, err := store.Get(context.Background(), "world")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFetch_CorruptEntryIsMiss(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := cache.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), cache.Entry{Name: "weather", CreatedAt: clock.Now(), Value: []byte("{not json")}))

	c := cache.New(store, cache.Options{Enabled: true, Window: time.Hour, Clock: clock.Now})

	var calls atomic.Int32
	v, err := cache.Fetch(context.Background(), c, "weather", countingFetch(&calls, forecast{City: "Boise"}))
	require.NoError(t, err)
	assert.Equal(t, "Boise", v.City)
	assert.EqualValues(t, 1, calls.Load())

	// 손상된 항목은 새 값으로 덮어쓴다.
	_, err = cache.Fetch(context.Background(), c, "weather", countingFetch(&calls, forecast{}))
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetch_StoreFailuresAreIgnored(t *testing.T) {
	t.Parallel()

	c := cache.New(&failingStore{}, cache.Options{Enabled: true, Window: time.Hour})

	var calls atomic.Int32
	for range 2 {
		v, err := cache.Fetch(context.Background(), c, "weather", countingFetch(&calls, forecast{City: "Seattle"}))
		require.NoError(t, err)
		assert.Equal(t, "Seattle", v.City)
	}
	assert.EqualValues(t, 2, calls.Load())
}

func TestFetch_SameKeySerialized(t *testing.T) {
	t.Parallel()

	c := cache.New(cache.NewMemoryStore(), cache.Options{Enabled: true, Window: time.Hour})

	var calls atomic.Int32
	fetch := func(context.Context) (int, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return 42, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := cache.Fetch(context.Background(), c, "banking", fetch)
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load(), "같은 키의 동시 호출은 한 번만 fetch한다")
}

func TestCache_Invalidate(t *testing.T) {
	t.Parallel()

	c := cache.New(cache.NewMemoryStore(), cache.Options{Enabled: true, Window: time.Hour})

	var calls atomic.Int32
	fetch := countingFetch(&calls, forecast{City: "Seattle"})

	_, _ = cache.Fetch(context.Background(), c, "weather", fetch)
	require.NoError(t, c.Invalidate(context.Background(), "weather"))
	_, _ = cache.Fetch(context.Background(), c, "weather", fetch)

	assert.EqualValues(t, 2, calls.Load())
	assert.NoError(t, c.Close())
}

// =============================================================================
// SQLiteStore
// =============================================================================

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	store, err := cache.OpenSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	createdAt := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

	_, found, err := store.Get(ctx, "weather")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, cache.Entry{Name: "weather", CreatedAt: createdAt, Value: []byte(`{"city":"Seattle"}`)}))
	require.NoError(t, store.Put(ctx, cache.Entry{Name: "world", CreatedAt: createdAt, Value: []byte(`[]`)}))
	require.NoError(t, store.Put(ctx, cache.Entry{Name: "weather", CreatedAt: createdAt.Add(time.Minute), Value: []byte(`{"city":"Boise"}`)}))

	e, found, err := store.Get(ctx, "weather")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"city":"Boise"}`, string(e.Value))
	assert.True(t, createdAt.Add(time.Minute).Equal(e.CreatedAt))

	e, found, err = store.Get(ctx, "world")
	require.NoError(t, err)
	require.True(t, found, "다른 항목의 upsert는 기존 항목에 영향을 주지 않는다")
	assert.Equal(t, "[]", string(e.Value))

	require.NoError(t, store.Delete(ctx, "world"))
	_, found, err = store.Get(ctx, "world")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := cache.OpenSQLiteStore(path)
	require.NoError(t, err)
	c := cache.New(store, cache.Options{Enabled: true, Window: time.Hour, Clock: clock.Now})

	var calls atomic.Int32
	_, err = cache.Fetch(context.Background(), c, "weather", countingFetch(&calls, forecast{City: "Seattle"}))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	store, err = cache.OpenSQLiteStore(path)
	require.NoError(t, err)
	c = cache.New(store, cache.Options{Enabled: true, Window: time.Hour, Clock: clock.Now})
	defer c.Close()

	v, err := cache.Fetch(context.Background(), c, "weather", countingFetch(&calls, forecast{}))
	require.NoError(t, err)
	assert.Equal(t, "Seattle", v.City)
	assert.EqualValues(t, 1, calls.Load())
}
