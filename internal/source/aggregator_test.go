package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zylker/failwatch/internal/cache"
	"github.com/zylker/failwatch/pkg/models"
)

// --- fakes ---

// fakeClient serves canned pages per source and counts calls.
type fakeClient struct {
	mu    sync.Mutex
	pages map[string][]Page // source -> pages, 1-indexed by position
	errs  map[string]error
	calls map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		pages: map[string][]Page{},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeClient) FetchPage(_ context.Context, source string, page int) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[fmt.Sprintf("%s:%d", source, page)]++

	if err := f.errs[source]; err != nil {
		return Page{}, err
	}
	pages := f.pages[source]
	if page > len(pages) {
		return Page{}, nil
	}
	return pages[page-1], nil
}

func (f *fakeClient) Ready(context.Context) error { return nil }

func (f *fakeClient) callCount(source string, page int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[fmt.Sprintf("%s:%d", source, page)]
}

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) ClearAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string][]byte{}
	return nil
}

func (m *memCache) Ping(context.Context) error { return nil }

func (m *memCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 1, nil
}

var _ cache.Cache = (*memCache)(nil)

// --- helpers ---

func rawRecord(id, requestedAt string) map[string]any {
	return map[string]any{"id": id, "ZOID": "900", "requested_at": requestedAt}
}

func onePage(hasMore bool, records ...map[string]any) Page {
	return Page{Records: records, HasMore: hasMore}
}

// --- tests ---

func TestFetchAll_MergesSourcesAndNormalizes(t *testing.T) {
	client := newFakeClient()
	client.pages["publishfailure"] = []Page{onePage(false, rawRecord("p1", "2026-03-14T10:00:00Z"))}
	client.pages["signupfailure"] = []Page{onePage(false, rawRecord("s1", "2026-03-14T11:00:00Z"))}

	agg := NewAggregator(client, newMemCache(), []string{"publishfailure", "signupfailure"}, 5*time.Minute)
	records := agg.FetchAll(context.Background(), false)

	require.Len(t, records, 2)
	// page-level sort: newest first
	assert.Equal(t, "s1", records[0].ID)
	assert.Equal(t, models.FlowSignup, records[0].FlowType)
	assert.Equal(t, "p1", records[1].ID)
	assert.Equal(t, models.FlowPublish, records[1].FlowType)
}

func TestFetchAll_LockStepPaging(t *testing.T) {
	client := newFakeClient()
	client.pages["publishfailure"] = []Page{
		onePage(true, rawRecord("p1", "2026-03-14T10:00:00Z")),
		onePage(false, rawRecord("p2", "2026-03-14T09:00:00Z")),
	}
	client.pages["signupfailure"] = []Page{onePage(false, rawRecord("s1", "2026-03-14T08:00:00Z"))}

	agg := NewAggregator(client, newMemCache(), []string{"publishfailure", "signupfailure"}, 5*time.Minute)
	records := agg.FetchAll(context.Background(), false)

	require.Len(t, records, 3)
	// signup stopped after page 1; page 2 only hits publish
	assert.Equal(t, 1, client.callCount("signupfailure", 1))
	assert.Equal(t, 0, client.callCount("signupfailure", 2))
	assert.Equal(t, 1, client.callCount("publishfailure", 2))
}

func TestFetchAll_PageCap(t *testing.T) {
	client := newFakeClient()
	// Misbehaving upstream: always reports more data.
	endless := make([]Page, 50)
	for i := range endless {
		endless[i] = onePage(true, rawRecord(fmt.Sprintf("r%d", i), "2026-03-14T10:00:00Z"))
	}
	client.pages["publishfailure"] = endless

	agg := NewAggregator(client, newMemCache(), []string{"publishfailure"}, 5*time.Minute)
	records := agg.FetchAll(context.Background(), false)

	assert.Len(t, records, MaxPages)
	assert.Equal(t, 1, client.callCount("publishfailure", MaxPages))
	assert.Equal(t, 0, client.callCount("publishfailure", MaxPages+1))
}

func TestFetchAll_SourceFailureIsIsolated(t *testing.T) {
	client := newFakeClient()
	client.pages["publishfailure"] = []Page{onePage(false, rawRecord("p1", "2026-03-14T10:00:00Z"))}
	client.errs["signupfailure"] = fmt.Errorf("%w: boom", ErrSourceUnreachable)

	agg := NewAggregator(client, newMemCache(), []string{"publishfailure", "signupfailure"}, 5*time.Minute)
	records := agg.FetchAll(context.Background(), false)

	require.Len(t, records, 1)
	assert.Equal(t, "p1", records[0].ID)
}

func TestFetchAll_NoUpstreamData(t *testing.T) {
	agg := NewAggregator(newFakeClient(), newMemCache(), nil, 5*time.Minute)
	records := agg.FetchAll(context.Background(), false)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestFetchAll_FreshCacheHitSkipsNetwork(t *testing.T) {
	client := newFakeClient()
	client.pages["publishfailure"] = []Page{onePage(false, rawRecord("p1", "2026-03-14T10:00:00Z"))}
	mc := newMemCache()

	agg := NewAggregator(client, mc, []string{"publishfailure"}, 5*time.Minute)

	first := agg.FetchAll(context.Background(), false)
	second := agg.FetchAll(context.Background(), false)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.callCount("publishfailure", 1))
}

func TestFetchAll_StaleCacheEntryRefetches(t *testing.T) {
	client := newFakeClient()
	client.pages["publishfailure"] = []Page{onePage(false, rawRecord("p1", "2026-03-14T10:00:00Z"))}
	mc := newMemCache()

	stale, err := json.Marshal(map[string]any{
		"captured_at": time.Now().Add(-10 * time.Minute).UTC(),
		"records":     []models.FailureRecord{},
		"has_more":    false,
	})
	require.NoError(t, err)
	require.NoError(t, mc.Set(context.Background(), cache.PageKey("publishfailure", 1), stale, 0))

	agg := NewAggregator(client, mc, []string{"publishfailure"}, 5*time.Minute)
	records := agg.FetchAll(context.Background(), false)

	require.Len(t, records, 1)
	assert.Equal(t, 1, client.callCount("publishfailure", 1))
}

func TestFetchAll_CorruptCacheEntryIsMiss(t *testing.T) {
	client := newFakeClient()
	client.pages["publishfailure"] = []Page{onePage(false, rawRecord("p1", "2026-03-14T10:00:00Z"))}
	mc := newMemCache()
	require.NoError(t, mc.Set(context.Background(), cache.PageKey("publishfailure", 1), []byte("{not json"), 0))

	agg := NewAggregator(client, mc, []string{"publishfailure"}, 5*time.Minute)
	records := agg.FetchAll(context.Background(), false)

	require.Len(t, records, 1)
	assert.Equal(t, 1, client.callCount("publishfailure", 1))
}

func TestFetchAll_RefreshBypassesCacheRead(t *testing.T) {
	client := newFakeClient()
	client.pages["publishfailure"] = []Page{onePage(false, rawRecord("p1", "2026-03-14T10:00:00Z"))}
	mc := newMemCache()

	agg := NewAggregator(client, mc, []string{"publishfailure"}, 5*time.Minute)
	agg.FetchAll(context.Background(), false)
	agg.FetchAll(context.Background(), true)

	assert.Equal(t, 2, client.callCount("publishfailure", 1))
}
