package source

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/zylker/failwatch/internal/cache"
	"github.com/zylker/failwatch/internal/metrics"
	"github.com/zylker/failwatch/internal/normalize"
	"github.com/zylker/failwatch/pkg/models"
)

// MaxPages bounds worst-case latency against a misbehaving upstream that
// keeps reporting more data. Hitting it is a normal termination condition.
const MaxPages = 10

// DefaultSources are the four upstream feeds of the reference deployment,
// in declaration order. Order matters: within a page, records are
// concatenated source by source before the timestamp sort, which keeps
// same-timestamp ties deterministic.
var DefaultSources = []string{
	"publishfailure",
	"signupfailure",
	"invitefailure",
	"upgradefailure",
}

// cachedPage is the persisted shape of one fetched page. Entries whose
// capture timestamp is older than the freshness window are treated as
// absent even if Redis has not expired them yet.
type cachedPage struct {
	CapturedAt time.Time              `json:"captured_at"`
	Records    []models.FailureRecord `json:"records"`
	HasMore    bool                   `json:"has_more"`
}

// Aggregator fetches and normalizes records across all sources with
// lock-step pagination and a shared page cache.
type Aggregator struct {
	client  Client
	cache   cache.Cache
	sources []string
	ttl     time.Duration
}

// NewAggregator creates an Aggregator. Empty sources falls back to
// DefaultSources; ttl is the cache freshness window.
func NewAggregator(client Client, c cache.Cache, sources []string, ttl time.Duration) *Aggregator {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	return &Aggregator{client: client, cache: c, sources: sources, ttl: ttl}
}

type pageResult struct {
	records []models.FailureRecord
	hasMore bool
}

// FetchAll queries every source page by page and returns the normalized
// records. Each page is fetched from all still-active sources in parallel
// and awaited jointly; the loop advances while any source reports more
// data, up to MaxPages. Per-source failures degrade to an empty page and
// stop paging that source only. skipCacheRead bypasses cache reads (the
// dashboard's refresh) but fresh results are still written back.
//
// The returned slice is sorted by requestedAt descending within each page
// but not globally; callers needing one globally sorted view re-sort.
func (a *Aggregator) FetchAll(ctx context.Context, skipCacheRead bool) []models.FailureRecord {
	start := time.Now()
	defer func() { metrics.ObserveFetchCycle(time.Since(start)) }()

	all := []models.FailureRecord{}
	active := make([]bool, len(a.sources))
	for i := range active {
		active[i] = true
	}

	for page := 1; page <= MaxPages; page++ {
		results := make([]pageResult, len(a.sources))
		var wg sync.WaitGroup
		for i, src := range a.sources {
			if !active[i] {
				continue
			}
			wg.Add(1)
			go func(i int, src string) {
				defer wg.Done()
				results[i] = a.fetchPage(ctx, src, page, skipCacheRead)
			}(i, src)
		}
		wg.Wait()

		pageRecords := []models.FailureRecord{}
		anyMore := false
		for i := range a.sources {
			if !active[i] {
				continue
			}
			pageRecords = append(pageRecords, results[i].records...)
			if results[i].hasMore {
				anyMore = true
			} else {
				active[i] = false
			}
		}

		sort.SliceStable(pageRecords, func(i, j int) bool {
			return laterThan(pageRecords[i].EffectiveTime(), pageRecords[j].EffectiveTime())
		})
		all = append(all, pageRecords...)

		if !anyMore {
			break
		}
	}

	return all
}

// fetchPage resolves one (source, page): fresh cache hit, else network
// fetch, normalize, and cache write. Never fails; a broken source yields
// an empty result with hasMore=false so the rest of the aggregation
// proceeds.
func (a *Aggregator) fetchPage(ctx context.Context, src string, page int, skipCacheRead bool) pageResult {
	key := cache.PageKey(src, page)

	if !skipCacheRead {
		if b, ok, err := a.cache.Get(ctx, key); err == nil && ok {
			var cp cachedPage
			// Unparseable cached entries are misses.
			if json.Unmarshal(b, &cp) == nil {
				if time.Since(cp.CapturedAt) < a.ttl {
					metrics.CacheLookup("hit")
					return pageResult{records: cp.Records, hasMore: cp.HasMore}
				}
				metrics.CacheLookup("stale")
			} else {
				metrics.CacheLookup("miss")
			}
		} else {
			metrics.CacheLookup("miss")
		}
	}

	p, err := a.client.FetchPage(ctx, src, page)
	if err != nil {
		slog.Warn("source fetch failed", "source", src, "page", page, "error", err)
		metrics.SourceFailure(src)
		return pageResult{records: []models.FailureRecord{}, hasMore: false}
	}
	metrics.PageFetched(src)

	records := make([]models.FailureRecord, 0, len(p.Records))
	for _, raw := range p.Records {
		records = append(records, normalize.Normalize(raw, src))
	}

	cp := cachedPage{CapturedAt: time.Now().UTC(), Records: records, HasMore: p.HasMore}
	if b, err := json.Marshal(cp); err == nil {
		if err := a.cache.Set(ctx, key, b, a.ttl); err != nil {
			slog.Warn("cache write failed", "key", key, "error", err)
		}
	}

	return pageResult{records: records, hasMore: p.HasMore}
}

func laterThan(x, y *time.Time) bool {
	if x == nil {
		return false
	}
	if y == nil {
		return true
	}
	return x.After(*y)
}
