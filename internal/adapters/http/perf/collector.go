package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // "METHOD /path" for requests, "VERB table" for queries
	StatusCode int    // HTTP status (0 for queries)
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer for timing entries.
// Writes are non-blocking; when full, oldest entries are overwritten.
// Aggregation happens only on read (Snapshot).
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	count   int64 // total entries ever written (atomic)
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: size > 0, otherwise DefaultRingSize is used
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record appends an entry to the ring buffer.
// POST: Entry stored; if buffer full, oldest entry overwritten
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	atomic.AddInt64(&c.count, 1)
}

// TotalRecorded returns the total number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.count)
}

// Snapshot holds aggregated performance data computed on read.
type Snapshot struct {
	TotalRecorded  int64      `json:"total_recorded"`
	Requests       int        `json:"requests"`      // in window
	ServerErrors   int        `json:"server_errors"` // 5xx in window
	Queries        int        `json:"queries"`       // in window
	RequestP50Ms   float64    `json:"request_p50_ms"`
	RequestP95Ms   float64    `json:"request_p95_ms"`
	RequestP99Ms   float64    `json:"request_p99_ms"`
	QueryP95Ms     float64    `json:"query_p95_ms"`
	SlowestPaths   []PathStat `json:"slowest_paths"`
	SlowestQueries []PathStat `json:"slowest_queries"`
}

// PathStat aggregates timing for a single route or query label.
type PathStat struct {
	Path    string  `json:"path"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	Count   int     `json:"count"`
	TotalMs float64 `json:"total_ms"`
}

// series accumulates durations for one entry kind.
type series struct {
	durations []float64
	byPath    map[string]*PathStat
}

func newSeries() *series {
	return &series{byPath: make(map[string]*PathStat)}
}

func (s *series) add(e Entry) {
	s.durations = append(s.durations, e.DurationMs)
	ps, ok := s.byPath[e.Path]
	if !ok {
		ps = &PathStat{Path: e.Path}
		s.byPath[e.Path] = ps
	}
	ps.Count++
	ps.TotalMs += e.DurationMs
	if e.DurationMs > ps.MaxMs {
		ps.MaxMs = e.DurationMs
	}
}

// Snapshot computes aggregated stats over entries recorded at or after since.
// It copies and sorts the buffer, so call it on demand only.
// POST: Returns a Snapshot with percentiles and the topN slowest paths and queries
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	requests := newSeries()
	queries := newSeries()
	serverErrors := 0

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			requests.add(e)
			if e.StatusCode >= 500 {
				serverErrors++
			}
		case KindQuery:
			queries.add(e)
		}
	}

	snap := Snapshot{
		TotalRecorded:  c.TotalRecorded(),
		Requests:       len(requests.durations),
		ServerErrors:   serverErrors,
		Queries:        len(queries.durations),
		SlowestPaths:   topByAvg(requests.byPath, topN),
		SlowestQueries: topByAvg(queries.byPath, topN),
	}
	if len(requests.durations) > 0 {
		sort.Float64s(requests.durations)
		snap.RequestP50Ms = percentile(requests.durations, 50)
		snap.RequestP95Ms = percentile(requests.durations, 95)
		snap.RequestP99Ms = percentile(requests.durations, 99)
	}
	if len(queries.durations) > 0 {
		sort.Float64s(queries.durations)
		snap.QueryP95Ms = percentile(queries.durations, 95)
	}
	return snap
}

// percentile returns the p-th percentile from a sorted slice by linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the top n entries by average duration, slowest first.
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Path < list[j].Path
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
