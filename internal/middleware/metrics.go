package middleware

import (
	"net/http"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics. It also receives orchestrator
// events (analysis.Metrics).
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress int64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	AnalysesTotal      uint64
	ProviderFailures   uint64
	UnsavedResults     uint64
	CacheHits          uint64
	StartTime          time.Time

	mu         sync.Mutex
	byCategory map[string]uint64
	byProvider map[string]uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:  time.Now(),
		byCategory: map[string]uint64{},
		byProvider: map[string]uint64{},
	}
}

func (m *Metrics) AnalysisCompleted(category string) {
	atomic.AddUint64(&m.AnalysesTotal, 1)
	m.mu.Lock()
	m.byCategory[category]++
	m.mu.Unlock()
}

func (m *Metrics) ProviderFailed(provider string) {
	atomic.AddUint64(&m.ProviderFailures, 1)
	m.mu.Lock()
	m.byProvider[provider]++
	m.mu.Unlock()
}

func (m *Metrics) ResultUnsaved() { atomic.AddUint64(&m.UnsavedResults, 1) }

func (m *Metrics) CacheHit() { atomic.AddUint64(&m.CacheHits, 1) }

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]interface{} {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m.mu.Lock()
	cats := copyCounts(m.byCategory)
	provs := copyCounts(m.byProvider)
	m.mu.Unlock()

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&m.RequestsTotal),
		"requests_in_progress": atomic.LoadInt64(&m.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&m.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&m.RequestsFailed),
		"analyses_total":       atomic.LoadUint64(&m.AnalysesTotal),
		"analyses_by_category": cats,
		"provider_failures":    atomic.LoadUint64(&m.ProviderFailures),
		"provider_failures_by": provs,
		"unsaved_results":      atomic.LoadUint64(&m.UnsavedResults),
		"cache_hits":           atomic.LoadUint64(&m.CacheHits),
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       ms.Alloc,
			"total_alloc_bytes": ms.TotalAlloc,
			"sys_bytes":         ms.Sys,
			"num_gc":            ms.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]uint64, len(in))
	for _, k := range keys {
		out[k] = in[k]
	}
	return out
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddUint64(&m.RequestsTotal, 1)
		atomic.AddInt64(&m.RequestsInProgress, 1)
		defer atomic.AddInt64(&m.RequestsInProgress, -1)

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			atomic.AddUint64(&m.RequestsSuccess, 1)
		} else {
			atomic.AddUint64(&m.RequestsFailed, 1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, m.Snapshot())
}
