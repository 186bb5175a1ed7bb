package internal

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector counts extraction outcomes. All methods are safe for
// concurrent use.
type MetricsCollector struct {
	totalRecords        int64
	structured          int64
	unstructured        int64
	fallbacks           int64
	resolvedFields      int64
	totalProcessingTime int64
	maxProcessingTime   int64
	minProcessingTime   int64
	activeWorkers       int64
	maxActiveWorkers    int64
	reasons             sync.Map
	startTime           time.Time
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		startTime:         time.Now(),
		minProcessingTime: 1<<63 - 1, // Max int64 value
	}
}

// RecordRecord records one processed record. An empty reason marks a
// structured result.
func (mc *MetricsCollector) RecordRecord(duration time.Duration, reason string) {
	atomic.AddInt64(&mc.totalRecords, 1)

	if reason == "" {
		atomic.AddInt64(&mc.structured, 1)
	} else {
		atomic.AddInt64(&mc.unstructured, 1)
		actual, _ := mc.reasons.LoadOrStore(reason, new(int64))
		atomic.AddInt64(actual.(*int64), 1)
	}

	durationNs := duration.Nanoseconds()
	if durationNs > 0 {
		atomic.AddInt64(&mc.totalProcessingTime, durationNs)
		updateMax(&mc.maxProcessingTime, durationNs)
		updateMin(&mc.minProcessingTime, durationNs)
	}
}

// RecordFallback records a fallback record attached in place of parsed data
func (mc *MetricsCollector) RecordFallback() {
	atomic.AddInt64(&mc.fallbacks, 1)
}

// RecordResolvedField records a nested field that was resolved
func (mc *MetricsCollector) RecordResolvedField() {
	atomic.AddInt64(&mc.resolvedFields, 1)
}

// StartWorker records a worker becoming busy
func (mc *MetricsCollector) StartWorker() {
	current := atomic.AddInt64(&mc.activeWorkers, 1)
	updateMax(&mc.maxActiveWorkers, current)
}

// EndWorker records a worker becoming idle
func (mc *MetricsCollector) EndWorker() {
	atomic.AddInt64(&mc.activeWorkers, -1)
}

// GetMetrics returns a snapshot of the current metrics
func (mc *MetricsCollector) GetMetrics() Metrics {
	total := atomic.LoadInt64(&mc.totalRecords)
	totalTime := atomic.LoadInt64(&mc.totalProcessingTime)

	var avgProcessingTime time.Duration
	if total > 0 {
		avgProcessingTime = time.Duration(totalTime / total)
	}

	minTime := atomic.LoadInt64(&mc.minProcessingTime)
	if minTime == 1<<63-1 {
		minTime = 0
	}

	reasons := make(map[string]int64)
	mc.reasons.Range(func(key, value any) bool {
		if k, ok := key.(string); ok {
			if v, ok := value.(*int64); ok {
				reasons[k] = atomic.LoadInt64(v)
			}
		}
		return true
	})

	return Metrics{
		TotalRecords:        total,
		Structured:          atomic.LoadInt64(&mc.structured),
		Unstructured:        atomic.LoadInt64(&mc.unstructured),
		Fallbacks:           atomic.LoadInt64(&mc.fallbacks),
		ResolvedFields:      atomic.LoadInt64(&mc.resolvedFields),
		TotalProcessingTime: time.Duration(totalTime),
		AvgProcessingTime:   avgProcessingTime,
		MaxProcessingTime:   time.Duration(atomic.LoadInt64(&mc.maxProcessingTime)),
		MinProcessingTime:   time.Duration(minTime),
		ActiveWorkers:       atomic.LoadInt64(&mc.activeWorkers),
		MaxActiveWorkers:    atomic.LoadInt64(&mc.maxActiveWorkers),
		Uptime:              time.Since(mc.startTime),
		UnstructuredByType:  reasons,
	}
}

// Reset resets all metrics
func (mc *MetricsCollector) Reset() {
	atomic.StoreInt64(&mc.totalRecords, 0)
	atomic.StoreInt64(&mc.structured, 0)
	atomic.StoreInt64(&mc.unstructured, 0)
	atomic.StoreInt64(&mc.fallbacks, 0)
	atomic.StoreInt64(&mc.resolvedFields, 0)
	atomic.StoreInt64(&mc.totalProcessingTime, 0)
	atomic.StoreInt64(&mc.maxProcessingTime, 0)
	atomic.StoreInt64(&mc.minProcessingTime, 1<<63-1)
	atomic.StoreInt64(&mc.activeWorkers, 0)
	atomic.StoreInt64(&mc.maxActiveWorkers, 0)
	mc.reasons.Range(func(key, _ any) bool {
		mc.reasons.Delete(key)
		return true
	})
	mc.startTime = time.Now()
}

// GetSummary returns a formatted summary of metrics
func (mc *MetricsCollector) GetSummary() string {
	m := mc.GetMetrics()

	return fmt.Sprintf(`Metrics Summary:
  Records: %d total (%d structured, %d unstructured, %.2f%% structured)
  Fallbacks: %d, resolved nested fields: %d
  Performance: avg %v, max %v, min %v
  Workers: %d active, %d max concurrent
  Uptime: %v`,
		m.TotalRecords,
		m.Structured,
		m.Unstructured,
		getRate(m.Structured, m.TotalRecords),
		m.Fallbacks,
		m.ResolvedFields,
		m.AvgProcessingTime,
		m.MaxProcessingTime,
		m.MinProcessingTime,
		m.ActiveWorkers,
		m.MaxActiveWorkers,
		m.Uptime,
	)
}

func getRate(part, total int64) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) / float64(total) * 100.0
}

// Metrics represents collected extraction metrics
type Metrics struct {
	TotalRecords   int64 `json:"total_records"`
	Structured     int64 `json:"structured"`
	Unstructured   int64 `json:"unstructured"`
	Fallbacks      int64 `json:"fallbacks"`
	ResolvedFields int64 `json:"resolved_fields"`

	TotalProcessingTime time.Duration `json:"total_processing_time"`
	AvgProcessingTime   time.Duration `json:"avg_processing_time"`
	MaxProcessingTime   time.Duration `json:"max_processing_time"`
	MinProcessingTime   time.Duration `json:"min_processing_time"`

	ActiveWorkers    int64 `json:"active_workers"`
	MaxActiveWorkers int64 `json:"max_active_workers"`

	Uptime             time.Duration    `json:"uptime"`
	UnstructuredByType map[string]int64 `json:"unstructured_by_type"`
}

// updateMax atomically updates target to value if value is greater
func updateMax(target *int64, value int64) {
	for {
		current := atomic.LoadInt64(target)
		if value <= current || atomic.CompareAndSwapInt64(target, current, value) {
			return
		}
	}
}

// updateMin atomically updates target to value if value is smaller
func updateMin(target *int64, value int64) {
	for {
		current := atomic.LoadInt64(target)
		if value >= current || atomic.CompareAndSwapInt64(target, current, value) {
			return
		}
	}
}
