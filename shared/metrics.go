package shared

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RouteStats aggregates request counts and latency for one route.
type RouteStats struct {
	Route              string        `json:"route"`
	TotalRequests      int64         `json:"total_requests"`
	SuccessfulRequests int64         `json:"successful_requests"`
	FailedRequests     int64         `json:"failed_requests"`
	TotalLatency       time.Duration `json:"total_latency"`
	AverageLatency     time.Duration `json:"average_latency"`
	LastUpdated        time.Time     `json:"last_updated"`
}

// RequestMetrics tracks per-route request metrics for the whole app. A
// request counts as failed only on 5xx; 4xx outcomes are the API doing
// its job.
type RequestMetrics struct {
	routes    map[string]*RouteStats
	startedAt time.Time
	mutex     sync.RWMutex
}

// NewRequestMetrics creates a new metrics tracker
func NewRequestMetrics() *RequestMetrics {
	return &RequestMetrics{
		routes:    make(map[string]*RouteStats),
		startedAt: time.Now(),
	}
}

// RecordRequest records one request outcome for a route
func (m *RequestMetrics) RecordRequest(route string, success bool, latency time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stats, ok := m.routes[route]
	if !ok {
		stats = &RouteStats{Route: route}
		m.routes[route] = stats
	}

	stats.TotalRequests++
	stats.TotalLatency += latency
	stats.AverageLatency = time.Duration(int64(stats.TotalLatency) / stats.TotalRequests)

	if success {
		stats.SuccessfulRequests++
	} else {
		stats.FailedRequests++
	}

	stats.LastUpdated = time.Now()
}

// GetSnapshot returns a copy of all route stats, sorted by route
func (m *RequestMetrics) GetSnapshot() []RouteStats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snapshot := make([]RouteStats, 0, len(m.routes))
	for _, stats := range m.routes {
		snapshot = append(snapshot, *stats)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Route < snapshot[j].Route })
	return snapshot
}

// GetSuccessRate returns the overall success rate as a percentage
func (m *RequestMetrics) GetSuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var total, successful int64
	for _, stats := range m.routes {
		total += stats.TotalRequests
		successful += stats.SuccessfulRequests
	}
	if total == 0 {
		return 0
	}
	return float64(successful) / float64(total) * 100
}

// LogSummary logs a summary of all route metrics
func (m *RequestMetrics) LogSummary() {
	for _, stats := range m.GetSnapshot() {
		logrus.WithFields(logrus.Fields{
			"route":           stats.Route,
			"total_requests":  stats.TotalRequests,
			"successful":      stats.SuccessfulRequests,
			"failed":          stats.FailedRequests,
			"average_latency": stats.AverageLatency,
		}).Info("Route metrics summary")
	}

	logrus.WithFields(logrus.Fields{
		"uptime":       time.Since(m.startedAt),
		"success_rate": m.GetSuccessRate(),
	}).Info("Request metrics summary")
}
