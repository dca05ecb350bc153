package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// MetricsSnapshot is the wire form served by the metrics endpoint.
type MetricsSnapshot struct {
	RequestCount   int64            `json:"request_count"`
	ErrorCount     int64            `json:"error_count"`
	ActiveRequests int64            `json:"active_requests"`
	StatusCodes    map[string]int64 `json:"status_codes"`
	Endpoints      map[string]int64 `json:"endpoint_calls"`
	StartTime      time.Time        `json:"start_time"`
	LastRequest    time.Time        `json:"last_request"`
	AvgDurationMs  float64          `json:"avg_request_duration_ms"`
}

type HealthCheckFunc func(ctx context.Context) error

type healthResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Monitor collects per-request counters and runs registered dependency
// health checks.
type Monitor struct {
	mu             sync.Mutex
	requestCount   int64
	errorCount     int64
	activeRequests int64
	statusCodes    map[string]int64
	endpoints      map[string]int64
	startTime      time.Time
	lastRequest    time.Time
	totalDuration  time.Duration

	checksMu sync.RWMutex
	checks   map[string]HealthCheckFunc
}

func NewMonitor() *Monitor {
	return &Monitor{
		statusCodes: make(map[string]int64),
		endpoints:   make(map[string]int64),
		startTime:   time.Now(),
		checks:      make(map[string]HealthCheckFunc),
	}
}

func (m *Monitor) RegisterCheck(name string, check HealthCheckFunc) {
	m.checksMu.Lock()
	defer m.checksMu.Unlock()
	m.checks[name] = check
}

func (m *Monitor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.mu.Lock()
		m.activeRequests++
		m.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		m.mu.Lock()
		m.activeRequests--
		m.requestCount++
		m.lastRequest = time.Now()
		m.totalDuration += duration
		m.statusCodes[strconv.Itoa(status)]++
		m.endpoints[c.Request.Method+" "+c.FullPath()]++
		if status >= 500 {
			m.errorCount++
		}
		m.mu.Unlock()
	}
}

func (m *Monitor) snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		RequestCount:   m.requestCount,
		ErrorCount:     m.errorCount,
		ActiveRequests: m.activeRequests,
		StatusCodes:    make(map[string]int64, len(m.statusCodes)),
		Endpoints:      make(map[string]int64, len(m.endpoints)),
		StartTime:      m.startTime,
		LastRequest:    m.lastRequest,
	}
	for code, count := range m.statusCodes {
		snap.StatusCodes[code] = count
	}
	for endpoint, count := range m.endpoints {
		snap.Endpoints[endpoint] = count
	}
	if m.requestCount > 0 {
		snap.AvgDurationMs = float64(m.totalDuration.Milliseconds()) / float64(m.requestCount)
	}
	return snap
}

func (m *Monitor) MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, m.snapshot())
	}
}

// HealthHandler runs every registered check with a short deadline and
// reports 503 when any dependency is down.
func (m *Monitor) HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		m.checksMu.RLock()
		checks := make(map[string]HealthCheckFunc, len(m.checks))
		for name, check := range m.checks {
			checks[name] = check
		}
		m.checksMu.RUnlock()

		results := make([]healthResult, 0, len(checks))
		healthy := true
		for name, check := range checks {
			result := healthResult{Name: name, Status: "ok"}
			if err := check(ctx); err != nil {
				result.Status = "down"
				result.Message = err.Error()
				healthy = false
			}
			results = append(results, result)
		}

		status := http.StatusOK
		overall := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}

		c.JSON(status, gin.H{
			"status": overall,
			"uptime": time.Since(m.startTime).String(),
			"checks": results,
		})
	}
}
