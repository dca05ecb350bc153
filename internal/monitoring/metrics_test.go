package monitoring_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"task-tracker/backend/internal/monitoring"

	"github.com/gin-gonic/gin"
)

func setupMonitoredRouter() (*monitoring.Monitor, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	monitor := monitoring.NewMonitor()

	router := gin.New()
	router.Use(monitor.Middleware())
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	router.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
	router.GET("/metrics", monitor.MetricsHandler())
	router.GET("/healthz", monitor.HealthHandler())

	return monitor, router
}

func TestMetricsCounting(t *testing.T) {
	_, router := setupMonitoredRouter()

	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("GET", "/ok", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
	req, _ := http.NewRequest("GET", "/boom", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var snap monitoring.MetricsSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("Failed to unmarshal metrics: %v", err)
	}

	if snap.RequestCount != 4 {
		t.Errorf("Expected 4 counted requests, got %d", snap.RequestCount)
	}
	if snap.ErrorCount != 1 {
		t.Errorf("Expected 1 error, got %d", snap.ErrorCount)
	}
	if snap.StatusCodes["200"] != 3 {
		t.Errorf("Expected 3 OK responses, got %d", snap.StatusCodes["200"])
	}
}

func TestHealthHandler(t *testing.T) {
	monitor, router := setupMonitoredRouter()
	monitor.RegisterCheck("database", func(ctx context.Context) error { return nil })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	monitor.RegisterCheck("redis", func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d when a dependency is down, got %d", http.StatusServiceUnavailable, w.Code)
	}
}
