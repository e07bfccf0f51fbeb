package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header to be set")
	}
}

func TestCORSMiddleware_OPTIONS(t *testing.T) {
	handler := CORSMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("OPTIONS", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d for OPTIONS, got %d", http.StatusOK, w.Code)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	handler := LoggingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestErrorHandlingMiddleware(t *testing.T) {
	handler := ErrorHandlingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimitMiddleware(2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	w := httptest.NewRecorder()

	// First request should succeed
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	// Second request should succeed
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w2.Code)
	}

	// Third request should be rate limited
	w3 := httptest.NewRecorder()
	handler.ServeHTTP(w3, req)
	if w3.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status %d, got %d", http.StatusTooManyRequests, w3.Code)
	}
}

func TestErrorHandlingMiddleware_NonStringPanic(t *testing.T) {
	handler := ErrorHandlingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("boom"))
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestRunIDMiddleware_Generates(t *testing.T) {
	var seen string
	handler := RunIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RunID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/v1/indicators", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if seen == "" {
		t.Fatal("Expected run ID in request context")
	}
	if w.Header().Get(RunIDHeader) != seen {
		t.Errorf("Expected response header %s, got %s", seen, w.Header().Get(RunIDHeader))
	}
}

func TestRunIDMiddleware_KeepsClientID(t *testing.T) {
	var seen string
	handler := RunIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RunID(r.Context())
	}))

	req := httptest.NewRequest("POST", "/api/v1/indicators", nil)
	req.Header.Set(RunIDHeader, "nightly-42")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if seen != "nightly-42" {
		t.Errorf("Expected nightly-42, got %s", seen)
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "10.0.0.1:999"
	if ip := getClientIP(req); ip != "10.0.0.1:999" {
		t.Errorf("Expected RemoteAddr fallback, got %s", ip)
	}

	req.Header.Set("X-Real-IP", "10.0.0.2")
	if ip := getClientIP(req); ip != "10.0.0.2" {
		t.Errorf("Expected X-Real-IP, got %s", ip)
	}

	req.Header.Set("X-Forwarded-For", "10.0.0.3")
	if ip := getClientIP(req); ip != "10.0.0.3" {
		t.Errorf("Expected X-Forwarded-For, got %s", ip)
	}
}

func TestChainMiddleware(t *testing.T) {
	handler := ChainMiddleware(
		CORSMiddleware(),
		LoggingMiddleware(),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header to be set")
	}
}


func TestServerMiddleware_RequestLogHasRunID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Set(zap.New(core))
	defer logger.Set(nil)

	var handlerRunID string
	handler := ServerMiddleware(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRunID = logger.RunID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/v1/indicators", nil)
	req.Header.Set(RunIDHeader, "client-run")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if handlerRunID != "client-run" {
		t.Errorf("Expected handler run ID client-run, got %q", handlerRunID)
	}
	if got := w.Header().Get(RunIDHeader); got != "client-run" {
		t.Errorf("Expected %s header client-run, got %q", RunIDHeader, got)
	}

	entries := logs.FilterMessage("HTTP request").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 request log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["run_id"]; got != "client-run" {
		t.Errorf("Expected request log run_id client-run, got %v", got)
	}
}

func TestServerMiddleware_RateLimit(t *testing.T) {
	handler := ServerMiddleware(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 2)
	for i := range codes {
		req := httptest.NewRequest("GET", "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("Expected 200 then 429, got %v", codes)
	}
}
