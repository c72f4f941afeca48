package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(_ context.Context) error {
	return f.err
}

func TestHealthChecker_Health(t *testing.T) {
	t.Parallel()

	h := NewHealthChecker("audit-service", zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.Health(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["status"] != "healthy" || body["service"] != "audit-service" {
		t.Errorf("Unexpected body %v", body)
	}
}

func TestHealthChecker_Ready(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		deps       []Pinger
		wantCode   int
		wantStatus string
	}{
		{name: "no dependencies", deps: nil, wantCode: http.StatusOK, wantStatus: "ready"},
		{name: "healthy dependency", deps: []Pinger{&fakePinger{}}, wantCode: http.StatusOK, wantStatus: "ready"},
		{name: "failing dependency", deps: []Pinger{&fakePinger{err: errors.New("down")}}, wantCode: http.StatusServiceUnavailable, wantStatus: "unavailable"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthChecker("notification-service", zap.NewNop(), tt.deps...)

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			rr := httptest.NewRecorder()
			h.Ready(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d", tt.wantCode, rr.Code)
			}

			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if body["status"] != tt.wantStatus {
				t.Errorf("Expected status %q, got %q", tt.wantStatus, body["status"])
			}
		})
	}
}
