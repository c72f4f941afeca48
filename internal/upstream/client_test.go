package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestClient_GetTask(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tasks/t-1" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-User-ID") != "u-1" {
			t.Errorf("Expected X-User-ID header, got %q", r.Header.Get("X-User-ID"))
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"title": "Water the plants"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())

	title, err := client.GetTask(context.Background(), "t-1", "u-1")
	if err != nil {
		t.Fatalf("GetTask returned error: %v", err)
	}
	if title != "Water the plants" {
		t.Errorf("Expected title, got %q", title)
	}
}

func TestClient_GetTaskNotFoundIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())

	title, err := client.GetTask(context.Background(), "missing", "u-1")
	if err != nil {
		t.Fatalf("Expected no error for 404, got %v", err)
	}
	if title != "" {
		t.Errorf("Expected empty title, got %q", title)
	}
}

func TestClient_PatchReminderStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{name: "ok", statusCode: http.StatusOK, wantErr: false},
		{name: "no content", statusCode: http.StatusNoContent, wantErr: false},
		{name: "server error", statusCode: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPatch {
					t.Errorf("Expected PATCH, got %s", r.Method)
				}
				if r.URL.Path != "/api/reminders/r-1/status" {
					t.Errorf("Unexpected path %s", r.URL.Path)
				}
				var body map[string]string
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("Failed to decode body: %v", err)
				}
				if body["status"] != ReminderStatusSent {
					t.Errorf("Expected status sent, got %q", body["status"])
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, zap.NewNop())
			err := client.PatchReminderStatus(context.Background(), "r-1", ReminderStatusSent)
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}
