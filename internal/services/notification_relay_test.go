package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRelayDisabled(t *testing.T) {
	relay := NewRelayService("")
	if relay.Enabled() {
		t.Error("relay without webhook URL should be disabled")
	}
	if err := relay.Process(context.Background(), &RelayTask{NotificationID: 1}); err != nil {
		t.Errorf("disabled relay should be a silent no-op, got %v", err)
	}
}

func TestRelayPostsPayload(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	relay := NewRelayService(server.URL)
	err := relay.Process(context.Background(), &RelayTask{
		NotificationID: 12,
		UserID:         4,
		Type:           "document_rejected",
		Title:          "Document rejected",
		Message:        "non-compliant slab thickness",
		RelatedID:      8,
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if received["type"] != "document_rejected" {
		t.Errorf("type = %v", received["type"])
	}
	if received["notification_id"] != float64(12) {
		t.Errorf("notification_id = %v", received["notification_id"])
	}
}

func TestRelayReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	defer server.Close()

	relay := NewRelayService(server.URL)
	err := relay.Process(context.Background(), &RelayTask{NotificationID: 1})
	if err == nil {
		t.Fatal("4xx response should surface as an error")
	}
}
