package discord

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func sampleSummary() StageSummary {
	return StageSummary{
		Stage: "match-data", Rank: "DIAMOND/II", Shard: "3/6",
		Total: 12000, Succeeded: 11950, Skipped: 50, Elapsed: 2*time.Hour + 5*time.Minute,
		Output: "csv_data/parsed_match_data/DIAMOND/II/data_DIAMOND_II_part3.csv",
	}
}

func TestKeyRejectedPayload_Format(t *testing.T) {
	payload := NewKeyRejectedPayload(sampleSummary())

	if !strings.Contains(payload.Content, "@here") {
		t.Error("Expected @here mention in content")
	}
	if len(payload.Embeds) != 1 {
		t.Fatalf("Expected 1 embed, got %d", len(payload.Embeds))
	}
	embed := payload.Embeds[0]
	if embed.Color != colorRed {
		t.Errorf("Expected red color, got %d", embed.Color)
	}
	if !strings.Contains(embed.Title, "match-data") {
		t.Errorf("Expected stage in title, got %s", embed.Title)
	}
	if embed.Fields[2].Value != "12,000 / 12,000" {
		t.Errorf("Expected processed '12,000 / 12,000', got %s", embed.Fields[2].Value)
	}
	if embed.Fields[4].Value != "2h 5m" {
		t.Errorf("Expected runtime '2h 5m', got %s", embed.Fields[4].Value)
	}
}

func TestStageCompletePayload_ColorBySkips(t *testing.T) {
	s := sampleSummary()
	if c := NewStageCompletePayload(s).Embeds[0].Color; c != colorAmber {
		t.Errorf("Expected amber with skips, got %d", c)
	}
	s.Skipped = 0
	p := NewStageCompletePayload(s)
	if p.Embeds[0].Color != colorGreen {
		t.Errorf("Expected green without skips, got %d", p.Embeds[0].Color)
	}
	last := p.Embeds[0].Fields[len(p.Embeds[0].Fields)-1]
	if last.Name != "Output" || !strings.Contains(last.Value, "part3.csv") {
		t.Errorf("Expected output field, got %+v", last)
	}
}

func TestWebhookClient_Send(t *testing.T) {
	var received WebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %s", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := NewWebhookClient(server.URL).StageComplete(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(received.Embeds) != 1 || !strings.Contains(received.Embeds[0].Title, "complete") {
		t.Errorf("Unexpected payload %+v", received)
	}
}

func TestWebhookClient_RetriesOnRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := NewWebhookClient(server.URL).KeyRejected(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("Expected success after retry, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestWebhookClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	if err := NewWebhookClient(server.URL).StageComplete(context.Background(), sampleSummary()); err == nil {
		t.Error("Expected error for 400 response")
	}
}

func TestNewNotifier_EmptyURLIsNop(t *testing.T) {
	n := NewNotifier("")
	if _, ok := n.(NopNotifier); !ok {
		t.Errorf("Expected NopNotifier, got %T", n)
	}
	if err := n.KeyRejected(context.Background(), StageSummary{}); err != nil {
		t.Error(err)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1,000", 47832: "47,832", 1234567: "1,234,567"}
	for n, want := range tests {
		if got := formatNumber(n); got != want {
			t.Errorf("formatNumber(%d) = %s, want %s", n, got, want)
		}
	}
}
