package riot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	c, err := NewClient("RGAPI-test",
		WithEndpoint(server.URL),
		WithRetry(3, time.Millisecond),
		WithCourtesyDelay(0),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, server
}

func TestNewClient_RequiresKey(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Error("Expected error for empty api key")
	}
}

func TestFetch_Success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Riot-Token") != "RGAPI-test" {
			t.Error("Expected X-Riot-Token header")
		}
		w.Write([]byte(`{"puuid":"p1","gameName":"Faker","tagLine":"KR1"}`))
	})

	acct, err := c.GetAccountByRiotID(context.Background(), "kr", "Faker", "KR1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if acct.PUUID != "p1" || acct.GameName != "Faker" {
		t.Errorf("Unexpected account: %+v", acct)
	}
}

func TestFetch_ForbiddenIsAuthErrorWithoutRetry(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.GetMatch(context.Background(), "na1", "NA1_1")
	var ae *AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("Expected AuthError, got %v", err)
	}
	if !IsAuthError(err) {
		t.Error("IsAuthError should be true")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestFetch_NotFoundWithoutRetry(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetMatch(context.Background(), "na1", "NA1_404")
	if !IsNotFound(err) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestFetch_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`["NA1_1","NA1_2"]`))
	})

	ids, err := c.GetMatchIDs(context.Background(), "na1", "p1", MatchIDQuery{Count: 50, Type: "ranked"})
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 ids, got %v", ids)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestFetch_ExhaustedRetriesIsUpstreamError(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(strings.Repeat("x", 500)))
	})

	_, err := c.GetMatch(context.Background(), "na1", "NA1_1")
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("Expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusServiceUnavailable {
		t.Errorf("Expected last status 503, got %d", ue.Status)
	}
	if len(ue.Body) != maxErrorBody {
		t.Errorf("Expected body truncated to %d, got %d", maxErrorBody, len(ue.Body))
	}
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
}

func TestFetch_OtherStatusFailsImmediately(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":{"message":"Bad Request"}}`))
	})

	_, err := c.GetMatch(context.Background(), "na1", "bad")
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Status != http.StatusBadRequest {
		t.Fatalf("Expected UpstreamError 400, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestGetMatchIDs_Query(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lol/match/v5/matches/by-puuid/p1/ids" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("queue") != "420" || q.Get("count") != "20" || q.Get("start") != "0" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[]`))
	})

	if _, err := c.GetMatchIDs(context.Background(), "na1", "p1", MatchIDQuery{Count: 20, Queue: SoloQueueID}); err != nil {
		t.Fatal(err)
	}
}

func TestGetLeagueEntries_NonListIsEmptyPage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lol/league/v4/entries/RANKED_SOLO_5x5/GOLD/II" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"weird"}`))
	})

	entries, err := c.GetLeagueEntries(context.Background(), "na1", SoloQueue, "gold", "ii", 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty page, got %d entries", len(entries))
	}
}

func TestLinearBackOff(t *testing.T) {
	b := &linearBackOff{base: 600 * time.Millisecond}
	if d := b.NextBackOff(); d != 600*time.Millisecond {
		t.Errorf("attempt 1: expected 600ms, got %v", d)
	}
	b.retryAfter = 5 * time.Second
	if d := b.NextBackOff(); d != 5*time.Second {
		t.Errorf("attempt 2: expected Retry-After 5s, got %v", d)
	}
	if d := b.NextBackOff(); d != 1800*time.Millisecond {
		t.Errorf("attempt 3: expected 1.8s, got %v", d)
	}
	b.Reset()
	if d := b.NextBackOff(); d != 600*time.Millisecond {
		t.Errorf("after reset: expected 600ms, got %v", d)
	}
}

func TestRoutingForPlatform(t *testing.T) {
	tests := map[string]string{
		"na1": "americas", "BR1": "americas", "euw1": "europe", "ru": "europe",
		"kr": "asia", "jp1": "asia", "oc1": "sea", "vn2": "sea", "xx9": "americas",
	}
	for platform, want := range tests {
		if got := RoutingForPlatform(platform); got != want {
			t.Errorf("RoutingForPlatform(%q) = %q, want %q", platform, got, want)
		}
	}
}

func TestParseRiotID(t *testing.T) {
	name, tag, err := ParseRiotID("Hide on bush#KR1")
	if err != nil || name != "Hide on bush" || tag != "KR1" {
		t.Errorf("Unexpected parse: %q %q %v", name, tag, err)
	}
	for _, bad := range []string{"NoTag", "#KR1", "Name#"} {
		if _, _, err := ParseRiotID(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestValidRank(t *testing.T) {
	tests := []struct {
		tier, division string
		want           bool
	}{
		{"GOLD", "II", true},
		{"gold", "iv", true},
		{"MASTER", "I", true},
		{"MASTER", "II", false},
		{"GOLD", "V", false},
		{"WOOD", "I", false},
	}
	for _, tt := range tests {
		if got := ValidRank(tt.tier, tt.division); got != tt.want {
			t.Errorf("ValidRank(%q, %q) = %v, want %v", tt.tier, tt.division, got, tt.want)
		}
	}
}
