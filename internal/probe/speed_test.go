package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSpeedProbe_Run(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") == "" {
			t.Error("sample request missing cache-busting parameter")
		}
	}))
	defer ok.Close()

	p := &SpeedProbe{
		Client: http.DefaultClient,
		Servers: []SpeedServer{
			{"up", "Testville", ok.URL},
			{"down", "Nowhere", "http://127.0.0.1:1/"},
		},
	}

	var updates [][]SpeedTestEntry
	final := p.Run(context.Background(), func(entries []SpeedTestEntry) {
		updates = append(updates, entries)
	})

	// Initial emission plus testing+final per server.
	if want := 1 + 2*len(p.Servers); len(updates) < want {
		t.Fatalf("got %d updates, want at least %d", len(updates), want)
	}

	first := updates[0]
	for _, e := range first {
		if e.Status != SpeedPending {
			t.Errorf("initial status for %s = %q, want pending", e.Server, e.Status)
		}
	}

	if final[0].Status != SpeedDone {
		t.Errorf("reachable server status = %q, want done", final[0].Status)
	}
	if final[0].LatencyMillis == nil {
		t.Error("done entry must carry a latency")
	}
	if final[1].Status != SpeedError {
		t.Errorf("unreachable server status = %q, want error", final[1].Status)
	}
	if final[1].LatencyMillis != nil {
		t.Error("errored entry must not carry a latency")
	}

	// The return value equals the last emitted list.
	last := updates[len(updates)-1]
	for i := range final {
		if final[i].Status != last[i].Status {
			t.Errorf("entry %d: returned status %q != last emitted %q",
				i, final[i].Status, last[i].Status)
		}
	}
}

func TestSpeedProbe_StatusTransitionsObserved(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ok.Close()

	p := &SpeedProbe{
		Client:  http.DefaultClient,
		Servers: []SpeedServer{{"solo", "Here", ok.URL}},
	}

	var seen []SpeedStatus
	p.Run(context.Background(), func(entries []SpeedTestEntry) {
		seen = append(seen, entries[0].Status)
	})

	want := []SpeedStatus{SpeedPending, SpeedTesting, SpeedDone}
	if len(seen) != len(want) {
		t.Fatalf("observed %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("observed %v, want %v", seen, want)
		}
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []time.Duration
		want time.Duration
	}{
		{[]time.Duration{30 * time.Millisecond}, 30 * time.Millisecond},
		{[]time.Duration{10 * time.Millisecond, 50 * time.Millisecond}, 30 * time.Millisecond},
		{[]time.Duration{50 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond}, 20 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := median(tt.in); got != tt.want {
			t.Errorf("median(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSpeedProbe_NilCallback(t *testing.T) {
	p := &SpeedProbe{
		Client:  http.DefaultClient,
		Servers: []SpeedServer{{"down", "Nowhere", "http://127.0.0.1:1/"}},
	}
	final := p.Run(context.Background(), nil)
	if len(final) != 1 || final[0].Status != SpeedError {
		t.Fatalf("unexpected result: %+v", final)
	}
}
