package probe

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// SpeedStatus is the lifecycle of one latency measurement. Entries move
// pending → testing → done|error and never back.
type SpeedStatus string

const (
	SpeedPending SpeedStatus = "pending"
	SpeedTesting SpeedStatus = "testing"
	SpeedDone    SpeedStatus = "done"
	SpeedError   SpeedStatus = "error"
)

// SpeedTestEntry is one server's measurement state. LatencyMillis is set
// only when Status is done.
type SpeedTestEntry struct {
	Server        string      `json:"server"`
	Location      string      `json:"location"`
	LatencyMillis *int64      `json:"latency_ms,omitempty"`
	Status        SpeedStatus `json:"status"`
}

// SpeedServer is a fixed measurement target.
type SpeedServer struct {
	Name     string
	Location string
	URL      string
}

// DefaultSpeedServers are well-known endpoints whose small static assets
// answer HEAD requests quickly from anywhere.
var DefaultSpeedServers = []SpeedServer{
	{"Cloudflare", "Global CDN", "https://www.cloudflare.com/favicon.ico"},
	{"Google", "Global", "https://www.google.com/favicon.ico"},
	{"GitHub", "San Francisco, US", "https://github.com/favicon.ico"},
	{"Wikipedia", "Amsterdam, NL", "https://www.wikipedia.org/favicon.ico"},
}

const speedSamplesPerServer = 3

// SpeedProbe measures round-trip latency to a fixed server list.
type SpeedProbe struct {
	Client  *http.Client
	Servers []SpeedServer
}

func NewSpeedProbe(client *http.Client) *SpeedProbe {
	return &SpeedProbe{Client: client, Servers: DefaultSpeedServers}
}

// Run iterates the server list sequentially. onUpdate receives a copy of
// the full entry list after every status transition (and once up front), so
// callers can render progressive results; the returned slice equals the
// final emitted state. onUpdate may be nil.
func (p *SpeedProbe) Run(ctx context.Context, onUpdate func([]SpeedTestEntry)) []SpeedTestEntry {
	entries := make([]SpeedTestEntry, len(p.Servers))
	for i, s := range p.Servers {
		entries[i] = SpeedTestEntry{Server: s.Name, Location: s.Location, Status: SpeedPending}
	}

	emit := func() {
		if onUpdate == nil {
			return
		}
		snap := make([]SpeedTestEntry, len(entries))
		copy(snap, entries)
		onUpdate(snap)
	}
	emit()

	for i, srv := range p.Servers {
		entries[i].Status = SpeedTesting
		emit()

		samples := p.sample(ctx, srv)
		if len(samples) > 0 {
			ms := median(samples).Milliseconds()
			entries[i].LatencyMillis = &ms
			entries[i].Status = SpeedDone
		} else {
			entries[i].Status = SpeedError
		}
		emit()
	}

	return entries
}

func (p *SpeedProbe) sample(ctx context.Context, srv SpeedServer) []time.Duration {
	var samples []time.Duration
	for n := 0; n < speedSamplesPerServer; n++ {
		if ctx.Err() != nil {
			break
		}
		d, err := p.timeHead(ctx, srv.URL)
		if err != nil {
			slog.Debug("latency sample failed", "server", srv.Name, "error", err)
			continue
		}
		samples = append(samples, d)
	}
	return samples
}

func (p *SpeedProbe) timeHead(ctx context.Context, rawURL string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Cache-busting query parameter so every sample travels the wire.
	busted := fmt.Sprintf("%s?t=%d", rawURL, time.Now().UnixNano())
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, busted, nil)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return time.Since(start), nil
}

func median(samples []time.Duration) time.Duration {
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
