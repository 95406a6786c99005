// Package monitor re-collects snapshots on a fixed cadence and reports when
// the observable surface changes, e.g. a VPN connecting or an extension
// being toggled between runs.
package monitor

import (
	"context"
	"time"

	"github.com/louak/exposure/internal/collect"
)

// Event describes one detected change between consecutive snapshots.
type Event struct {
	At       time.Time
	Message  string
	Previous *collect.Snapshot
	Current  *collect.Snapshot
}

type Options struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Run collects immediately and then on every tick until the context ends.
// onEvent fires whenever a snapshot differs from the previous one. A stale
// snapshot (generation at or below the newest already seen) is discarded
// rather than compared, so a slow superseded run can never overwrite a
// newer observation.
func Run(ctx context.Context, c *collect.Collector, opt Options, onEvent func(Event)) {
	var prev *collect.Snapshot

	take := func() {
		runCtx, cancel := context.WithTimeout(ctx, opt.Timeout)
		s := c.Collect(runCtx)
		cancel()

		if prev != nil && s.Generation <= prev.Generation {
			return
		}
		if prev != nil && changed(prev, &s) {
			onEvent(Event{
				At:       time.Now().UTC(),
				Message:  "observable surface changed",
				Previous: prev,
				Current:  &s,
			})
		}
		prev = &s
	}

	take()

	ticker := time.NewTicker(opt.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			take()
		}
	}
}

// changed compares the signals that matter for exposure: public identity,
// leak state, blocker presence and the rendering fingerprint. Environment
// fields like screen size are ignored; they move with window state, not
// with exposure.
func changed(a, b *collect.Snapshot) bool {
	if geoIP(a) != geoIP(b) {
		return true
	}
	if a.WebRTC.Leaking != b.WebRTC.Leaking || a.WebRTC.PublicIP != b.WebRTC.PublicIP {
		return true
	}
	if !sameStringSet(a.WebRTC.LocalIPs, b.WebRTC.LocalIPs) {
		return true
	}
	if !sameStringSet(a.StunObserved, b.StunObserved) {
		return true
	}
	if a.AdBlocker != b.AdBlocker {
		return true
	}
	if a.CanvasHash != b.CanvasHash {
		return true
	}
	return false
}

func geoIP(s *collect.Snapshot) string {
	if s.Geo == nil {
		return ""
	}
	return s.Geo.IP
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		if counts[s] == 0 {
			return false
		}
		counts[s]--
	}
	return true
}
