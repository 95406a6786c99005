package monitor

import (
	"testing"

	"github.com/louak/exposure/internal/collect"
	"github.com/louak/exposure/internal/probe"
)

func baseSnapshot() *collect.Snapshot {
	return &collect.Snapshot{
		Generation: 1,
		Geo:        &probe.GeoRecord{IP: "203.0.113.1"},
		CanvasHash: "1a2b3c4d",
		WebRTC: probe.WebRTCResult{
			LocalIPs: []string{"192.168.1.5"},
			Leaking:  true,
		},
		StunObserved: []string{"203.0.113.1"},
	}
}

func TestChanged_NoChange(t *testing.T) {
	a := baseSnapshot()
	b := baseSnapshot()
	b.Generation = 2
	// Equal sets in a different order are still the same observation.
	b.WebRTC.LocalIPs = []string{"192.168.1.5"}

	if changed(a, b) {
		t.Fatal("expected no change")
	}
}

func TestChanged_PublicIPChange(t *testing.T) {
	a := baseSnapshot()
	b := baseSnapshot()
	b.Geo = &probe.GeoRecord{IP: "198.51.100.9"}

	if !changed(a, b) {
		t.Fatal("expected change on public IP")
	}
}

func TestChanged_GeoBecomesBlocked(t *testing.T) {
	a := baseSnapshot()
	b := baseSnapshot()
	b.Geo = nil

	if !changed(a, b) {
		t.Fatal("expected change when geo lookup becomes blocked")
	}
}

func TestChanged_LeakStops(t *testing.T) {
	a := baseSnapshot()
	b := baseSnapshot()
	b.WebRTC = probe.WebRTCResult{}

	if !changed(a, b) {
		t.Fatal("expected change when the leak disappears")
	}
}

func TestChanged_AdBlockerToggle(t *testing.T) {
	a := baseSnapshot()
	b := baseSnapshot()
	b.AdBlocker = true

	if !changed(a, b) {
		t.Fatal("expected change on blocker toggle")
	}
}

func TestChanged_CanvasHashChange(t *testing.T) {
	a := baseSnapshot()
	b := baseSnapshot()
	b.CanvasHash = "ffffffff"

	if !changed(a, b) {
		t.Fatal("expected change on canvas hash")
	}
}

func TestChanged_ScreenIgnored(t *testing.T) {
	a := baseSnapshot()
	b := baseSnapshot()
	b.Env.Screen.Width = 2560

	if changed(a, b) {
		t.Fatal("environment-only changes must not fire events")
	}
}

func TestChanged_LANIgnored(t *testing.T) {
	// mDNS/SSDP answers flap on busy networks; LAN results never fire events.
	a := baseSnapshot()
	b := baseSnapshot()
	b.LAN = probe.LANExposure{Devices: []string{"Living Room TV (Chromecast)"}}

	if changed(a, b) {
		t.Fatal("LAN discovery noise must not fire events")
	}
}

func TestSameStringSet(t *testing.T) {
	if !sameStringSet([]string{"a", "b"}, []string{"b", "a"}) {
		t.Error("order must not matter")
	}
	if sameStringSet([]string{"a", "a"}, []string{"a", "b"}) {
		t.Error("multiplicity must matter")
	}
	if sameStringSet([]string{"a"}, []string{"a", "a"}) {
		t.Error("length must matter")
	}
}
