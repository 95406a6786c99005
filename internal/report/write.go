// Package report renders snapshots for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/louak/exposure/internal/collect"
	"github.com/louak/exposure/internal/probe"
)

// GeoBlocked is shown when no provider could resolve the public IP. A
// failed lookup is a positive privacy signal, not an error state.
const GeoBlocked = "Protected or Blocked"

func WriteJSON(w io.Writer, s collect.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func WriteText(w io.Writer, s collect.Snapshot) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Collected at: %s (run %d)\n\n", s.TakenAt.Format("2006-01-02T15:04:05Z"), s.Generation)

	b.WriteString("-- Network identity --\n")
	if s.Geo == nil {
		fmt.Fprintf(&b, "Public IP: %s\n", GeoBlocked)
	} else {
		fmt.Fprintf(&b, "Public IP: %s\n", s.Geo.IP)
		fmt.Fprintf(&b, "Location: %s, %s, %s\n", s.Geo.City, s.Geo.Region, s.Geo.Country)
		fmt.Fprintf(&b, "ISP: %s\n", s.Geo.ISP)
		fmt.Fprintf(&b, "Timezone: %s\n", s.Geo.Timezone)
	}
	if len(s.StunObserved) > 0 {
		fmt.Fprintf(&b, "STUN observed: %s\n", strings.Join(s.StunObserved, ", "))
	}
	if s.LAN.RouterExternalIP != "" {
		fmt.Fprintf(&b, "Router external IP: %s\n", s.LAN.RouterExternalIP)
	}
	if len(s.LAN.Devices) > 0 {
		fmt.Fprintf(&b, "Discoverable LAN devices: %s\n", strings.Join(s.LAN.Devices, ", "))
	}

	b.WriteString("\n-- Fingerprint surface --\n")
	fmt.Fprintf(&b, "Visitor ID: %s\n", s.VisitorID)
	fmt.Fprintf(&b, "Canvas hash: %s\n", s.CanvasHash)
	if s.WebGL.Available {
		fmt.Fprintf(&b, "WebGL: %s / %s\n", s.WebGL.Vendor, s.WebGL.Renderer)
	} else {
		b.WriteString("WebGL: not available\n")
	}
	fmt.Fprintf(&b, "Fonts detected (%d): %s\n", len(s.Fonts), strings.Join(s.Fonts, ", "))

	b.WriteString("\n-- Leak vectors --\n")
	if s.WebRTC.Leaking {
		fmt.Fprintf(&b, "WebRTC leak: YES (%s)\n", strings.Join(s.WebRTC.LocalIPs, ", "))
		if s.WebRTC.PublicIP != "" {
			fmt.Fprintf(&b, "WebRTC public IP: %s\n", s.WebRTC.PublicIP)
		}
	} else {
		b.WriteString("WebRTC leak: no\n")
	}

	b.WriteString("\n-- Environment --\n")
	fmt.Fprintf(&b, "Browser: %s %s on %s\n", s.Env.UA.Browser, s.Env.UA.Version, s.Env.UA.OS)
	fmt.Fprintf(&b, "Screen: %dx%d, depth %d\n", s.Env.Screen.Width, s.Env.Screen.Height, s.Env.Screen.ColorDepth)
	fmt.Fprintf(&b, "Locale: %s (%s)\n", s.Env.Locale.Language, s.Env.Locale.Timezone)
	fmt.Fprintf(&b, "Cookies: %s, third-party %s\n", enabledWord(s.Env.Cookies.Enabled), s.Env.Cookies.ThirdParty)
	if s.Env.Connection.Available {
		fmt.Fprintf(&b, "Connection: %s, %.1f Mbps, rtt %dms\n",
			s.Env.Connection.EffectiveType, s.Env.Connection.DownlinkMbps, s.Env.Connection.RTTMillis)
	}
	if s.Env.Hardware.Concurrency > 0 {
		fmt.Fprintf(&b, "Hardware: %d cores, %.0f GB memory\n",
			s.Env.Hardware.Concurrency, s.Env.Hardware.DeviceMemoryGB)
	}
	if s.Env.Storage.Available {
		fmt.Fprintf(&b, "Storage quota: %.1f GB\n", float64(s.Env.Storage.QuotaBytes)/1e9)
	}
	fmt.Fprintf(&b, "Ad blocker: %s\n", detectedWord(s.AdBlocker))
	fmt.Fprintf(&b, "Do Not Track: %s\n", s.Env.DoNotTrack)
	fmt.Fprintf(&b, "Referrer: %s\n", s.Env.Referrer)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSpeed renders latency results as a small table.
func WriteSpeed(w io.Writer, entries []probe.SpeedTestEntry) error {
	var b strings.Builder
	for _, e := range entries {
		switch e.Status {
		case probe.SpeedDone:
			fmt.Fprintf(&b, "%-12s %-18s %dms\n", e.Server, e.Location, *e.LatencyMillis)
		default:
			fmt.Fprintf(&b, "%-12s %-18s %s\n", e.Server, e.Location, e.Status)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func enabledWord(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

func detectedWord(v bool) string {
	if v {
		return "detected"
	}
	return "not detected"
}
