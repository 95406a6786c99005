package probe

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

//go:embed js/webrtc.js
var webrtcJS string

// WebRTCResult reports addresses leaked through ICE candidate gathering.
// Leaking is true exactly when LocalIPs is non-empty. Classification is a
// prefix heuristic over the first IPv4 literal in each candidate line, not
// an authoritative private-range check.
type WebRTCResult struct {
	LocalIPs []string `json:"local_ips"`
	PublicIP string   `json:"public_ip,omitempty"`
	Leaking  bool     `json:"leaking"`
}

const (
	// webrtcGatherTimeout caps ICE gathering; whichever of end-of-candidates
	// or this timer fires first finalizes the result.
	webrtcGatherTimeout = 3 * time.Second

	webrtcStunURL = "stun:stun.l.google.com:19302"
)

var ipv4Literal = regexp.MustCompile(`\d{1,3}(?:\.\d{1,3}){3}`)

// WebRTCLeakTest opens a peer connection with a throwaway data channel,
// harvests ICE candidates until gathering ends or the timeout fires, and
// classifies every embedded IPv4 address. An absent peer-connection API or
// any setup failure yields the zero result.
func WebRTCLeakTest(ctx context.Context, ev Evaluator) WebRTCResult {
	js := strings.NewReplacer(
		"__STUN_URL__", webrtcStunURL,
		"__TIMEOUT_MS__", fmt.Sprintf("%d", webrtcGatherTimeout.Milliseconds()),
	).Replace(webrtcJS)

	ctx, cancel := context.WithTimeout(ctx, webrtcGatherTimeout+2*time.Second)
	defer cancel()

	var candidates []string
	if err := ev.Evaluate(ctx, js, &candidates); err != nil {
		slog.Debug("webrtc probe failed", "error", err)
		return WebRTCResult{}
	}
	return classifyCandidates(candidates)
}

// classifyCandidates extracts the first IPv4 literal of each candidate line,
// routes private prefixes into the local set and everything else (except
// 0.-prefixed placeholders) into both the public slot and the local set.
func classifyCandidates(candidates []string) WebRTCResult {
	var res WebRTCResult
	seen := make(map[string]struct{})
	add := func(ip string) {
		if _, ok := seen[ip]; ok {
			return
		}
		seen[ip] = struct{}{}
		res.LocalIPs = append(res.LocalIPs, ip)
	}

	for _, cand := range candidates {
		ip := ipv4Literal.FindString(cand)
		if ip == "" {
			continue
		}
		switch {
		case strings.HasPrefix(ip, "192.168.") ||
			strings.HasPrefix(ip, "10.") ||
			strings.HasPrefix(ip, "172."):
			add(ip)
		case !strings.HasPrefix(ip, "0."):
			res.PublicIP = ip
			add(ip)
		}
	}

	res.Leaking = len(res.LocalIPs) > 0
	return res
}
