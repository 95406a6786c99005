// Package collect orchestrates the probes and assembles their results into
// immutable snapshots.
package collect

import (
	"time"

	"github.com/louak/exposure/internal/probe"
)

// Snapshot is the complete aggregate of one collection cycle. Every field
// is produced fresh per run; a snapshot is never mutated after Collect
// returns, so readers can hold it without copying.
type Snapshot struct {
	// Generation is a monotonically increasing run counter. Consumers that
	// overlap collections keep only the highest generation they have seen,
	// which discards late results from superseded runs.
	Generation uint64    `json:"generation"`
	TakenAt    time.Time `json:"taken_at"`

	// Geo is nil when every provider failed: "protected or blocked", not an
	// error.
	Geo *probe.GeoRecord `json:"geo"`

	VisitorID    string               `json:"visitor_id"`
	CanvasHash   string               `json:"canvas_hash"`
	WebGL        probe.WebGLSignature `json:"webgl"`
	WebRTC       probe.WebRTCResult   `json:"webrtc"`
	StunObserved []string             `json:"stun_observed,omitempty"`
	LAN          probe.LANExposure    `json:"lan"`
	Fonts        []string             `json:"fonts"`
	AdBlocker    bool                 `json:"ad_blocker"`
	Env          probe.Environment    `json:"environment"`
}
