package probe

import (
	"context"
	_ "embed"
	"log/slog"
	"time"
)

//go:embed js/visitor_id.js
var visitorIDJS string

// VisitorIDUnavailable is returned when the fingerprinting capability could
// not be loaded or failed to produce an identifier.
const VisitorIDUnavailable = "unable to generate"

const visitorIDTimeout = 10 * time.Second

// VisitorID delegates to the FingerprintJS capability loaded inside the
// page and returns its opaque visitor identifier. The library caches its
// own computation, so repeated calls within one session are idempotent.
// Any failure yields the unavailable sentinel.
func VisitorID(ctx context.Context, ev Evaluator) string {
	ctx, cancel := context.WithTimeout(ctx, visitorIDTimeout)
	defer cancel()

	var id string
	if err := ev.Evaluate(ctx, visitorIDJS, &id); err != nil {
		slog.Debug("visitor id probe failed", "error", err)
		return VisitorIDUnavailable
	}
	if id == "" {
		return VisitorIDUnavailable
	}
	return id
}
