package probe

import (
	"context"
	_ "embed"
	"log/slog"

	"github.com/louak/exposure/internal/hashutil"
)

//go:embed js/canvas.js
var canvasJS string

// CanvasUnavailable is returned when the page cannot produce a 2D drawing
// context or refuses to serialize the surface.
const CanvasUnavailable = "Not available"

// canvasHashLen bounds the rendered hash.
const canvasHashLen = 16

// CanvasFingerprint renders a fixed set of primitives on an off-screen
// 200x50 canvas inside the page, then hashes the serialized pixel encoding.
// Identical rendering stacks produce identical output.
func CanvasFingerprint(ctx context.Context, ev Evaluator) string {
	var dataURL string
	if err := ev.Evaluate(ctx, canvasJS, &dataURL); err != nil {
		slog.Debug("canvas probe failed", "error", err)
		return CanvasUnavailable
	}
	if dataURL == "" {
		return CanvasUnavailable
	}

	h := hashutil.ShortHash(dataURL)
	if len(h) > canvasHashLen {
		h = h[:canvasHashLen]
	}
	return h
}
