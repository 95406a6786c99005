package probe

import (
	"context"
	_ "embed"
	"log/slog"
)

//go:embed js/webgl.js
var webglJS string

// WebGLSignature identifies the graphics stack as seen through a 3D context.
// Available=false implies Vendor and Renderer hold the Unknown sentinel.
type WebGLSignature struct {
	Vendor    string `json:"vendor"`
	Renderer  string `json:"renderer"`
	Available bool   `json:"available"`
}

// WebGLInfo reads the vendor and renderer strings from a WebGL context,
// preferring the unmasked values from the debug extension and falling back
// to the masked parameters. Once a context was obtained the result is
// always Available, even when only masked strings could be read.
func WebGLInfo(ctx context.Context, ev Evaluator) WebGLSignature {
	var raw struct {
		Available bool   `json:"available"`
		Vendor    string `json:"vendor"`
		Renderer  string `json:"renderer"`
	}
	if err := ev.Evaluate(ctx, webglJS, &raw); err != nil {
		slog.Debug("webgl probe failed", "error", err)
		return WebGLSignature{Vendor: Unknown, Renderer: Unknown}
	}
	if !raw.Available {
		return WebGLSignature{Vendor: Unknown, Renderer: Unknown}
	}

	sig := WebGLSignature{Vendor: raw.Vendor, Renderer: raw.Renderer, Available: true}
	if sig.Vendor == "" {
		sig.Vendor = Unknown
	}
	if sig.Renderer == "" {
		sig.Renderer = Unknown
	}
	return sig
}
