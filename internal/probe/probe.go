// Package probe implements the individual signal probes: each one queries a
// single browser or network capability, absorbs its own failures, and returns
// a normalized result. Probes never return errors to the orchestrator; a
// capability that is missing or misbehaving yields the probe's documented
// sentinel value instead.
package probe

import "context"

// Evaluator runs a JavaScript expression in the probed page and decodes its
// result into out. Expressions that return a promise are awaited. The real
// implementation is a headless browser session; tests supply fakes.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string, out any) error
}

// Unknown is the sentinel for string fields whose underlying capability is
// absent or returned nothing usable. Results carry it instead of empty
// strings so renderers never have to special-case missing data.
const Unknown = "Unknown"
