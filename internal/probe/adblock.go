package probe

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

//go:embed js/adblock_bait.js
var adblockBaitJS string

const (
	// DefaultAdScriptURL is a well-known ad-serving script; blockers that
	// filter at the network layer fail the request outright.
	DefaultAdScriptURL = "https://pagead2.googlesyndication.com/pagead/js/adsbygoogle.js"

	// baitSettleDelay gives blocking stylesheets and extensions time to act
	// on the inserted bait element.
	baitSettleDelay = 100 * time.Millisecond
)

// AdBlockProbe combines two independent signals: a DOM bait element styled
// like an ad unit, and a HEAD request to a known ad script. A failed script
// request is the stronger signal and short-circuits to true regardless of
// what the bait test saw.
type AdBlockProbe struct {
	client    *http.Client
	scriptURL string
}

func NewAdBlockProbe(client *http.Client) *AdBlockProbe {
	return &AdBlockProbe{client: client, scriptURL: DefaultAdScriptURL}
}

// Detect reports whether an ad blocker appears to be active.
func (p *AdBlockProbe) Detect(ctx context.Context, ev Evaluator) bool {
	baited := p.baitHidden(ctx, ev)

	if err := p.fetchAdScript(ctx); err != nil {
		slog.Debug("ad script fetch blocked", "error", err)
		return true
	}
	return baited
}

func (p *AdBlockProbe) baitHidden(ctx context.Context, ev Evaluator) bool {
	js := strings.Replace(adblockBaitJS, "__SETTLE_MS__",
		fmt.Sprintf("%d", baitSettleDelay.Milliseconds()), 1)

	ctx, cancel := context.WithTimeout(ctx, baitSettleDelay+2*time.Second)
	defer cancel()

	var hidden bool
	if err := ev.Evaluate(ctx, js, &hidden); err != nil {
		slog.Debug("adblock bait probe failed", "error", err)
		return false
	}
	return hidden
}

func (p *AdBlockProbe) fetchAdScript(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.scriptURL, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	// Opaque-response semantics: only request success matters, never status
	// or content.
	return resp.Body.Close()
}
