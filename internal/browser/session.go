// Package browser owns the headless Chrome session that page-backed probes
// evaluate their JavaScript in. It is the production implementation of
// probe.Evaluator.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/louak/exposure/internal/app"
)

// Session owns the chromedp lifecycle for one collection run: an exec
// allocator, a task context and the loopback origin server, torn down
// together by Close.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	origin      *http.Server
}

// probePage is the document the probes run in. It must be served from a
// real http origin: about:blank documents are cookie-averse (cookie writes
// are silently dropped) and storage.estimate rejects on an opaque origin,
// which would misreport the cookie and storage readers on every scan.
const probePage = `<!doctype html><html><head><meta charset="utf-8"><title>exposure</title></head><body></body></html>`

func serveProbePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, probePage)
}

// NewSession starts a headless browser on a loopback-served blank page,
// ready for probe evaluation.
func NewSession(ctx context.Context, cfg app.BrowserConfig) (*Session, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("starting probe origin: %w", err)
	}
	origin := &http.Server{Handler: http.HandlerFunc(serveProbePage)}
	go func() { _ = origin.Serve(ln) }()
	pageURL := fmt.Sprintf("http://%s/", ln.Addr())

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOpts(cfg)...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	// Navigate with an explicit timeout, but not through a child context —
	// canceling a child of the chromedp task context breaks the target in
	// chromedp v0.14.
	navDone := make(chan error, 1)
	go func() {
		navDone <- chromedp.Run(taskCtx, chromedp.Navigate(pageURL))
	}()

	select {
	case err = <-navDone:
	case <-time.After(cfg.Timeout):
		err = fmt.Errorf("browser startup timed out after %s", cfg.Timeout)
	}
	if err != nil {
		taskCancel()
		allocCancel()
		_ = origin.Close()
		return nil, fmt.Errorf("starting browser session: %w", err)
	}
	slog.Debug("browser session ready", "origin", pageURL)

	return &Session{ctx: taskCtx, cancel: taskCancel, allocCancel: allocCancel, origin: origin}, nil
}

// Evaluate runs expr in the page and decodes the result into out, awaiting
// promises. The caller's context bounds the wait; the underlying evaluation
// is issued on the session's own context for the same chromedp v0.14 reason
// as in NewSession.
func (s *Session) Evaluate(ctx context.Context, expr string, out any) error {
	return awaitEval(ctx, func() ([]byte, error) {
		var raw []byte
		err := chromedp.Run(s.ctx, chromedp.Evaluate(expr, &raw, awaitPromise))
		return raw, err
	}, out)
}

// awaitEval races the evaluation against the caller's context. out is only
// written on the success path, after the evaluation goroutine has finished,
// so an abandoned slow evaluation can never mutate a result the caller has
// already moved past.
func awaitEval(ctx context.Context, run func() ([]byte, error), out any) error {
	type result struct {
		raw []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		raw, err := run()
		done <- result{raw: raw, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return res.err
		}
		if out == nil || len(res.raw) == 0 {
			return nil
		}
		return json.Unmarshal(res.raw, out)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears down the browser, the allocator and the origin server.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
	if s.origin != nil {
		_ = s.origin.Close()
	}
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}
