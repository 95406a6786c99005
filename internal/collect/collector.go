package collect

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/louak/exposure/internal/probe"
)

// Collector runs every probe against one capability set and assembles the
// results. It is safe for concurrent Collect calls; each call produces an
// independent snapshot and no call observes another's partial state.
type Collector struct {
	ev          probe.Evaluator
	geo         *probe.GeoProbe
	adblock     *probe.AdBlockProbe
	stunServers []string
	lanScan     func(context.Context) probe.LANExposure
	gen         atomic.Uint64
}

// New builds a Collector over a page evaluator and an HTTP client.
func New(ev probe.Evaluator, client *http.Client) *Collector {
	return &Collector{
		ev:          ev,
		geo:         probe.NewGeoProbe(client),
		adblock:     probe.NewAdBlockProbe(client),
		stunServers: probe.DefaultStunServers,
		lanScan:     probe.DiscoverLAN,
	}
}

// Collect runs one full collection cycle. The independent slow probes (geo,
// visitor id, WebRTC, ad-blocker, STUN) run concurrently; the environment
// readers run on the calling goroutine. The snapshot is assembled only
// after every concurrent member has settled, so no consumer ever sees a mix
// of two runs. Probes absorb their own failures, so Collect cannot fail.
func (c *Collector) Collect(ctx context.Context) Snapshot {
	snap := Snapshot{
		Generation: c.gen.Add(1),
		TakenAt:    time.Now().UTC(),
	}

	var g errgroup.Group
	g.Go(func() error {
		snap.Geo = c.geo.Resolve(ctx)
		return nil
	})
	g.Go(func() error {
		snap.VisitorID = probe.VisitorID(ctx, c.ev)
		return nil
	})
	g.Go(func() error {
		snap.WebRTC = probe.WebRTCLeakTest(ctx, c.ev)
		return nil
	})
	g.Go(func() error {
		snap.AdBlocker = c.adblock.Detect(ctx, c.ev)
		return nil
	})
	g.Go(func() error {
		snap.StunObserved = probe.StunObservedIPs(ctx, c.stunServers)
		return nil
	})
	if c.lanScan != nil {
		g.Go(func() error {
			snap.LAN = c.lanScan(ctx)
			return nil
		})
	}

	snap.CanvasHash = probe.CanvasFingerprint(ctx, c.ev)
	snap.WebGL = probe.WebGLInfo(ctx, c.ev)
	snap.Fonts = probe.DetectFonts(ctx, c.ev)
	snap.Env = probe.ReadEnvironment(ctx, c.ev)

	_ = g.Wait()
	return snap
}
