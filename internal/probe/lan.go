package probe

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/huin/goupnp"
	"github.com/huin/goupnp/dcps/internetgateway1"
	castdns "github.com/vishen/go-chromecast/dns"
)

// LANExposure describes what the local network volunteers to anyone who
// asks: the gateway's view of the public address and every device that
// answers discovery multicast. A page running a local-network scan sees
// the same surface.
type LANExposure struct {
	RouterExternalIP string   `json:"router_external_ip,omitempty"`
	Devices          []string `json:"devices,omitempty"`
}

const lanDiscoveryTimeout = 3 * time.Second

// DiscoverLAN queries the UPnP gateway and listens for SSDP and mDNS
// announcements. It never fails; a quiet or filtered network yields an
// empty result.
func DiscoverLAN(ctx context.Context) LANExposure {
	ctx, cancel := context.WithTimeout(ctx, lanDiscoveryTimeout)
	defer cancel()

	return LANExposure{
		RouterExternalIP: routerExternalIP(ctx),
		Devices:          discoverDeviceNames(ctx),
	}
}

// routerExternalIP asks the first WANIPConnection service for the address
// the gateway presents upstream. Routers with UPnP disabled simply do not
// answer.
func routerExternalIP(ctx context.Context) string {
	clients, _, err := internetgateway1.NewWANIPConnection1ClientsCtx(ctx)
	if err != nil || len(clients) == 0 {
		return ""
	}

	ip, err := clients[0].GetExternalIPAddressCtx(ctx)
	if err != nil {
		slog.Debug("querying gateway external IP", "error", err)
		return ""
	}
	return ip
}

func discoverDeviceNames(ctx context.Context) []string {
	seen := make(map[string]struct{})

	results, err := goupnp.DiscoverDevicesCtx(ctx, "upnp:rootdevice")
	if err != nil {
		slog.Debug("SSDP discovery", "error", err)
	}
	for _, r := range results {
		if r.Root == nil {
			continue
		}
		if name := r.Root.Device.FriendlyName; name != "" {
			seen[name] = struct{}{}
		}
	}

	for _, name := range castDeviceNames(ctx) {
		seen[name] = struct{}{}
	}

	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// castDeviceNames drains the mDNS entry channel until the discovery
// window closes.
func castDeviceNames(ctx context.Context) []string {
	entries, err := castdns.DiscoverCastDNSEntries(ctx, nil)
	if err != nil {
		slog.Debug("cast discovery", "error", err)
		return nil
	}

	var names []string
	for {
		select {
		case <-ctx.Done():
			return names
		case e, ok := <-entries:
			if !ok {
				return names
			}
			if e.DeviceName == "" {
				continue
			}
			names = append(names, fmt.Sprintf("%s (%s)", e.DeviceName, e.Device))
		}
	}
}
