package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// GeoRecord is the normalized result of a public IP + geolocation lookup.
// String fields default to Unknown, never empty; IP doubles as the
// found/not-found discriminator.
type GeoRecord struct {
	IP        string  `json:"ip"`
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	ISP       string  `json:"isp"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// geoProvider pairs an endpoint with a pure normalizer from its response
// shape to a GeoRecord. Providers are tried in order, first success wins;
// adding or removing one never touches the control flow.
type geoProvider struct {
	name      string
	endpoint  string
	normalize func([]byte) (GeoRecord, error)
}

// providerTimeout bounds each individual lookup; the caller's context caps
// the whole chain.
const providerTimeout = 5 * time.Second

var defaultGeoProviders = []geoProvider{
	{"ipapi.co", "https://ipapi.co/json/", normalizeIPAPICo},
	{"ip-api.com", "http://ip-api.com/json/", normalizeIPAPICom},
	{"ipwho.is", "https://ipwho.is/", normalizeIPWhoIs},
}

// GeoProbe resolves the public-facing IP and coarse geolocation through an
// ordered chain of third-party lookup services.
type GeoProbe struct {
	client    *http.Client
	providers []geoProvider
}

func NewGeoProbe(client *http.Client) *GeoProbe {
	return &GeoProbe{client: client, providers: defaultGeoProviders}
}

// Resolve tries each provider in order and returns the first normalized
// record with a usable IP. It returns nil when every provider fails or
// yields nothing: callers must treat nil as "protected or blocked", not as
// an error condition.
func (p *GeoProbe) Resolve(ctx context.Context) *GeoRecord {
	for _, prov := range p.providers {
		rec, err := p.lookup(ctx, prov)
		if err != nil {
			slog.Debug("geo provider failed", "provider", prov.name, "error", err)
			continue
		}
		if rec.IP == "" || rec.IP == Unknown {
			slog.Debug("geo provider returned no ip", "provider", prov.name)
			continue
		}
		return &rec
	}
	return nil
}

func (p *GeoProbe) lookup(ctx context.Context, prov geoProvider) (GeoRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, prov.endpoint, nil)
	if err != nil {
		return GeoRecord{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return GeoRecord{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return GeoRecord{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return GeoRecord{}, fmt.Errorf("http status %d", resp.StatusCode)
	}

	return prov.normalize(body)
}

// withGeoDefaults replaces empty string fields with the Unknown sentinel.
func withGeoDefaults(r GeoRecord) GeoRecord {
	for _, f := range []*string{&r.City, &r.Region, &r.Country, &r.ISP, &r.Timezone} {
		if *f == "" {
			*f = Unknown
		}
	}
	return r
}

func normalizeIPAPICo(body []byte) (GeoRecord, error) {
	var raw struct {
		IP        string  `json:"ip"`
		City      string  `json:"city"`
		Region    string  `json:"region"`
		Country   string  `json:"country_name"`
		Org       string  `json:"org"`
		Timezone  string  `json:"timezone"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Error     bool    `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return GeoRecord{}, err
	}
	if raw.Error {
		return GeoRecord{}, fmt.Errorf("provider reported error")
	}
	return withGeoDefaults(GeoRecord{
		IP:        raw.IP,
		City:      raw.City,
		Region:    raw.Region,
		Country:   raw.Country,
		ISP:       raw.Org,
		Timezone:  raw.Timezone,
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
	}), nil
}

func normalizeIPAPICom(body []byte) (GeoRecord, error) {
	var raw struct {
		Status   string  `json:"status"`
		Query    string  `json:"query"`
		City     string  `json:"city"`
		Region   string  `json:"regionName"`
		Country  string  `json:"country"`
		ISP      string  `json:"isp"`
		Timezone string  `json:"timezone"`
		Lat      float64 `json:"lat"`
		Lon      float64 `json:"lon"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return GeoRecord{}, err
	}
	if raw.Status != "" && raw.Status != "success" {
		return GeoRecord{}, fmt.Errorf("provider status %q", raw.Status)
	}
	return withGeoDefaults(GeoRecord{
		IP:        raw.Query,
		City:      raw.City,
		Region:    raw.Region,
		Country:   raw.Country,
		ISP:       raw.ISP,
		Timezone:  raw.Timezone,
		Latitude:  raw.Lat,
		Longitude: raw.Lon,
	}), nil
}

func normalizeIPWhoIs(body []byte) (GeoRecord, error) {
	var raw struct {
		Success    *bool   `json:"success"`
		IP         string  `json:"ip"`
		City       string  `json:"city"`
		Region     string  `json:"region"`
		Country    string  `json:"country"`
		Latitude   float64 `json:"latitude"`
		Longitude  float64 `json:"longitude"`
		Connection struct {
			ISP string `json:"isp"`
		} `json:"connection"`
		Timezone struct {
			ID string `json:"id"`
		} `json:"timezone"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return GeoRecord{}, err
	}
	if raw.Success != nil && !*raw.Success {
		return GeoRecord{}, fmt.Errorf("provider reported failure")
	}
	return withGeoDefaults(GeoRecord{
		IP:        raw.IP,
		City:      raw.City,
		Region:    raw.Region,
		Country:   raw.Country,
		ISP:       raw.Connection.ISP,
		Timezone:  raw.Timezone.ID,
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
	}), nil
}
