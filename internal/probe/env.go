package probe

import (
	"context"
	_ "embed"
	"log/slog"
)

//go:embed js/env.js
var envJS string

// ThirdPartyGuess classifies third-party cookie behavior. It is a heuristic
// derived from first-party cookie state and known browser defaults, never
// ground truth.
type ThirdPartyGuess string

const (
	ThirdPartyLikelyEnabled ThirdPartyGuess = "likely-enabled"
	ThirdPartyLikelyBlocked ThirdPartyGuess = "likely-blocked"
	ThirdPartyUnknown       ThirdPartyGuess = "unknown"
	ThirdPartyUntestable    ThirdPartyGuess = "untestable"
)

type CookieStatus struct {
	Enabled    bool            `json:"enabled"`
	ThirdParty ThirdPartyGuess `json:"third_party"`
}

type ScreenInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AvailWidth  int     `json:"avail_width"`
	AvailHeight int     `json:"avail_height"`
	ColorDepth  int     `json:"color_depth"`
	PixelRatio  float64 `json:"pixel_ratio"`
}

type LocaleInfo struct {
	Language  string   `json:"language"`
	Languages []string `json:"languages,omitempty"`
	Timezone  string   `json:"timezone"`
}

type ConnectionInfo struct {
	EffectiveType string  `json:"effective_type"`
	DownlinkMbps  float64 `json:"downlink_mbps"`
	RTTMillis     int     `json:"rtt_ms"`
	SaveData      bool    `json:"save_data"`
	Available     bool    `json:"available"`
}

type HardwareInfo struct {
	Concurrency    int     `json:"concurrency"`
	DeviceMemoryGB float64 `json:"device_memory_gb"`
}

type StorageEstimate struct {
	QuotaBytes uint64 `json:"quota_bytes"`
	UsageBytes uint64 `json:"usage_bytes"`
	Available  bool   `json:"available"`
}

// Environment aggregates the synchronous (or trivially async) reads of
// navigator, screen, locale, connection and storage state. Every field is
// independently Unknown/zero when its underlying API is absent.
type Environment struct {
	UserAgent  string          `json:"user_agent"`
	UA         ParsedUA        `json:"ua"`
	Platform   string          `json:"platform"`
	Screen     ScreenInfo      `json:"screen"`
	Locale     LocaleInfo      `json:"locale"`
	Connection ConnectionInfo  `json:"connection"`
	Hardware   HardwareInfo    `json:"hardware"`
	Storage    StorageEstimate `json:"storage"`
	Cookies    CookieStatus    `json:"cookies"`
	Referrer   string          `json:"referrer"`
	DoNotTrack string          `json:"do_not_track"`
}

type envPayload struct {
	UserAgent string   `json:"userAgent"`
	Platform  string   `json:"platform"`
	Language  string   `json:"language"`
	Languages []string `json:"languages"`
	Timezone  string   `json:"timezone"`
	Screen    struct {
		Width       int     `json:"width"`
		Height      int     `json:"height"`
		AvailWidth  int     `json:"availWidth"`
		AvailHeight int     `json:"availHeight"`
		ColorDepth  int     `json:"colorDepth"`
		PixelRatio  float64 `json:"pixelRatio"`
	} `json:"screen"`
	HardwareConcurrency int     `json:"hardwareConcurrency"`
	DeviceMemory        float64 `json:"deviceMemory"`
	DoNotTrack          string  `json:"doNotTrack"`
	Referrer            string  `json:"referrer"`
	Connection          *struct {
		EffectiveType string  `json:"effectiveType"`
		Downlink      float64 `json:"downlink"`
		RTT           int     `json:"rtt"`
		SaveData      bool    `json:"saveData"`
	} `json:"connection"`
	CookiesEnabled    bool `json:"cookiesEnabled"`
	CookieWriteTested bool `json:"cookieWriteTested"`
	CookieWriteWorks  bool `json:"cookieWriteWorked"`
	Storage          *struct {
		Quota uint64 `json:"quota"`
		Usage uint64 `json:"usage"`
	} `json:"storage"`
}

// ReadEnvironment collects and normalizes the environment surface. An
// evaluation failure returns a fully-sentineled Environment rather than an
// error.
func ReadEnvironment(ctx context.Context, ev Evaluator) Environment {
	var raw envPayload
	if err := ev.Evaluate(ctx, envJS, &raw); err != nil {
		slog.Debug("environment probe failed", "error", err)
		return Environment{
			UserAgent:  Unknown,
			UA:         ParsedUA{Browser: Unknown, Version: Unknown, OS: Unknown},
			Platform:   Unknown,
			Locale:     LocaleInfo{Language: Unknown, Timezone: Unknown},
			Connection: ConnectionInfo{EffectiveType: Unknown},
			Cookies:    CookieStatus{ThirdParty: ThirdPartyUntestable},
			Referrer:   Unknown,
			DoNotTrack: Unknown,
		}
	}
	return normalizeEnv(raw)
}

func normalizeEnv(raw envPayload) Environment {
	env := Environment{
		UserAgent: orUnknown(raw.UserAgent),
		UA:        ParseUserAgent(raw.UserAgent),
		Platform:  orUnknown(raw.Platform),
		Screen: ScreenInfo{
			Width:       raw.Screen.Width,
			Height:      raw.Screen.Height,
			AvailWidth:  raw.Screen.AvailWidth,
			AvailHeight: raw.Screen.AvailHeight,
			ColorDepth:  raw.Screen.ColorDepth,
			PixelRatio:  raw.Screen.PixelRatio,
		},
		Locale: LocaleInfo{
			Language:  orUnknown(raw.Language),
			Languages: raw.Languages,
			Timezone:  orUnknown(raw.Timezone),
		},
		Hardware: HardwareInfo{
			Concurrency:    raw.HardwareConcurrency,
			DeviceMemoryGB: raw.DeviceMemory,
		},
		Referrer:   orDefault(raw.Referrer, "Direct visit"),
		DoNotTrack: orDefault(raw.DoNotTrack, "Not set"),
	}

	if raw.Connection != nil {
		env.Connection = ConnectionInfo{
			EffectiveType: orUnknown(raw.Connection.EffectiveType),
			DownlinkMbps:  raw.Connection.Downlink,
			RTTMillis:     raw.Connection.RTT,
			SaveData:      raw.Connection.SaveData,
			Available:     true,
		}
	} else {
		env.Connection = ConnectionInfo{EffectiveType: Unknown}
	}

	if raw.Storage != nil {
		env.Storage = StorageEstimate{
			QuotaBytes: raw.Storage.Quota,
			UsageBytes: raw.Storage.Usage,
			Available:  true,
		}
	}

	// The write test refines navigator.cookieEnabled only when it ran on a
	// document that can hold cookies; on a cookie-averse document a failed
	// write says nothing about the browser's cookie policy.
	firstParty := raw.CookiesEnabled
	if raw.CookieWriteTested {
		firstParty = raw.CookiesEnabled && raw.CookieWriteWorks
	}
	env.Cookies = CookieStatus{
		Enabled:    firstParty,
		ThirdParty: guessThirdPartyCookies(firstParty, env.UA.Browser),
	}
	return env
}

// guessThirdPartyCookies infers third-party cookie behavior from first-party
// state and shipped browser defaults. Without a cross-origin iframe there is
// no way to test this directly.
func guessThirdPartyCookies(firstParty bool, browser string) ThirdPartyGuess {
	if !firstParty {
		return ThirdPartyLikelyBlocked
	}
	switch browser {
	case "Safari", "Firefox":
		// Both ship with third-party cookies blocked by default.
		return ThirdPartyLikelyBlocked
	case "Chrome", "Edge", "Opera":
		return ThirdPartyLikelyEnabled
	case Unknown:
		return ThirdPartyUntestable
	default:
		return ThirdPartyUnknown
	}
}

func orUnknown(s string) string {
	return orDefault(s, Unknown)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
