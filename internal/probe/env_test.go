package probe

import (
	"context"
	"testing"
)

const fullEnvJSON = `{
	"userAgent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"platform": "Win32",
	"language": "en-US",
	"languages": ["en-US", "en"],
	"timezone": "Europe/Lisbon",
	"screen": {"width": 1920, "height": 1080, "availWidth": 1920, "availHeight": 1040, "colorDepth": 24, "pixelRatio": 1.25},
	"hardwareConcurrency": 8,
	"deviceMemory": 8,
	"doNotTrack": "1",
	"referrer": "https://example.org/",
	"connection": {"effectiveType": "4g", "downlink": 9.8, "rtt": 60, "saveData": false},
	"cookiesEnabled": true,
	"cookieWriteTested": true,
	"cookieWriteWorked": true,
	"storage": {"quota": 120000000000, "usage": 4096}
}`

func TestReadEnvironment_FullPayload(t *testing.T) {
	ev := &fakeEvaluator{responses: map[string]string{"cookieWriteWorked": fullEnvJSON}}

	env := ReadEnvironment(context.Background(), ev)

	if env.UA.Browser != "Chrome" || env.UA.OS != "Windows 10/11" {
		t.Errorf("unexpected parsed UA: %+v", env.UA)
	}
	if env.Screen.Width != 1920 || env.Screen.ColorDepth != 24 || env.Screen.PixelRatio != 1.25 {
		t.Errorf("unexpected screen: %+v", env.Screen)
	}
	if env.Locale.Timezone != "Europe/Lisbon" || env.Locale.Language != "en-US" {
		t.Errorf("unexpected locale: %+v", env.Locale)
	}
	if !env.Connection.Available || env.Connection.EffectiveType != "4g" || env.Connection.RTTMillis != 60 {
		t.Errorf("unexpected connection: %+v", env.Connection)
	}
	if env.Hardware.Concurrency != 8 || env.Hardware.DeviceMemoryGB != 8 {
		t.Errorf("unexpected hardware: %+v", env.Hardware)
	}
	if !env.Storage.Available || env.Storage.QuotaBytes != 120000000000 {
		t.Errorf("unexpected storage: %+v", env.Storage)
	}
	if !env.Cookies.Enabled || env.Cookies.ThirdParty != ThirdPartyLikelyEnabled {
		t.Errorf("unexpected cookies: %+v", env.Cookies)
	}
	if env.Referrer != "https://example.org/" || env.DoNotTrack != "1" {
		t.Errorf("referrer/dnt: %q %q", env.Referrer, env.DoNotTrack)
	}
}

func TestReadEnvironment_MissingAPIsBecomeSentinels(t *testing.T) {
	ev := &fakeEvaluator{responses: map[string]string{
		"cookieWriteWorked": `{"userAgent":"","cookiesEnabled":false,"cookieWriteWorked":false}`,
	}}

	env := ReadEnvironment(context.Background(), ev)

	if env.UserAgent != Unknown || env.Platform != Unknown {
		t.Errorf("missing strings must be Unknown: %+v", env)
	}
	if env.Connection.Available {
		t.Error("absent connection API must not be available")
	}
	if env.Connection.EffectiveType != Unknown {
		t.Errorf("EffectiveType = %q, want sentinel", env.Connection.EffectiveType)
	}
	if env.Storage.Available {
		t.Error("absent storage API must not be available")
	}
	if env.Referrer != "Direct visit" {
		t.Errorf("Referrer = %q, want %q", env.Referrer, "Direct visit")
	}
	if env.DoNotTrack != "Not set" {
		t.Errorf("DoNotTrack = %q, want %q", env.DoNotTrack, "Not set")
	}
	if env.Cookies.Enabled {
		t.Error("cookies must be disabled")
	}
	if env.Cookies.ThirdParty != ThirdPartyLikelyBlocked {
		t.Errorf("ThirdParty = %q, want %q", env.Cookies.ThirdParty, ThirdPartyLikelyBlocked)
	}
}

func TestReadEnvironment_UntestedCookieWriteDoesNotDisable(t *testing.T) {
	// A document that cannot hold cookies (cookie-averse, e.g. about:)
	// reports cookieWriteWorked=false without having tested anything; that
	// must not override navigator.cookieEnabled or flip the third-party
	// guess to blocked.
	ev := &fakeEvaluator{responses: map[string]string{
		"cookieWriteWorked": `{
			"userAgent": "Mozilla/5.0 (X11; Linux x86_64) Chrome/131.0.0.0 Safari/537.36",
			"cookiesEnabled": true,
			"cookieWriteTested": false,
			"cookieWriteWorked": false
		}`,
	}}

	env := ReadEnvironment(context.Background(), ev)

	if !env.Cookies.Enabled {
		t.Error("untested write must fall back to navigator.cookieEnabled")
	}
	if env.Cookies.ThirdParty != ThirdPartyLikelyEnabled {
		t.Errorf("ThirdParty = %q, want %q", env.Cookies.ThirdParty, ThirdPartyLikelyEnabled)
	}
}

func TestReadEnvironment_TestedCookieWriteFailureDisables(t *testing.T) {
	// On a real http origin the write test is authoritative: enabled flag
	// with a failed write means cookies are blocked by policy.
	ev := &fakeEvaluator{responses: map[string]string{
		"cookieWriteWorked": `{
			"userAgent": "Mozilla/5.0 (X11; Linux x86_64) Chrome/131.0.0.0 Safari/537.36",
			"cookiesEnabled": true,
			"cookieWriteTested": true,
			"cookieWriteWorked": false
		}`,
	}}

	env := ReadEnvironment(context.Background(), ev)

	if env.Cookies.Enabled {
		t.Error("failed write on a testable document must report disabled")
	}
	if env.Cookies.ThirdParty != ThirdPartyLikelyBlocked {
		t.Errorf("ThirdParty = %q, want %q", env.Cookies.ThirdParty, ThirdPartyLikelyBlocked)
	}
}

func TestReadEnvironment_EvaluationFailure(t *testing.T) {
	ev := &fakeEvaluator{failAll: true}

	env := ReadEnvironment(context.Background(), ev)
	if env.UserAgent != Unknown {
		t.Errorf("UserAgent = %q, want sentinel", env.UserAgent)
	}
	if env.Cookies.ThirdParty != ThirdPartyUntestable {
		t.Errorf("ThirdParty = %q, want %q", env.Cookies.ThirdParty, ThirdPartyUntestable)
	}
}

func TestGuessThirdPartyCookies(t *testing.T) {
	tests := []struct {
		firstParty bool
		browser    string
		want       ThirdPartyGuess
	}{
		{false, "Chrome", ThirdPartyLikelyBlocked},
		{true, "Chrome", ThirdPartyLikelyEnabled},
		{true, "Edge", ThirdPartyLikelyEnabled},
		{true, "Safari", ThirdPartyLikelyBlocked},
		{true, "Firefox", ThirdPartyLikelyBlocked},
		{true, "Samsung Internet", ThirdPartyUnknown},
		{true, Unknown, ThirdPartyUntestable},
	}
	for _, tt := range tests {
		if got := guessThirdPartyCookies(tt.firstParty, tt.browser); got != tt.want {
			t.Errorf("guessThirdPartyCookies(%v, %q) = %q, want %q",
				tt.firstParty, tt.browser, got, tt.want)
		}
	}
}
