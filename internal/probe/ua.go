package probe

import (
	"regexp"
	"strings"
)

// ParsedUA is a light decomposition of the user-agent string. Fields fall
// back to Unknown individually.
type ParsedUA struct {
	Browser string `json:"browser"`
	Version string `json:"version"`
	OS      string `json:"os"`
}

// Match order matters: Chrome-derived browsers keep "Chrome/" in their UA,
// so the more specific tokens are checked first.
var browserTokens = []struct {
	browser string
	re      *regexp.Regexp
}{
	{"Edge", regexp.MustCompile(`Edg(?:e|A|iOS)?/([\d.]+)`)},
	{"Opera", regexp.MustCompile(`OPR/([\d.]+)`)},
	{"Samsung Internet", regexp.MustCompile(`SamsungBrowser/([\d.]+)`)},
	{"Chrome", regexp.MustCompile(`Chrome/([\d.]+)`)},
	{"Firefox", regexp.MustCompile(`Firefox/([\d.]+)`)},
	{"Safari", regexp.MustCompile(`Version/([\d.]+).*Safari`)},
}

var osTokens = []struct {
	os string
	re *regexp.Regexp
}{
	{"Windows", regexp.MustCompile(`Windows NT ([\d.]+)`)},
	{"iOS", regexp.MustCompile(`(?:iPhone|iPad|iPod).*OS ([\d_]+)`)},
	{"macOS", regexp.MustCompile(`Mac OS X ([\d_.]+)`)},
	{"Android", regexp.MustCompile(`Android ([\d.]+)`)},
	{"ChromeOS", regexp.MustCompile(`CrOS \S+ ([\d.]+)`)},
	{"Linux", regexp.MustCompile(`Linux`)},
}

// windowsVersions maps NT kernel versions to marketing names.
var windowsVersions = map[string]string{
	"10.0": "10/11",
	"6.3":  "8.1",
	"6.2":  "8",
	"6.1":  "7",
}

// ParseUserAgent extracts browser, browser version and operating system
// from a raw user-agent string.
func ParseUserAgent(ua string) ParsedUA {
	out := ParsedUA{Browser: Unknown, Version: Unknown, OS: Unknown}
	if ua == "" {
		return out
	}

	for _, tok := range browserTokens {
		if m := tok.re.FindStringSubmatch(ua); m != nil {
			out.Browser = tok.browser
			out.Version = m[1]
			break
		}
	}

	for _, tok := range osTokens {
		m := tok.re.FindStringSubmatch(ua)
		if m == nil {
			continue
		}
		out.OS = tok.os
		if len(m) > 1 {
			ver := strings.ReplaceAll(m[1], "_", ".")
			if tok.os == "Windows" {
				if name, ok := windowsVersions[ver]; ok {
					ver = name
				}
			}
			out.OS = tok.os + " " + ver
		}
		break
	}

	return out
}
