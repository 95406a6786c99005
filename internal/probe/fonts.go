package probe

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"strings"
)

//go:embed js/fonts.js
var fontsJS string

// fontCandidates is the fixed probe list. Detection output preserves this
// order; the list itself has no duplicates.
var fontCandidates = []string{
	"Arial",
	"Arial Black",
	"Arial Narrow",
	"Calibri",
	"Cambria",
	"Candara",
	"Comic Sans MS",
	"Consolas",
	"Courier",
	"Courier New",
	"Futura",
	"Garamond",
	"Georgia",
	"Gill Sans",
	"Helvetica",
	"Impact",
	"Lucida Console",
	"Lucida Sans Unicode",
	"Microsoft Sans Serif",
	"Monaco",
	"Optima",
	"Palatino Linotype",
	"Segoe Print",
	"Segoe Script",
	"Segoe UI",
	"Tahoma",
	"Times New Roman",
	"Trebuchet MS",
	"Verdana",
}

var fontBaselines = []string{"monospace", "sans-serif", "serif"}

type fontMeasurements struct {
	Baseline map[string]float64            `json:"baseline"`
	Widths   map[string]map[string]float64 `json:"widths"`
}

// DetectFonts infers installed fonts by width comparison: the page measures
// a fixed probe string under each generic baseline family, then with each
// candidate layered in front. Any width difference against any baseline
// means the candidate exists and rendered. No drawing context yields an
// empty list.
func DetectFonts(ctx context.Context, ev Evaluator) []string {
	js := strings.Replace(fontsJS, "__FONTS__", mustJSON(fontCandidates), 1)

	var m *fontMeasurements
	if err := ev.Evaluate(ctx, js, &m); err != nil {
		slog.Debug("font probe failed", "error", err)
		return nil
	}
	if m == nil {
		return nil
	}
	return detectFromWidths(m)
}

func detectFromWidths(m *fontMeasurements) []string {
	var detected []string
	for _, font := range fontCandidates {
		widths, ok := m.Widths[font]
		if !ok {
			continue
		}
		for _, base := range fontBaselines {
			w, ok := widths[base]
			if !ok {
				continue
			}
			if w != m.Baseline[base] {
				detected = append(detected, font)
				break
			}
		}
	}
	return detected
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Only called on static candidate lists.
		panic(err)
	}
	return string(b)
}
