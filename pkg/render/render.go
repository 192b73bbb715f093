// Package render formats evaluation payloads for display: the three-tier
// score badge, localized timestamps, and the free-text critique with its
// section markers. All transformations are pure.
package render

import (
	"bytes"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// critiqueMarkers maps the fixed section labels of the evaluation text to
// their display prefix. The table is applied in a single pass.
var critiqueMarkers = []struct {
	Label string
	Icon  string
}{
	{"HODNOCENÍ:", "📝"},
	{"CHYBY:", "❌"},
	{"POCHVALA:", "👍"},
	{"DOPORUČENÍ:", "💡"},
	{"SKÓRE:", "🎯"},
}

var critiqueReplacer = newCritiqueReplacer()

func newCritiqueReplacer() *strings.Replacer {
	pairs := make([]string, 0, len(critiqueMarkers)*2)

	for _, m := range critiqueMarkers {
		pairs = append(pairs, m.Label, "**"+m.Icon+" "+m.Label+"**")
	}

	return strings.NewReplacer(pairs...)
}

// markdown renders the critique text. Hard wraps turn the single line breaks
// of the evaluation into visible breaks; raw HTML in the text is stripped.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// ScoreTier returns the status class of a score badge: "success" from 80 up,
// "info" from 60 up, "error" below.
func ScoreTier(score float64) string {
	switch {
	case score >= 80:
		return "success"
	case score >= 60:
		return "info"
	default:
		return "error"
	}
}

// ScoreValue rounds a score for display.
func ScoreValue(score float64) int {
	return int(math.Round(score))
}

// Critique formats the evaluation text: section markers get their icon label,
// line breaks become paragraph breaks.
func Critique(text string) template.HTML {
	var buf bytes.Buffer

	if err := markdown.Convert([]byte(critiqueReplacer.Replace(text)), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}

	return template.HTML(buf.String())
}

// timestampLayouts covers the formats the evaluation service emits.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// Timestamp renders a record timestamp the Czech way, day first. Unparseable
// values pass through unchanged.
func Timestamp(value string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2. 1. 2006 15:04:05")
		}
	}

	return value
}
