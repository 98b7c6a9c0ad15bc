// Package query turns free-form weather questions into structured lookups:
// which kind of data the user wants and which city they are asking about.
// Everything here is a pure function over the query text.
package query

import (
	"strings"

	"weatherassistant/internal/types"
)

var (
	// forecastKeywords always select the forecast, whatever else the query says.
	forecastKeywords = []string{"tomorrow", "forecast", "next day"}

	rainKeywords = []string{"rain", "raining"}

	// presentKeywords anchor a rain question to the current conditions.
	presentKeywords = []string{"today", "now", "current", "currently"}
)

// intentRule is one entry of the ordered classification table.
type intentRule struct {
	name   string
	intent types.Intent
	match  func(q string) bool
}

// intentRules are evaluated in order; the first match wins.
var intentRules = []intentRule{
	{
		name:   "explicit_future",
		intent: types.IntentForecast,
		match: func(q string) bool {
			return containsAny(q, forecastKeywords)
		},
	},
	{
		// An unqualified rain question looks ahead.
		name:   "unanchored_rain",
		intent: types.IntentForecast,
		match: func(q string) bool {
			return containsAny(q, rainKeywords) && !containsAny(q, presentKeywords)
		},
	},
}

// Classify decides whether the query asks for current conditions or the
// next-day forecast. Matching is by substring on the lower-cased text.
func Classify(query string) types.Intent {
	q := strings.ToLower(query)
	for _, r := range intentRules {
		if r.match(q) {
			return r.intent
		}
	}
	return types.IntentCurrent
}

// AsksRainToday reports whether the query mentions both rain and today. The
// pipeline uses it to answer "is it raining today?" directly from current
// conditions.
func AsksRainToday(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(q, "rain") && strings.Contains(q, "today")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
