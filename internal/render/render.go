// Package render turns provider results into the sentences the assistant
// speaks or prints. Renderers are pure functions; failures are passed through
// as the provider's own user-facing message.
package render

import (
	"errors"
	"fmt"
	"strings"

	"weatherassistant/internal/types"
)

// Thresholds that decide which optional clauses are appended.
const (
	// FeelsLikeDeltaC is the apparent-temperature gap, in degrees, above
	// which the feels-like clause is added.
	FeelsLikeDeltaC = 3
	// HumidThresholdPct is the relative humidity above which the reply
	// mentions that it is humid.
	HumidThresholdPct = 80
	// LikelyRainPct and SlightRainPct bound the forecast rain clauses.
	LikelyRainPct = 50
	SlightRainPct = 30
)

// CityNotUnderstoodMessage is returned when no city could be extracted.
const CityNotUnderstoodMessage = "I'm sorry, I couldn't understand which city you're asking about. Please try again."

// wetConditions mark current conditions as raining.
var wetConditions = []string{"rain", "drizzle"}

// Current renders current conditions. When askedRainToday is set the reply
// answers the rain question directly instead of the general summary.
func Current(c types.Conditions, askedRainToday bool) string {
	if askedRainToday {
		return rainToday(c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The weather in %s is %d°C and %s.", c.City, c.TemperatureC, c.Description)

	if abs(c.FeelsLikeC-c.TemperatureC) > FeelsLikeDeltaC {
		fmt.Fprintf(&b, " It feels like %d°C.", c.FeelsLikeC)
	}
	if c.HumidityPct > HumidThresholdPct {
		b.WriteString(" It's quite humid.")
	}
	return b.String()
}

func rainToday(c types.Conditions) string {
	if isWet(c.Description) || isWet(c.ConditionMain) {
		return fmt.Sprintf("Yes, it's currently raining in %s. The weather is %s with a temperature of %d°C.",
			c.City, c.Description, c.TemperatureC)
	}
	return fmt.Sprintf("No, it's not raining in %s right now. The weather is %s with a temperature of %d°C.",
		c.City, c.Description, c.TemperatureC)
}

// Forecast renders the next-day summary, adding a rain clause when the
// probability is notable.
func Forecast(f types.Forecast) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tomorrow in %s, it's expected to be %d°C with %s.", f.City, f.TemperatureC, f.Description)

	switch p := f.RainProbabilityPct; {
	case p > LikelyRainPct:
		fmt.Fprintf(&b, " There's a %d%% chance of rain.", p)
	case p > SlightRainPct:
		fmt.Fprintf(&b, " There's a slight chance of rain at %d%%.", p)
	}
	return b.String()
}

// Failure renders a failed lookup. Provider messages are returned verbatim;
// errors from outside the provider contract get a generic sentence.
func Failure(err error) string {
	if errors.Is(err, types.ErrCityNotUnderstood) {
		return CityNotUnderstoodMessage
	}
	var pe *types.ProviderError
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return fmt.Sprintf("An unexpected error occurred: %v", err)
}

func isWet(s string) bool {
	s = strings.ToLower(s)
	for _, w := range wetConditions {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
