package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"weatherassistant/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  types.Intent
	}{
		{"What's the weather in London?", types.IntentCurrent},
		{"How hot is it in Delhi right now", types.IntentCurrent},
		{"What is the weather tomorrow in Paris", types.IntentForecast},
		{"Show me the forecast for Tokyo", types.IntentForecast},
		{"what about the next day in Rome", types.IntentForecast},
		{"Will it rain in Seattle?", types.IntentForecast},
		{"Is it raining in Mumbai", types.IntentForecast},
		{"Will it rain in Seattle today?", types.IntentCurrent},
		{"Is it raining in Mumbai now", types.IntentCurrent},
		{"current rain in Oslo", types.IntentCurrent},
		{"Is it currently raining in Oslo", types.IntentCurrent},
		{"", types.IntentCurrent},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query))
		})
	}
}

func TestClassify_FutureKeywordsWinOverEverything(t *testing.T) {
	queries := []string{
		"is it raining today or tomorrow in Berlin",
		"current forecast for Lima",
		"now and the next day in Cairo",
		"TOMORROW IN PARIS",
	}
	for _, q := range queries {
		assert.Equal(t, types.IntentForecast, Classify(q), q)
	}
}

func TestClassify_TodayFlipsRainQuestion(t *testing.T) {
	base := "will it rain in Nairobi"
	assert.Equal(t, types.IntentForecast, Classify(base))
	assert.Equal(t, types.IntentCurrent, Classify(base+" today"))
}

func TestClassify_Deterministic(t *testing.T) {
	q := "will it rain in Lagos"
	first := Classify(q)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Classify(q))
	}
}

func TestAsksRainToday(t *testing.T) {
	assert.True(t, AsksRainToday("Is it raining in Pune today?"))
	assert.True(t, AsksRainToday("RAIN TODAY in Goa"))
	assert.False(t, AsksRainToday("Is it raining in Pune"))
	assert.False(t, AsksRainToday("weather in Pune today"))
}
