package query

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// prepositions anchor the city name, tried in this order. Each must be
// surrounded by spaces to match.
var prepositions = []string{" in ", " at "}

// cityTerminators end the city name in the anchored text.
var cityTerminators = []string{"today", "tomorrow", "?"}

// tokenPunctuation is stripped from both ends of every candidate token.
const tokenPunctuation = "?.,!"

// stopWords never form part of a city name in the fallback path.
var stopWords = toSet(
	// question words and articles
	"what", "is", "the", "in", "at", "for", "about", "how", "will", "it",
	"like", "whats", "what's", "tell", "me", "please", "be", "there", "a",
	"chance", "of", "going", "to",
	// weather and time nouns
	"rain", "tomorrow", "today", "forecast", "temperature", "weather",
	// condition adjectives
	"cold", "hot", "warm", "cool", "sunny", "rainy", "cloudy", "humid", "dry",
	"windy", "foggy", "snowy", "stormy", "wet",
)

// ExtractCity derives a title-cased city name from the query. The text after
// the last " in " or " at " wins when present; otherwise the city is whatever
// survives stop-word removal. An empty result means no city was found.
func ExtractCity(query string) string {
	q := strings.ToLower(query)

	if city := anchoredCity(q); city != "" {
		return titleCase(city)
	}
	return titleCase(filteredCity(q))
}

// anchoredCity returns the text following a preposition, cut at the first
// terminator.
func anchoredCity(q string) string {
	for _, prep := range prepositions {
		idx := strings.LastIndex(q, prep)
		if idx < 0 {
			continue
		}
		rest := q[idx+len(prep):]
		for _, term := range cityTerminators {
			if cut := strings.Index(rest, term); cut >= 0 {
				rest = rest[:cut]
			}
		}
		if city := normalize(rest); city != "" {
			return city
		}
	}
	return ""
}

// filteredCity drops stop-words and punctuation-only tokens.
func filteredCity(q string) string {
	var kept []string
	for _, field := range strings.Fields(q) {
		tok := strings.Trim(field, tokenPunctuation)
		if tok == "" {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// normalize collapses whitespace and trims surrounding punctuation.
func normalize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, tokenPunctuation+" ")
}

// titleCase upper-cases the first letter of each word. An apostrophe also
// starts a new word, so "o'fallon" becomes "O'Fallon".
func titleCase(s string) string {
	if s == "" {
		return ""
	}
	caser := cases.Title(language.Und)

	var b strings.Builder
	start := 0
	for i, r := range s {
		if r == '\'' || r == '’' {
			b.WriteString(caser.String(s[start:i]))
			b.WriteRune(r)
			start = i + utf8.RuneLen(r)
		}
	}
	b.WriteString(caser.String(s[start:]))
	return b.String()
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
