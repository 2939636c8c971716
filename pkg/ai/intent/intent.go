// Package intent holds the keyword and pattern matchers used to route a
// conversation turn. Every function is pure and total: no match is reported
// as a zero value, never as an error or panic.
package intent

import (
	"net/url"
	"regexp"
	"strings"
)

var greetings = map[string]struct{}{
	"salut":   {},
	"bonjour": {},
	"hello":   {},
	"coucou":  {},
}

// IsGreeting reports whether text is exactly one of the greeting words,
// ignoring case and surrounding whitespace.
func IsGreeting(text string) bool {
	_, ok := greetings[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// Exploration verbs, matched anywhere in the message.
var explorationKeywords = []string{
	"explore ", "explorer ", "analyse ", "analyser ", "teste ", "tester ",
	"appelle ", "appeler ", "requête ", "requêter ", "interroge ", "interroger ",
	"voir ", "montrer ", "affiche ", "afficher ", "découvre ", "découvrir ",
}

var apiIndicators = []string{
	"/api/", "/v1/", "/v2/", "/v3/", "/graphql", "/rest/",
	"api.", ".api.", "jsonplaceholder", "github", "publicapis",
}

var explicitExplorePhrases = []string{
	"explore cette api",
	"explorer cette api",
	"analyse cette api",
}

var quitPhrases = []string{
	"quitte le mode api",
	"quitter le mode api",
	"reviens au chat normal",
	"revenir au chat normal",
	"mode normal",
	"arrête l'exploration",
	"arrêter l'exploration",
	"arrête l’exploration",
	"arrêter l’exploration",
}

var (
	urlPattern     = regexp.MustCompile(`(?i)https?://\S+`)
	apiWordPattern = regexp.MustCompile(`(?i)\bapis?\b`)
)

const urlTrailingPunctuation = ".,;:!?)]}\"'»"

// ExtractAPIURL returns the first http(s) URL of text, normalized to end with
// "/", when the message asks to explore it and something marks it as an API.
func ExtractAPIURL(text string) (string, bool) {
	lower := strings.ToLower(text)

	rawURL, found := firstURL(text)
	if !found {
		return "", false
	}
	normalized := withTrailingSlash(rawURL)

	if hasExplorationIntent(lower) {
		lowerURL := strings.ToLower(normalized)
		for _, indicator := range apiIndicators {
			if strings.Contains(lowerURL, indicator) {
				return normalized, true
			}
		}
		if strings.Contains(lower, "api") {
			return normalized, true
		}
	}

	for _, phrase := range explicitExplorePhrases {
		if strings.Contains(lower, phrase) {
			return normalized, true
		}
	}

	return "", false
}

// WantsToQuitAPIMode reports whether text contains one of the exit phrases.
func WantsToQuitAPIMode(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range quitPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// IsAPIRelated is a loose check used to hint at exploration mode when the
// knowledge base has nothing on a question.
func IsAPIRelated(text string) bool {
	lower := strings.ToLower(text)
	if apiWordPattern.MatchString(lower) {
		return true
	}
	for _, kw := range []string{"endpoint", "explorer", "jsonplaceholder", "github", "publicapis"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func hasExplorationIntent(lower string) bool {
	for _, kw := range explorationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func firstURL(text string) (string, bool) {
	for _, candidate := range urlPattern.FindAllString(text, -1) {
		candidate = strings.TrimRight(candidate, urlTrailingPunctuation)
		u, err := url.Parse(candidate)
		if err != nil || u.Host == "" {
			continue
		}
		return candidate, true
	}
	return "", false
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
