package intent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestIsGreeting(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"bonjour", true},
		{"  Salut  ", true},
		{"HELLO", true},
		{"coucou\n", true},
		{"bonjour, qui a écrit le rapport ?", false},
		{"hello world", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := IsGreeting(tt.text); got != tt.want {
				t.Errorf("IsGreeting(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractAPIURL(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantURL string
		wantOK  bool
	}{
		{
			name:    "known public api host",
			text:    "Explore https://jsonplaceholder.typicode.com",
			wantURL: "https://jsonplaceholder.typicode.com/",
			wantOK:  true,
		},
		{
			name:    "api path indicator",
			text:    "peux-tu tester https://example.com/api/v2",
			wantURL: "https://example.com/api/v2/",
			wantOK:  true,
		},
		{
			name:    "api subdomain keeps trailing slash",
			text:    "Analyse https://api.github.com/",
			wantURL: "https://api.github.com/",
			wantOK:  true,
		},
		{
			name:    "word api in message",
			text:    "Découvre l'API https://example.org",
			wantURL: "https://example.org/",
			wantOK:  true,
		},
		{
			name:    "trailing punctuation stripped",
			text:    "Explore https://api.github.com.",
			wantURL: "https://api.github.com/",
			wantOK:  true,
		},
		{
			name:    "explicit phrase accepts any url",
			text:    "explore cette api: https://example.org/things",
			wantURL: "https://example.org/things/",
			wantOK:  true,
		},
		{
			name:   "url without intent",
			text:   "Voici mon site https://api.example.com",
			wantOK: false,
		},
		{
			name:   "intent without api indicator",
			text:   "Explore https://example.org/blog",
			wantOK: false,
		},
		{
			name:    "verb with a prefix still counts",
			text:    "réexplore https://api.x.com stp",
			wantURL: "https://api.x.com/",
			wantOK:  true,
		},
		{
			name:    "keyword inside another word counts",
			text:    "Je veux savoir https://example.org/v1/ ?",
			wantURL: "https://example.org/v1/",
			wantOK:  true,
		},
		{
			name:   "no url",
			text:   "Explore l'api de github",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAPIURL(tt.text)
			if ok != tt.wantOK || got != tt.wantURL {
				t.Errorf("ExtractAPIURL(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.wantURL, tt.wantOK)
			}
		})
	}
}

func TestWantsToQuitAPIMode(t *testing.T) {
	assert.True(t, WantsToQuitAPIMode("Quitte le mode API"))
	assert.True(t, WantsToQuitAPIMode("ok, reviens au chat normal stp"))
	assert.True(t, WantsToQuitAPIMode("Arrête l'exploration"))
	assert.True(t, WantsToQuitAPIMode("passe en mode normal"))
	assert.False(t, WantsToQuitAPIMode("Appelle l'endpoint 1"))
}

func TestIsAPIRelated(t *testing.T) {
	assert.True(t, IsAPIRelated("comment utiliser une API ?"))
	assert.True(t, IsAPIRelated("liste des endpoint github"))
	assert.False(t, IsAPIRelated("une réponse rapide sur la photosynthèse"))
}

// Feature: intent classifier, Property 1: greetings match regardless of case and padding
func TestPropertyGreetingNormalisation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		word := rapid.SampledFrom([]string{"salut", "bonjour", "hello", "coucou"}).Draw(rt, "word")
		upper := rapid.SliceOfN(rapid.Bool(), len(word), len(word)).Draw(rt, "upper")
		left := rapid.StringMatching(`[ \t\n]{0,3}`).Draw(rt, "left")
		right := rapid.StringMatching(`[ \t\n]{0,3}`).Draw(rt, "right")

		var b strings.Builder
		for i, r := range word {
			if upper[i] {
				b.WriteString(strings.ToUpper(string(r)))
			} else {
				b.WriteRune(r)
			}
		}

		if !IsGreeting(left + b.String() + right) {
			rt.Fatalf("greeting %q not recognised", left+b.String()+right)
		}
	})
}

// Feature: intent classifier, Property 2: classifiers are total over arbitrary text
func TestPropertyClassifiersNeverPanic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.String().Draw(rt, "text")

		IsGreeting(text)
		WantsToQuitAPIMode(text)
		IsSpecialCommand(text)
		ClassifySpecialCommand(text)
		ClassifyFollowup(text)
		IsAPIRelated(text)
		ExtractEndpointReference(text)

		if u, ok := ExtractAPIURL(text); ok {
			if !strings.HasSuffix(u, "/") {
				rt.Fatalf("url %q is not normalised", u)
			}
			if !strings.HasPrefix(strings.ToLower(u), "http") {
				rt.Fatalf("url %q has no scheme", u)
			}
		}
	})
}
