package intent

import (
	"testing"
)

func TestClassifySpecialCommand(t *testing.T) {
	tests := []struct {
		name string
		text string
		want SpecialCommand
	}{
		{"favorites", "Mes favoris", SpecialCommand{Kind: CommandListFavorites}},
		{"favorites list", "montre la liste des favoris", SpecialCommand{Kind: CommandListFavorites}},
		{"history", "Mon historique", SpecialCommand{Kind: CommandShowHistory}},
		{"history calls", "historique des appels", SpecialCommand{Kind: CommandShowHistory}},
		{"clear wins over show", "Efface mon historique", SpecialCommand{Kind: CommandClearHistory}},
		{"remove favorite", "Supprime le favori 2", SpecialCommand{Kind: CommandRemoveFavorite, Index: 2}},
		{"remove favorite without index", "supprime le favori", SpecialCommand{Kind: CommandUnknown}},
		{"add domain", "Ajoute le domaine api.example.com", SpecialCommand{Kind: CommandAddDomain, Domain: "api.example.com"}},
		{"add domain trigger only", "ajoute un domaine", SpecialCommand{Kind: CommandUnknown}},
		{"quit", "quitte le mode API", SpecialCommand{Kind: CommandQuit}},
		{"none", "Qui a écrit le rapport annuel ?", SpecialCommand{Kind: CommandNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySpecialCommand(tt.text)
			if got != tt.want {
				t.Errorf("ClassifySpecialCommand(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
			if isSpecial := IsSpecialCommand(tt.text); isSpecial != (tt.want.Kind != CommandNone) {
				t.Errorf("IsSpecialCommand(%q) = %v", tt.text, isSpecial)
			}
		})
	}
}

func TestExtractEndpointReference(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   EndpointReference
		wantOK bool
	}{
		{"index", "Appelle l'endpoint 2", EndpointReference{Raw: "2", Numeric: true, Index: 2}, true},
		{"typographic apostrophe", "appelle l’endpoint 10", EndpointReference{Raw: "10", Numeric: true, Index: 10}, true},
		{"bare index", "appel 3", EndpointReference{Raw: "3", Numeric: true, Index: 3}, true},
		{"path", "Appelle /users", EndpointReference{Raw: "/users", Path: "/users"}, true},
		{"path with punctuation", "appelle /posts/1.", EndpointReference{Raw: "/posts/1.", Path: "/posts/1"}, true},
		{"affiche variant", "Affiche l'endpoint 4", EndpointReference{Raw: "4", Numeric: true, Index: 4}, true},
		{"requête variant", "requête /comments", EndpointReference{Raw: "/comments", Path: "/comments"}, true},
		{"overflowing index", "appelle 99999999999999999999", EndpointReference{Raw: "99999999999999999999", Numeric: true}, true},
		{"documentation is not a reference", "Montre la documentation", EndpointReference{}, false},
		{"no reference", "quels endpoints sont disponibles ?", EndpointReference{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractEndpointReference(tt.text)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractEndpointReference(%q) = (%+v, %v), want (%+v, %v)", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestClassifyFollowup(t *testing.T) {
	tests := []struct {
		text string
		want Followup
	}{
		{"Montre la documentation", FollowupDocumentation},
		{"Ajoute cette API aux favoris", FollowupAddFavorite},
		{"ajoute aux favoris", FollowupAddFavorite},
		{"Quels endpoints sont disponibles ?", FollowupListEndpoints},
		{"liste des points de terminaison", FollowupListEndpoints},
		{"merci beaucoup", FollowupNone},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ClassifyFollowup(tt.text); got != tt.want {
				t.Errorf("ClassifyFollowup(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
