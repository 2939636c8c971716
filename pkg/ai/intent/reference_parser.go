package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// CommandKind names a special command accepted in any mode.
type CommandKind string

const (
	CommandNone           CommandKind = ""
	CommandListFavorites  CommandKind = "list_favorites"
	CommandShowHistory    CommandKind = "show_history"
	CommandClearHistory   CommandKind = "clear_history"
	CommandRemoveFavorite CommandKind = "remove_favorite"
	CommandAddDomain      CommandKind = "add_domain"
	CommandQuit           CommandKind = "quit"
	// CommandUnknown is a recognised trigger missing its argument,
	// e.g. "supprime le favori" without an index.
	CommandUnknown CommandKind = "unknown"
)

// SpecialCommand is the result of ClassifySpecialCommand.
type SpecialCommand struct {
	Kind   CommandKind
	Index  int    // 1-based, CommandRemoveFavorite only
	Domain string // CommandAddDomain only
}

var specialCommandPhrases = []string{
	"mes favoris",
	"liste des favoris",
	"mon historique",
	"historique des appels",
	"efface mon historique",
	"supprime le favori",
	"ajoute un domaine",
	"ajoute le domaine",
	"quitte le mode api",
}

var (
	removeFavoritePattern = regexp.MustCompile(`(?i)supprime\s+le\s+favori\s+(\d+)`)
	addDomainPattern      = regexp.MustCompile(`(?i)ajoute\s+le\s+domaine\s+(\S+)`)
)

// IsSpecialCommand reports whether text contains one of the special command triggers.
func IsSpecialCommand(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range specialCommandPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// ClassifySpecialCommand resolves text to a command and its argument.
// Clearing is checked before listing since "efface mon historique" contains
// the listing trigger.
func ClassifySpecialCommand(text string) SpecialCommand {
	if !IsSpecialCommand(text) {
		return SpecialCommand{Kind: CommandNone}
	}
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "quitte le mode api"):
		return SpecialCommand{Kind: CommandQuit}
	case strings.Contains(lower, "efface mon historique"):
		return SpecialCommand{Kind: CommandClearHistory}
	case strings.Contains(lower, "supprime le favori"):
		m := removeFavoritePattern.FindStringSubmatch(text)
		if m == nil {
			return SpecialCommand{Kind: CommandUnknown}
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return SpecialCommand{Kind: CommandUnknown}
		}
		return SpecialCommand{Kind: CommandRemoveFavorite, Index: idx}
	case strings.Contains(lower, "ajoute le domaine"), strings.Contains(lower, "ajoute un domaine"):
		m := addDomainPattern.FindStringSubmatch(text)
		if m == nil {
			return SpecialCommand{Kind: CommandUnknown}
		}
		return SpecialCommand{Kind: CommandAddDomain, Domain: strings.TrimRight(m[1], urlTrailingPunctuation)}
	case strings.Contains(lower, "mes favoris"), strings.Contains(lower, "liste des favoris"):
		return SpecialCommand{Kind: CommandListFavorites}
	case strings.Contains(lower, "mon historique"), strings.Contains(lower, "historique des appels"):
		return SpecialCommand{Kind: CommandShowHistory}
	}
	return SpecialCommand{Kind: CommandUnknown}
}

// EndpointReference points at an endpoint either by 1-based position or by path.
type EndpointReference struct {
	Raw     string
	Numeric bool
	Index   int // valid when Numeric; 0 if the number did not fit an int
	Path    string
}

var (
	endpointCallPattern = regexp.MustCompile(`(?i)appel(?:le)?\s+(?:l['’]?endpoint\s+)?(\d+|/\S+)`)
	genericCallPattern  = regexp.MustCompile(`(?i)(?:appel|requête|montre|affiche)\s+(?:l['’]?endpoint\s+)?(\d+|/\S+)`)
)

// ExtractEndpointReference matches "appelle l'endpoint 2", "appelle /users"
// and the requête/montre/affiche variants.
func ExtractEndpointReference(text string) (EndpointReference, bool) {
	m := endpointCallPattern.FindStringSubmatch(text)
	if m == nil {
		m = genericCallPattern.FindStringSubmatch(text)
	}
	if m == nil {
		return EndpointReference{}, false
	}

	raw := m[1]
	if strings.HasPrefix(raw, "/") {
		path := strings.TrimRight(raw, urlTrailingPunctuation)
		if path == "" {
			path = "/"
		}
		return EndpointReference{Raw: raw, Path: path}, true
	}

	ref := EndpointReference{Raw: raw, Numeric: true}
	if idx, err := strconv.Atoi(raw); err == nil {
		ref.Index = idx
	}
	return ref, true
}

// Followup is an API-mode request that is neither a special command nor an endpoint call.
type Followup string

const (
	FollowupNone          Followup = ""
	FollowupDocumentation Followup = "documentation"
	FollowupAddFavorite   Followup = "add_favorite"
	FollowupListEndpoints Followup = "list_endpoints"
)

var listEndpointsPhrases = []string{
	"endpoint",
	"quels endpoints",
	"quels sont les endpoints",
	"liste des endpoints",
	"quels points de terminaison",
	"quels sont les points",
	"points de terminaison",
	"disponibles",
}

func ClassifyFollowup(text string) Followup {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "montre la documentation") || strings.Contains(lower, "affiche la documentation") {
		return FollowupDocumentation
	}
	if strings.Contains(lower, "ajoute cette api aux favoris") || strings.Contains(lower, "ajoute aux favoris") {
		return FollowupAddFavorite
	}
	for _, phrase := range listEndpointsPhrases {
		if strings.Contains(lower, phrase) {
			return FollowupListEndpoints
		}
	}
	return FollowupNone
}
