package store

import "time"

const (
	ResponseTypeRAG   = "rag"
	ResponseTypeAPI   = "api"
	ResponseTypeError = "error"
)

// ContextSnapshot is the session as shown to the caller.
type ContextSnapshot struct {
	APIURL          string    `json:"apiUrl"`
	ExplorationTime time.Time `json:"explorationTime"`
	CurrentEndpoint string    `json:"currentEndpoint,omitempty"`
	FavoriteID      string    `json:"favoriteId,omitempty"`
}

// ResponseEnvelope is the only thing a conversation turn ever returns.
type ResponseEnvelope struct {
	Response       string           `json:"response"`
	Type           string           `json:"type"`
	Mode           string           `json:"mode"`
	CurrentContext *ContextSnapshot `json:"currentContext"`
	Sources        []Source         `json:"sources,omitempty"`
	Data           any              `json:"data,omitempty"`
	Favorites      []Favorite       `json:"favorites,omitempty"`
	History        []HistoryEntry   `json:"history,omitempty"`
	FavoriteID     string           `json:"favoriteId,omitempty"`
	Suggestion     string           `json:"suggestion,omitempty"`
}
