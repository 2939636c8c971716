package store

import "time"

// Session is the record of which external API a user is currently exploring.
// A user with no Session is in normal mode.
type Session struct {
	UserID    string      `json:"user_id"`
	APIURL    string      `json:"api_url"`
	EnteredAt time.Time   `json:"entered_at"`
	Meta      SessionMeta `json:"meta"`

	// Ephemeral, only carried by the in-memory mirror for the current mode lifetime.
	CurrentEndpoint string `json:"current_endpoint,omitempty"`
	FavoriteID      string `json:"favorite_id,omitempty"`
}

// SessionMeta is persisted alongside the durable session record.
type SessionMeta struct {
	ExploredEndpoints []string `json:"exploredEndpoints"`
}

// Clone returns a copy safe to mutate without touching the mirror's entry.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Meta.ExploredEndpoints = append([]string(nil), s.Meta.ExploredEndpoints...)
	return &c
}

// Snapshot returns the caller-facing view of the session, nil in normal mode.
func (s *Session) Snapshot() *ContextSnapshot {
	if s == nil {
		return nil
	}
	return &ContextSnapshot{
		APIURL:          s.APIURL,
		ExplorationTime: s.EnteredAt,
		CurrentEndpoint: s.CurrentEndpoint,
		FavoriteID:      s.FavoriteID,
	}
}

const (
	ModeNormal = "normal"
	ModeAPI    = "api"
)
