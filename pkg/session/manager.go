// Package session owns "which mode is this user in".
//
// The durable Store is the only authority: a user is in API mode iff the
// store has a record for them. The Mirror carries fields that live only for
// one mode lifetime (current endpoint, favorite id) and is rebuilt from the
// store whenever the two disagree.
package session

import (
	"context"
	"errors"
	"time"

	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/pkg/apperror"
	"rag-api-explorer-be/pkg/store"
)

const DefaultStaleAfter = 2 * time.Hour

// Store is the durable session collaborator, keyed by (userID, apiURL).
// Get returns nil, nil when the user has no session.
type Store interface {
	Get(ctx context.Context, userID string) (*store.Session, error)
	CreateOrUpdate(ctx context.Context, userID, apiURL string, meta store.SessionMeta) error
	Delete(ctx context.Context, userID, apiURL string) error
}

// Mirror is the in-process cache of sessions.
type Mirror interface {
	Get(userID string) (*store.Session, bool)
	Set(s *store.Session)
	Update(userID string, fn func(*store.Session)) bool
	Delete(userID string)
	DeleteIfEnteredBefore(userID string, cutoff time.Time) bool
	Snapshot() []*store.Session
}

type Manager struct {
	store      Store
	mirror     Mirror
	staleAfter time.Duration
	logger     logger.ILogger
}

func NewManager(s Store, mirror Mirror, staleAfter time.Duration, log logger.ILogger) *Manager {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Manager{
		store:      s,
		mirror:     mirror,
		staleAfter: staleAfter,
		logger:     log,
	}
}

// Current returns the user's session or nil in normal mode.
func (m *Manager) Current(ctx context.Context, userID string) (*store.Session, error) {
	return m.RefreshMirror(ctx, userID)
}

// RefreshMirror reads the authoritative record and reconciles the mirror with it.
// Ephemeral fields survive only if the mirror entry belongs to the same session
// (same API and same entry time).
func (m *Manager) RefreshMirror(ctx context.Context, userID string) (*store.Session, error) {
	rec, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrSessionStore, err)
	}

	if rec == nil {
		m.mirror.Delete(userID)
		return nil, nil
	}

	merged := rec.Clone()
	merged.UserID = userID
	if cached, ok := m.mirror.Get(userID); ok && sameSession(cached, rec) {
		merged.CurrentEndpoint = cached.CurrentEndpoint
		merged.FavoriteID = cached.FavoriteID
	} else if ok {
		m.logger.Debug("SESSION", "Mirror diverged from store, rebuilding", map[string]interface{}{
			"user_id":    userID,
			"mirror_url": cached.APIURL,
			"store_url":  rec.APIURL,
		})
	}

	m.mirror.Set(merged)
	return merged.Clone(), nil
}

// Enter switches the user into API mode for apiURL. The durable record is
// written first, then the mirror is rebuilt from it.
func (m *Manager) Enter(ctx context.Context, userID, apiURL string) (*store.Session, error) {
	if err := m.store.CreateOrUpdate(ctx, userID, apiURL, store.SessionMeta{}); err != nil {
		return nil, apperror.Wrap(apperror.ErrSessionStore, err)
	}

	sess, err := m.RefreshMirror(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperror.Wrap(apperror.ErrSessionStore, errors.New("session not readable after write"))
	}

	m.logger.Info("SESSION", "Entered API mode", map[string]interface{}{
		"user_id": userID,
		"api_url": apiURL,
	})
	return sess, nil
}

// Record persists what was learned during exploration.
func (m *Manager) Record(ctx context.Context, sess *store.Session, meta store.SessionMeta) error {
	if err := m.store.CreateOrUpdate(ctx, sess.UserID, sess.APIURL, meta); err != nil {
		return apperror.Wrap(apperror.ErrSessionStore, err)
	}
	m.mirror.Update(sess.UserID, func(s *store.Session) {
		s.Meta = meta
	})
	return nil
}

// Exit deletes the session from the store and the mirror.
func (m *Manager) Exit(ctx context.Context, userID, apiURL string) error {
	if err := m.store.Delete(ctx, userID, apiURL); err != nil {
		return apperror.Wrap(apperror.ErrSessionStore, err)
	}
	m.mirror.Delete(userID)

	m.logger.Info("SESSION", "Left API mode", map[string]interface{}{
		"user_id": userID,
		"api_url": apiURL,
	})
	return nil
}

func (m *Manager) SetCurrentEndpoint(userID, path string) {
	m.mirror.Update(userID, func(s *store.Session) {
		s.CurrentEndpoint = path
	})
}

func (m *Manager) SetFavorite(userID, favoriteID string) {
	m.mirror.Update(userID, func(s *store.Session) {
		s.FavoriteID = favoriteID
	})
}

// Sweep evicts mirror entries entered at least staleAfter before now and
// returns how many were removed. The durable store is not touched.
func (m *Manager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.staleAfter)

	evicted := 0
	for _, s := range m.mirror.Snapshot() {
		if s.EnteredAt.After(cutoff) {
			continue
		}
		if m.mirror.DeleteIfEnteredBefore(s.UserID, cutoff) {
			evicted++
		}
	}

	if evicted > 0 {
		m.logger.Info("SWEEPER", "Evicted stale session mirror entries", map[string]interface{}{
			"evicted": evicted,
			"cutoff":  cutoff,
		})
	}
	return evicted
}

func sameSession(a, b *store.Session) bool {
	return a.APIURL == b.APIURL && a.EnteredAt.Equal(b.EnteredAt)
}
