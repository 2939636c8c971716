package memory

import (
	"sync"
	"time"

	"rag-api-explorer-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionMirror keeps the ephemeral per-user session fields in process.
// Entries never expire on their own; eviction is the sweeper's job.
type SessionMirror struct {
	cache *cache.Cache
	mu    sync.Mutex // serialises compound read-modify-write operations
}

func NewSessionMirror() *SessionMirror {
	return &SessionMirror{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *SessionMirror) Get(userID string) (*store.Session, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(*store.Session).Clone(), true
	}
	return nil, false
}

func (r *SessionMirror) Set(session *store.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Set(session.UserID, session.Clone(), cache.NoExpiration)
}

// Update applies fn to a copy of the entry and stores it back.
func (r *SessionMirror) Update(userID string, fn func(*store.Session)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(userID)
	if !found {
		return false
	}
	s := x.(*store.Session).Clone()
	fn(s)
	r.cache.Set(userID, s, cache.NoExpiration)
	return true
}

func (r *SessionMirror) Delete(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(userID)
}

// DeleteIfEnteredBefore removes the entry only if it is still at or before cutoff.
// A session re-entered since the caller's snapshot is left alone.
func (r *SessionMirror) DeleteIfEnteredBefore(userID string, cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(userID)
	if !found {
		return false
	}
	if x.(*store.Session).EnteredAt.After(cutoff) {
		return false
	}
	r.cache.Delete(userID)
	return true
}

// Snapshot returns copies of every entry at call time.
func (r *SessionMirror) Snapshot() []*store.Session {
	items := r.cache.Items()
	out := make([]*store.Session, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(*store.Session).Clone())
	}
	return out
}

func (r *SessionMirror) Len() int {
	return r.cache.ItemCount()
}
