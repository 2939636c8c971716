package apiexplorer

import (
	"context"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const allowedDomainsKey = "explorer:allowed_domains"

var DefaultAllowedDomains = []string{
	"jsonplaceholder.typicode.com",
	"api.github.com",
	"api.publicapis.org",
}

// DomainStore persists domains added at runtime.
type DomainStore interface {
	Add(ctx context.Context, domain string) error
	Contains(ctx context.Context, domain string) (bool, error)
}

type RedisDomainStore struct {
	rdb *redis.Client
}

func NewRedisDomainStore(rdb *redis.Client) *RedisDomainStore {
	return &RedisDomainStore{rdb: rdb}
}

func (s *RedisDomainStore) Add(ctx context.Context, domain string) error {
	return s.rdb.SAdd(ctx, allowedDomainsKey, domain).Err()
}

func (s *RedisDomainStore) Contains(ctx context.Context, domain string) (bool, error) {
	return s.rdb.SIsMember(ctx, allowedDomainsKey, domain).Result()
}

// MemoryDomainStore is used when Redis is not configured.
type MemoryDomainStore struct {
	mu      sync.RWMutex
	domains map[string]struct{}
}

func NewMemoryDomainStore() *MemoryDomainStore {
	return &MemoryDomainStore{domains: make(map[string]struct{})}
}

func (s *MemoryDomainStore) Add(_ context.Context, domain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domains[domain] = struct{}{}
	return nil
}

func (s *MemoryDomainStore) Contains(_ context.Context, domain string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.domains[domain]
	return ok, nil
}

// AllowList decides which hosts may be explored. A host matches a listed
// domain exactly or as a subdomain of it.
type AllowList struct {
	restrict bool
	static   map[string]struct{}
	store    DomainStore
}

func NewAllowList(restrict bool, domains []string, ds DomainStore) *AllowList {
	static := make(map[string]struct{}, len(DefaultAllowedDomains)+len(domains))
	for _, d := range append(append([]string{}, DefaultAllowedDomains...), domains...) {
		if d = NormalizeDomain(d); d != "" {
			static[d] = struct{}{}
		}
	}
	if ds == nil {
		ds = NewMemoryDomainStore()
	}
	return &AllowList{restrict: restrict, static: static, store: ds}
}

func (a *AllowList) Allowed(ctx context.Context, host string) (bool, error) {
	if !a.restrict {
		return true, nil
	}
	for _, candidate := range domainCandidates(NormalizeDomain(host)) {
		if _, ok := a.static[candidate]; ok {
			return true, nil
		}
		ok, err := a.store.Contains(ctx, candidate)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (a *AllowList) Add(ctx context.Context, domain string) error {
	return a.store.Add(ctx, NormalizeDomain(domain))
}

// NormalizeDomain lowercases and strips scheme, port and path.
func NormalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.LastIndex(d, ":"); i >= 0 {
		d = d[:i]
	}
	return strings.Trim(d, ".")
}

// domainCandidates returns host and its parent domains, e.g.
// a.b.com -> [a.b.com b.com].
func domainCandidates(host string) []string {
	if host == "" {
		return nil
	}
	parts := strings.Split(host, ".")
	out := []string{host}
	for i := 1; i < len(parts)-1; i++ {
		out = append(out, strings.Join(parts[i:], "."))
	}
	return out
}
