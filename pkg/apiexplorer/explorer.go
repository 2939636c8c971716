// Package apiexplorer discovers and calls third-party HTTP APIs on behalf of a user,
// and keeps their favorites and call history.
package apiexplorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/pkg/apperror"
	"rag-api-explorer-be/pkg/store"
)

const (
	probeConcurrency  = 4
	maxBodyBytes      = 2 << 20
	arrayDisplayLimit = 5
	userAgent         = "rag-api-explorer/1.0"
)

type Config struct {
	Timeout       time.Duration
	HistoryLimit  int
	MaxProbePaths int
}

// FavoriteStore persists favorites per user.
type FavoriteStore interface {
	Add(ctx context.Context, userID string, in store.FavoriteInput) (*store.Favorite, error)
	List(ctx context.Context, userID string) ([]store.Favorite, error)
	Get(ctx context.Context, userID, favoriteID string) (*store.Favorite, error)
	Remove(ctx context.Context, userID, favoriteID string) (bool, error)
	Touch(ctx context.Context, favoriteID string, at time.Time) error
}

// HistoryStore persists call history per user, newest first on List.
type HistoryStore interface {
	Append(ctx context.Context, entry store.HistoryEntry, keep int) error
	List(ctx context.Context, userID string, limit int) ([]store.HistoryEntry, error)
	Clear(ctx context.Context, userID string) (int64, error)
}

type Explorer struct {
	client    *http.Client
	cfg       Config
	cache     *InfoCache
	allow     *AllowList
	favorites FavoriteStore
	history   HistoryStore
	logger    logger.ILogger
	now       func() time.Time
}

func NewExplorer(
	client *http.Client,
	cfg Config,
	cache *InfoCache,
	allow *AllowList,
	favorites FavoriteStore,
	history HistoryStore,
	log logger.ILogger,
) *Explorer {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 100
	}
	return &Explorer{
		client:    client,
		cfg:       cfg,
		cache:     cache,
		allow:     allow,
		favorites: favorites,
		history:   history,
		logger:    log,
		now:       time.Now,
	}
}

// ExploreAPI lists the endpoints of the API rooted at apiURL, from its OpenAPI
// document when one is published, otherwise by probing common resources.
func (e *Explorer) ExploreAPI(ctx context.Context, apiURL, userID string) (*store.APIInfo, error) {
	base, err := e.checkURL(ctx, apiURL)
	if err != nil {
		return nil, err
	}

	if info, ok := e.cache.Get(ctx, base); ok {
		e.logger.Debug("EXPLORER", "Exploration served from cache", map[string]interface{}{
			"url":     base,
			"user_id": userID,
		})
		return info, nil
	}

	start := e.now()
	info := e.discoverOpenAPI(ctx, base)
	if info == nil {
		if err := ctx.Err(); err != nil {
			return nil, apperror.Wrap(apperror.ErrProbe, err)
		}
		info = &store.APIInfo{
			BaseURL:   base,
			Source:    store.InfoSourceProbe,
			Endpoints: e.probe(ctx, base),
		}
	}
	info.ExploredAt = e.now()

	e.logger.Info("EXPLORER", "API explored", map[string]interface{}{
		"url":         base,
		"user_id":     userID,
		"source":      info.Source,
		"endpoints":   len(info.Endpoints),
		"duration_ms": e.now().Sub(start).Milliseconds(),
	})

	e.cache.Set(ctx, info)
	return cloneInfo(info), nil
}

// CallEndpoint performs one request. Transport failures are returned as errors;
// a non-2xx answer is a result with Error set. Every attempt is recorded in history.
func (e *Explorer) CallEndpoint(ctx context.Context, apiURL, path string, opts store.CallOptions) (*store.CallResult, error) {
	base, err := e.checkURL(ctx, apiURL)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}

	headers := map[string]string{}
	if opts.FavoriteID != "" {
		fav, err := e.favorites.Get(ctx, opts.UserID, opts.FavoriteID)
		if err != nil {
			return nil, apperror.Wrap(apperror.ErrProbe, err)
		}
		if fav != nil {
			for k, v := range fav.Headers {
				headers[k] = v
			}
			if err := e.favorites.Touch(ctx, fav.ID, e.now()); err != nil {
				e.logger.Warn("EXPLORER", "Failed to update favorite last use", map[string]interface{}{
					"favorite_id": fav.ID,
					"error":       err.Error(),
				})
			}
		}
	}

	target := base + strings.TrimPrefix(path, "/")
	resp, err := e.do(ctx, method, target, headers)
	if err != nil {
		e.record(ctx, store.HistoryEntry{
			UserID: opts.UserID, APIURL: base, Method: method, Endpoint: path,
			Timestamp: e.now(), Error: err.Error(),
		})
		return nil, apperror.Wrap(apperror.ErrProbe, err)
	}

	result := &store.CallResult{
		Status:   resp.status,
		Duration: resp.duration,
		Headers:  resp.headers,
	}
	result.Data, result.RawData, result.Truncated = displayData(resp.body)
	if resp.status < 200 || resp.status > 299 {
		result.Error = http.StatusText(resp.status)
		if result.Error == "" {
			result.Error = fmt.Sprintf("HTTP %d", resp.status)
		}
	}

	e.record(ctx, store.HistoryEntry{
		UserID:    opts.UserID,
		APIURL:    base,
		Method:    method,
		Endpoint:  path,
		Timestamp: e.now(),
		Duration:  resp.duration,
		Status:    resp.status,
		Response:  result.Data,
		Error:     result.Error,
	})

	return result, nil
}

// GenerateAPIDocumentation renders a markdown summary of what was discovered.
func (e *Explorer) GenerateAPIDocumentation(info *store.APIInfo) string {
	var b strings.Builder

	title := info.Title
	if title == "" {
		title = info.BaseURL
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if info.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", info.Description)
	}
	fmt.Fprintf(&b, "**URL de base**: %s\n\n", info.BaseURL)

	source := "exploration automatique"
	if info.Source == store.InfoSourceOpenAPI {
		source = "documentation OpenAPI"
	}
	fmt.Fprintf(&b, "**Source**: %s\n\n", source)

	b.WriteString("## Endpoints\n\n")
	if len(info.Endpoints) == 0 {
		b.WriteString("Aucun endpoint découvert.\n")
	}
	for _, ep := range info.Endpoints {
		fmt.Fprintf(&b, "### %s %s\n\n", ep.Method, ep.Path)
		if ep.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", ep.Description)
		}
		if ep.Status != 0 {
			fmt.Fprintf(&b, "- Statut observé: %d\n", ep.Status)
			fmt.Fprintf(&b, "- Temps de réponse: %dms\n\n", ep.ResponseTime)
		}
		if len(ep.SampleResponse) > 0 {
			fmt.Fprintf(&b, "Exemple de réponse:\n\n```json\n%s\n```\n\n", string(ep.SampleResponse))
		}
	}
	return b.String()
}

func (e *Explorer) AddToFavorites(ctx context.Context, userID string, in store.FavoriteInput) (*store.Favorite, error) {
	fav, err := e.favorites.Add(ctx, userID, in)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrProbe, err)
	}
	return fav, nil
}

func (e *Explorer) GetUserFavorites(ctx context.Context, userID string) ([]store.Favorite, error) {
	favs, err := e.favorites.List(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrProbe, err)
	}
	return favs, nil
}

func (e *Explorer) RemoveFavorite(ctx context.Context, userID, favoriteID string) (bool, error) {
	ok, err := e.favorites.Remove(ctx, userID, favoriteID)
	if err != nil {
		return false, apperror.Wrap(apperror.ErrProbe, err)
	}
	return ok, nil
}

func (e *Explorer) GetUserHistory(ctx context.Context, userID string) ([]store.HistoryEntry, error) {
	entries, err := e.history.List(ctx, userID, e.cfg.HistoryLimit)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrProbe, err)
	}
	return entries, nil
}

func (e *Explorer) ClearUserHistory(ctx context.Context, userID string) (bool, error) {
	if _, err := e.history.Clear(ctx, userID); err != nil {
		return false, apperror.Wrap(apperror.ErrProbe, err)
	}
	return true, nil
}

func (e *Explorer) AddAllowedDomain(ctx context.Context, domain string) error {
	d := NormalizeDomain(domain)
	if d == "" {
		return apperror.Wrap(apperror.ErrValidation, fmt.Errorf("domaine invalide: %q", domain))
	}
	if err := e.allow.Add(ctx, d); err != nil {
		return apperror.Wrap(apperror.ErrProbe, err)
	}
	e.logger.Info("EXPLORER", "Allowed domain added", map[string]interface{}{"domain": d})
	return nil
}

// checkURL validates apiURL and returns it normalized with a trailing slash.
func (e *Explorer) checkURL(ctx context.Context, apiURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(apiURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperror.Wrap(apperror.ErrProbe, fmt.Errorf("URL invalide: %s", apiURL))
	}

	ok, err := e.allow.Allowed(ctx, u.Hostname())
	if err != nil {
		return "", apperror.Wrap(apperror.ErrProbe, err)
	}
	if !ok {
		host := u.Hostname()
		return "", apperror.Wrap(apperror.ErrProbe, fmt.Errorf(
			"le domaine %s n'est pas autorisé. Dites \"ajoute le domaine %s\" pour l'autoriser", host, host))
	}

	u.RawQuery, u.Fragment = "", ""
	base := u.String()
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base, nil
}

func (e *Explorer) record(ctx context.Context, entry store.HistoryEntry) {
	if err := e.history.Append(ctx, entry, e.cfg.HistoryLimit); err != nil {
		e.logger.Warn("EXPLORER", "Failed to record call history", map[string]interface{}{
			"user_id":  entry.UserID,
			"endpoint": entry.Endpoint,
			"error":    err.Error(),
		})
	}
}

type response struct {
	status   int
	duration int64
	headers  map[string]string
	body     []byte
}

func (e *Explorer) do(ctx context.Context, method, target string, headers map[string]string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	h := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		h[strings.ToLower(k)] = resp.Header.Get(k)
	}

	return &response{
		status:   resp.StatusCode,
		duration: time.Since(start).Milliseconds(),
		headers:  h,
		body:     body,
	}, nil
}

// displayData returns the payload shown to the user, the full payload and
// whether the first was cut. Non-JSON bodies are returned as a JSON string.
func displayData(body []byte) (data, raw json.RawMessage, truncated bool) {
	if len(body) == 0 {
		return nil, nil, false
	}
	if !json.Valid(body) {
		quoted, _ := json.Marshal(string(body))
		return quoted, quoted, false
	}

	raw = json.RawMessage(body)
	var arr []json.RawMessage
	if err := json.Unmarshal(body, &arr); err == nil && len(arr) > arrayDisplayLimit {
		cut, _ := json.Marshal(arr[:arrayDisplayLimit])
		return cut, raw, true
	}
	return raw, raw, false
}
