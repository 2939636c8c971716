package pipeline

import (
	"context"
	"strings"
	"time"

	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/pkg/ai/format"
	"rag-api-explorer-be/pkg/ai/intent"
	"rag-api-explorer-be/pkg/store"
)

// User-facing prefixes of failed steps.
const (
	FailExplore        = "Impossible d'explorer l'API"
	FailDocumentation  = "Impossible de générer la documentation"
	FailAddFavorite    = "Impossible d'ajouter aux favoris"
	FailListFavorites  = "Impossible de récupérer les favoris"
	FailRemoveFavorite = "Impossible de supprimer le favori"
	FailHistory        = "Impossible de récupérer l'historique"
	FailClearHistory   = "Impossible d'effacer l'historique"
	FailListEndpoints  = "Impossible de lister les endpoints"
	FailCallEndpoint   = "Erreur lors de l'appel à l'endpoint"
	FailAddDomain      = "Impossible d'ajouter le domaine"
	FailQuestion       = "Impossible de traiter votre demande"
	FailGeneric        = "Une erreur est survenue"
)

const (
	favoriteDateLayout  = "02/01/2006"
	favoriteStampLayout = "02/01/2006 15:04:05"
)

// StepError is a failed collaborator call with the prefix shown to the user.
type StepError struct {
	Prefix string
	Err    error
}

func (e *StepError) Error() string { return e.Prefix + ": " + e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }

func fail(prefix string, err error) error {
	return &StepError{Prefix: prefix, Err: err}
}

// Prober discovers and calls third-party APIs and keeps user favorites and history.
type Prober interface {
	ExploreAPI(ctx context.Context, apiURL, userID string) (*store.APIInfo, error)
	CallEndpoint(ctx context.Context, apiURL, path string, opts store.CallOptions) (*store.CallResult, error)
	GenerateAPIDocumentation(info *store.APIInfo) string
	AddToFavorites(ctx context.Context, userID string, in store.FavoriteInput) (*store.Favorite, error)
	GetUserFavorites(ctx context.Context, userID string) ([]store.Favorite, error)
	RemoveFavorite(ctx context.Context, userID, favoriteID string) (bool, error)
	GetUserHistory(ctx context.Context, userID string) ([]store.HistoryEntry, error)
	ClearUserHistory(ctx context.Context, userID string) (bool, error)
	AddAllowedDomain(ctx context.Context, domain string) error
}

// ExplorePipeline runs the API-mode handlers. It never touches session state;
// the router applies whatever the returned outcome implies.
type ExplorePipeline struct {
	prober Prober
	logger logger.ILogger
	now    func() time.Time
}

func NewExplorePipeline(prober Prober, log logger.ILogger) *ExplorePipeline {
	return &ExplorePipeline{prober: prober, logger: log, now: time.Now}
}

// CallOutcome is the result of an endpoint-call turn. Endpoint is nil when the
// reference matched nothing.
type CallOutcome struct {
	Reply    format.Reply
	Endpoint *store.Endpoint
	Result   *store.CallResult
}

func (p *ExplorePipeline) Explore(ctx context.Context, userID, apiURL string) (*store.APIInfo, format.Reply, error) {
	info, err := p.prober.ExploreAPI(ctx, apiURL, userID)
	if err != nil {
		return nil, format.Reply{}, fail(FailExplore, err)
	}
	return info, format.Exploration(apiURL, info), nil
}

func (p *ExplorePipeline) ListEndpoints(ctx context.Context, sess *store.Session) (format.Reply, error) {
	info, err := p.prober.ExploreAPI(ctx, sess.APIURL, sess.UserID)
	if err != nil {
		return format.Reply{}, fail(FailListEndpoints, err)
	}
	return format.EndpointList(sess.APIURL, info), nil
}

func (p *ExplorePipeline) Documentation(ctx context.Context, sess *store.Session) (format.Reply, error) {
	info, err := p.prober.ExploreAPI(ctx, sess.APIURL, sess.UserID)
	if err != nil {
		return format.Reply{}, fail(FailDocumentation, err)
	}
	return format.Documentation(p.prober.GenerateAPIDocumentation(info)), nil
}

func (p *ExplorePipeline) AddFavorite(ctx context.Context, sess *store.Session) (format.Reply, error) {
	now := p.now()
	fav, err := p.prober.AddToFavorites(ctx, sess.UserID, store.FavoriteInput{
		URL:         sess.APIURL,
		Name:        "API " + now.Format(favoriteDateLayout),
		Description: "Explorée le " + now.Format(favoriteStampLayout),
	})
	if err != nil {
		return format.Reply{}, fail(FailAddFavorite, err)
	}
	return format.FavoriteAdded(fav), nil
}

// CallEndpoint resolves ref against the endpoint list fetched this turn and
// calls it. An unresolvable reference is a not-found reply, not an error.
func (p *ExplorePipeline) CallEndpoint(ctx context.Context, sess *store.Session, ref intent.EndpointReference) (*CallOutcome, error) {
	info, err := p.prober.ExploreAPI(ctx, sess.APIURL, sess.UserID)
	if err != nil {
		return nil, fail(FailCallEndpoint, err)
	}

	ep, ok := ResolveEndpoint(info.Endpoints, ref)
	if !ok {
		reference := ref.Raw
		if ref.Path != "" {
			reference = ref.Path
		}
		p.logger.Debug("EXPLORER", "Endpoint reference not found", map[string]interface{}{
			"user_id":   sess.UserID,
			"reference": reference,
		})
		return &CallOutcome{Reply: format.EndpointNotFound(reference, info.Endpoints)}, nil
	}

	result, err := p.prober.CallEndpoint(ctx, sess.APIURL, ep.Path, store.CallOptions{
		Method:     ep.Method,
		UserID:     sess.UserID,
		FavoriteID: sess.FavoriteID,
	})
	if err != nil {
		return nil, fail(FailCallEndpoint, err)
	}

	return &CallOutcome{
		Reply:    format.CallResult(ep, result),
		Endpoint: &ep,
		Result:   result,
	}, nil
}

// ResolveEndpoint treats a numeric reference as a 1-based index and a path as a
// case-insensitive exact match.
func ResolveEndpoint(endpoints []store.Endpoint, ref intent.EndpointReference) (store.Endpoint, bool) {
	if ref.Numeric {
		if ref.Index < 1 || ref.Index > len(endpoints) {
			return store.Endpoint{}, false
		}
		return endpoints[ref.Index-1], true
	}
	for _, ep := range endpoints {
		if strings.EqualFold(ep.Path, ref.Path) {
			return ep, true
		}
	}
	return store.Endpoint{}, false
}

// SpecialCommand runs a mode-independent command. CommandQuit is the router's job.
func (p *ExplorePipeline) SpecialCommand(ctx context.Context, userID string, cmd intent.SpecialCommand) (format.Reply, error) {
	switch cmd.Kind {
	case intent.CommandListFavorites:
		favs, err := p.prober.GetUserFavorites(ctx, userID)
		if err != nil {
			return format.Reply{}, fail(FailListFavorites, err)
		}
		return format.Favorites(favs), nil

	case intent.CommandShowHistory:
		entries, err := p.prober.GetUserHistory(ctx, userID)
		if err != nil {
			return format.Reply{}, fail(FailHistory, err)
		}
		return format.History(entries), nil

	case intent.CommandClearHistory:
		ok, err := p.prober.ClearUserHistory(ctx, userID)
		if err != nil {
			return format.Reply{}, fail(FailClearHistory, err)
		}
		return format.HistoryCleared(ok), nil

	case intent.CommandRemoveFavorite:
		favs, err := p.prober.GetUserFavorites(ctx, userID)
		if err != nil {
			return format.Reply{}, fail(FailRemoveFavorite, err)
		}
		if cmd.Index < 1 || cmd.Index > len(favs) {
			return format.FavoriteNotFound(cmd.Index, len(favs)), nil
		}
		target := favs[cmd.Index-1]
		ok, err := p.prober.RemoveFavorite(ctx, userID, target.ID)
		if err != nil {
			return format.Reply{}, fail(FailRemoveFavorite, err)
		}
		return format.FavoriteRemoved(target.Name, ok), nil

	case intent.CommandAddDomain:
		if err := p.prober.AddAllowedDomain(ctx, cmd.Domain); err != nil {
			return format.Reply{}, fail(FailAddDomain, err)
		}
		return format.DomainAdded(cmd.Domain), nil

	default:
		return format.UnknownCommand(), nil
	}
}
