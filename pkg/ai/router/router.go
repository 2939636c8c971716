// Package router is the conversation state machine. A user is in one of two
// states, derived from the durable session store on every turn:
//
//	NORMAL         no session; questions go to the retrieval pipeline
//	API_EXPLORING  a session names the API being explored
//
// Within a turn, matchers are tried in a fixed priority order:
// quit > special command > endpoint reference (API mode only) >
// URL exploration > API follow-ups > default (RAG or help).
package router

import (
	"context"
	"errors"
	"slices"

	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/pkg/ai/format"
	"rag-api-explorer-be/pkg/ai/intent"
	"rag-api-explorer-be/pkg/ai/pipeline"
	"rag-api-explorer-be/pkg/events"
	"rag-api-explorer-be/pkg/session"
	"rag-api-explorer-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type State string

const (
	StateNormal       State = "NORMAL"
	StateAPIExploring State = "API_EXPLORING"
)

// Answerer is the retrieval pipeline as seen by the router.
type Answerer interface {
	ProcessQuestion(ctx context.Context, question string) (*pipeline.RAGResult, error)
}

type Router struct {
	sessions *session.Manager
	explore  *pipeline.ExplorePipeline
	rag      Answerer
	events   events.Publisher
	logger   logger.ILogger
}

func NewRouter(
	sessions *session.Manager,
	explore *pipeline.ExplorePipeline,
	rag Answerer,
	publisher events.Publisher,
	log logger.ILogger,
) *Router {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Router{
		sessions: sessions,
		explore:  explore,
		rag:      rag,
		events:   publisher,
		logger:   log,
	}
}

// Execute runs one conversation turn. It never returns an error: every
// failure becomes a type "error" envelope.
func (r *Router) Execute(ctx context.Context, userID, message string) *store.ResponseEnvelope {
	ctx, span := otel.Tracer("router").Start(ctx, "router.execute")
	defer span.End()

	sess, err := r.sessions.Current(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return r.failure(ctx, userID, nil, pipeline.FailGeneric, err)
	}

	state := StateNormal
	if sess != nil {
		state = StateAPIExploring
	}
	span.SetAttributes(attribute.String("router.state", string(state)))

	r.logger.Debug("ROUTER", "Turn received", map[string]interface{}{
		"user_id": userID,
		"state":   state,
		"message": truncateLog(message, 50),
	})

	if state == StateAPIExploring {
		return r.apiTurn(ctx, sess, message)
	}
	return r.normalTurn(ctx, userID, message)
}

// normalTurn only answers the explicit quit command; looser exit phrases
// such as "mode normal" are ordinary questions outside API mode.
func (r *Router) normalTurn(ctx context.Context, userID, message string) *store.ResponseEnvelope {
	if intent.IsSpecialCommand(message) {
		cmd := intent.ClassifySpecialCommand(message)
		if cmd.Kind == intent.CommandQuit {
			return envelope(format.NotInAPIMode(), store.ResponseTypeAPI, nil)
		}
		reply, err := r.explore.SpecialCommand(ctx, userID, cmd)
		if err != nil {
			return r.failure(ctx, userID, nil, "", err)
		}
		return envelope(reply, store.ResponseTypeAPI, nil)
	}

	if apiURL, ok := intent.ExtractAPIURL(message); ok {
		return r.bootstrap(ctx, userID, apiURL)
	}

	return r.answer(ctx, userID, message)
}

// bootstrap enters API mode. The session is written before exploring and
// removed again when exploration fails.
func (r *Router) bootstrap(ctx context.Context, userID, apiURL string) *store.ResponseEnvelope {
	sess, err := r.sessions.Enter(ctx, userID, apiURL)
	if err != nil {
		return r.failure(ctx, userID, nil, pipeline.FailExplore, err)
	}

	info, reply, err := r.explore.Explore(ctx, userID, apiURL)
	if err != nil {
		if exitErr := r.sessions.Exit(ctx, userID, apiURL); exitErr != nil {
			r.logger.Error("ROUTER", "Failed to remove session after bootstrap failure", map[string]interface{}{
				"user_id": userID,
				"api_url": apiURL,
				"error":   exitErr.Error(),
			})
			return r.failure(ctx, userID, sess, "", err)
		}
		return r.failure(ctx, userID, nil, "", err)
	}

	r.publish(ctx, events.TypeAPIModeEntered, map[string]interface{}{
		"user_id":   userID,
		"api_url":   apiURL,
		"endpoints": len(info.Endpoints),
	})

	return envelope(reply, store.ResponseTypeAPI, sess)
}

func (r *Router) apiTurn(ctx context.Context, sess *store.Session, message string) *store.ResponseEnvelope {
	userID := sess.UserID

	if intent.WantsToQuitAPIMode(message) {
		if err := r.sessions.Exit(ctx, userID, sess.APIURL); err != nil {
			return r.failure(ctx, userID, sess, pipeline.FailGeneric, err)
		}
		r.publish(ctx, events.TypeAPIModeExited, map[string]interface{}{
			"user_id": userID,
			"api_url": sess.APIURL,
		})
		return envelope(format.Farewell(), store.ResponseTypeAPI, nil)
	}

	if intent.IsSpecialCommand(message) {
		reply, err := r.explore.SpecialCommand(ctx, userID, intent.ClassifySpecialCommand(message))
		if err != nil {
			return r.failure(ctx, userID, sess, "", err)
		}
		return envelope(reply, store.ResponseTypeAPI, sess)
	}

	if ref, ok := intent.ExtractEndpointReference(message); ok {
		return r.callEndpoint(ctx, sess, ref)
	}

	if apiURL, ok := intent.ExtractAPIURL(message); ok {
		return r.switchAPI(ctx, sess, apiURL)
	}

	switch intent.ClassifyFollowup(message) {
	case intent.FollowupDocumentation:
		reply, err := r.explore.Documentation(ctx, sess)
		if err != nil {
			return r.failure(ctx, userID, sess, "", err)
		}
		return envelope(reply, store.ResponseTypeAPI, sess)

	case intent.FollowupAddFavorite:
		reply, err := r.explore.AddFavorite(ctx, sess)
		if err != nil {
			return r.failure(ctx, userID, sess, "", err)
		}
		r.sessions.SetFavorite(userID, reply.FavoriteID)
		sess.FavoriteID = reply.FavoriteID
		return envelope(reply, store.ResponseTypeAPI, sess)

	case intent.FollowupListEndpoints:
		reply, err := r.explore.ListEndpoints(ctx, sess)
		if err != nil {
			return r.failure(ctx, userID, sess, "", err)
		}
		return envelope(reply, store.ResponseTypeAPI, sess)
	}

	return envelope(format.Help(sess.APIURL), store.ResponseTypeAPI, sess)
}

func (r *Router) callEndpoint(ctx context.Context, sess *store.Session, ref intent.EndpointReference) *store.ResponseEnvelope {
	out, err := r.explore.CallEndpoint(ctx, sess, ref)
	if err != nil {
		return r.failure(ctx, sess.UserID, sess, "", err)
	}
	if out.Endpoint == nil {
		return envelope(out.Reply, store.ResponseTypeAPI, sess)
	}

	path := out.Endpoint.Path
	r.sessions.SetCurrentEndpoint(sess.UserID, path)
	sess.CurrentEndpoint = path

	if !slices.Contains(sess.Meta.ExploredEndpoints, path) {
		meta := store.SessionMeta{ExploredEndpoints: append(slices.Clone(sess.Meta.ExploredEndpoints), path)}
		if err := r.sessions.Record(ctx, sess, meta); err != nil {
			r.logger.Warn("ROUTER", "Failed to record explored endpoint", map[string]interface{}{
				"user_id": sess.UserID,
				"path":    path,
				"error":   err.Error(),
			})
		} else {
			sess.Meta = meta
		}
	}

	r.publish(ctx, events.TypeAPIEndpointCalled, map[string]interface{}{
		"user_id":  sess.UserID,
		"api_url":  sess.APIURL,
		"method":   out.Endpoint.Method,
		"path":     path,
		"status":   out.Result.Status,
		"duration": out.Result.Duration,
	})

	return envelope(out.Reply, store.ResponseTypeAPI, sess)
}

// switchAPI moves an exploring user to another API. The current session is
// only replaced once the new API has been explored.
func (r *Router) switchAPI(ctx context.Context, sess *store.Session, apiURL string) *store.ResponseEnvelope {
	info, reply, err := r.explore.Explore(ctx, sess.UserID, apiURL)
	if err != nil {
		return r.failure(ctx, sess.UserID, sess, "", err)
	}
	if apiURL == sess.APIURL {
		return envelope(reply, store.ResponseTypeAPI, sess)
	}

	next, err := r.sessions.Enter(ctx, sess.UserID, apiURL)
	if err != nil {
		return r.failure(ctx, sess.UserID, sess, pipeline.FailExplore, err)
	}

	r.publish(ctx, events.TypeAPIModeExited, map[string]interface{}{
		"user_id": sess.UserID,
		"api_url": sess.APIURL,
	})
	r.publish(ctx, events.TypeAPIModeEntered, map[string]interface{}{
		"user_id":   sess.UserID,
		"api_url":   apiURL,
		"endpoints": len(info.Endpoints),
	})

	return envelope(reply, store.ResponseTypeAPI, next)
}

func (r *Router) answer(ctx context.Context, userID, question string) *store.ResponseEnvelope {
	res, err := r.rag.ProcessQuestion(ctx, question)
	if err != nil {
		return r.failure(ctx, userID, nil, pipeline.FailQuestion, err)
	}

	r.publish(ctx, events.TypeRAGAnswered, map[string]interface{}{
		"user_id": userID,
		"found":   res.Found,
		"sources": len(res.Sources),
	})

	return &store.ResponseEnvelope{
		Response:   res.Answer,
		Type:       store.ResponseTypeRAG,
		Mode:       store.ModeNormal,
		Sources:    res.Sources,
		Suggestion: res.Suggestion,
	}
}

// failure builds the error envelope. An empty prefix uses the one carried by
// a pipeline.StepError, if any. sess is the user's state after the failure.
func (r *Router) failure(ctx context.Context, userID string, sess *store.Session, prefix string, err error) *store.ResponseEnvelope {
	cause := err
	var step *pipeline.StepError
	if errors.As(err, &step) {
		if prefix == "" {
			prefix = step.Prefix
		}
		cause = step.Err
	}
	if prefix == "" {
		prefix = pipeline.FailGeneric
	}

	r.logger.Error("ROUTER", prefix, map[string]interface{}{
		"user_id": userID,
		"error":   err.Error(),
	})

	return envelope(format.Reply{Response: format.Failure(prefix, cause)}, store.ResponseTypeError, sess)
}

func (r *Router) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if err := r.events.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		r.logger.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func envelope(reply format.Reply, responseType string, sess *store.Session) *store.ResponseEnvelope {
	mode := store.ModeNormal
	if sess != nil {
		mode = store.ModeAPI
	}
	return &store.ResponseEnvelope{
		Response:       reply.Response,
		Type:           responseType,
		Mode:           mode,
		CurrentContext: sess.Snapshot(),
		Data:           reply.Data,
		Favorites:      reply.Favorites,
		History:        reply.History,
		FavoriteID:     reply.FavoriteID,
	}
}

// truncateLog truncates string for logging
func truncateLog(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
