package service

import (
	"context"
	"strings"
	"sync"

	"rag-api-explorer-be/internal/dto"
	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/pkg/apperror"
	"rag-api-explorer-be/pkg/events"
	"rag-api-explorer-be/pkg/store"
)

// Conversation runs a single turn for a user.
type Conversation interface {
	Execute(ctx context.Context, userID, message string) *store.ResponseEnvelope
}

// ConversationSessions is the part of the session manager the service needs.
type ConversationSessions interface {
	Current(ctx context.Context, userID string) (*store.Session, error)
	Exit(ctx context.Context, userID, apiURL string) error
}

type IChatService interface {
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*store.ResponseEnvelope, error)
	GetContext(ctx context.Context, userId string) (*dto.GetContextResponse, error)
	ClearContext(ctx context.Context, userId string) (*dto.ClearContextResponse, error)
}

type chatService struct {
	conversation Conversation
	sessions     ConversationSessions
	events       events.Publisher
	logger       logger.ILogger

	// turns of the same user never interleave; entries live only while held or awaited
	locksMu sync.Mutex
	locks   map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewChatService(
	conversation Conversation,
	sessions ConversationSessions,
	publisher events.Publisher,
	log logger.ILogger,
) IChatService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &chatService{
		conversation: conversation,
		sessions:     sessions,
		events:       publisher,
		logger:       log,
		locks:        make(map[string]*userLock),
	}
}

func (s *chatService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*store.ResponseEnvelope, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apperror.New(apperror.ErrValidation, "message is required")
	}
	userId := normalizeUserId(req.UserId)

	unlock := s.lock(userId)
	defer unlock()

	s.logger.Debug("CHAT", "Turn received", map[string]interface{}{
		"user_id": userId,
		"length":  len(message),
	})

	reply := s.conversation.Execute(ctx, userId, message)

	s.logger.Info("CHAT", "Turn completed", map[string]interface{}{
		"user_id": userId,
		"type":    reply.Type,
		"mode":    reply.Mode,
	})
	return reply, nil
}

func (s *chatService) GetContext(ctx context.Context, userId string) (*dto.GetContextResponse, error) {
	userId = normalizeUserId(userId)

	sess, err := s.sessions.Current(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := &dto.GetContextResponse{UserId: userId, Mode: store.ModeNormal}
	if sess != nil {
		res.Mode = store.ModeAPI
		res.Context = sess.Snapshot()
	}
	return res, nil
}

// ClearContext leaves API mode for the user. Clearing a user already in
// normal mode is not an error.
func (s *chatService) ClearContext(ctx context.Context, userId string) (*dto.ClearContextResponse, error) {
	userId = normalizeUserId(userId)

	unlock := s.lock(userId)
	defer unlock()

	sess, err := s.sessions.Current(ctx, userId)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return &dto.ClearContextResponse{UserId: userId, Cleared: false}, nil
	}

	if err := s.sessions.Exit(ctx, userId, sess.APIURL); err != nil {
		return nil, err
	}

	err = s.events.Publish(ctx, events.NewEvent(events.TypeAPIModeExited, map[string]interface{}{
		"user_id": userId,
		"api_url": sess.APIURL,
		"reason":  "cleared",
	}))
	if err != nil {
		s.logger.Warn("CHAT", "Failed to publish event", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
	}

	return &dto.ClearContextResponse{UserId: userId, Cleared: true}, nil
}

func (s *chatService) lock(userId string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[userId]
	if !ok {
		l = &userLock{}
		s.locks[userId] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userId)
		}
		s.locksMu.Unlock()
	}
}

func normalizeUserId(userId string) string {
	userId = strings.TrimSpace(userId)
	if userId == "" {
		return dto.DefaultUserId
	}
	return userId
}
