package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rag-api-explorer-be/internal/dto"
	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/pkg/apperror"
	"rag-api-explorer-be/pkg/events"
	"rag-api-explorer-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConversation struct {
	mu       sync.Mutex
	calls    []string
	active   map[string]*int32
	overlaps int32
	delay    time.Duration
}

func newStubConversation() *stubConversation {
	return &stubConversation{active: map[string]*int32{}}
}

func (c *stubConversation) counter(userID string) *int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.active[userID]
	if !ok {
		n = new(int32)
		c.active[userID] = n
	}
	return n
}

func (c *stubConversation) Execute(_ context.Context, userID, message string) *store.ResponseEnvelope {
	n := c.counter(userID)
	if atomic.AddInt32(n, 1) > 1 {
		atomic.AddInt32(&c.overlaps, 1)
	}
	time.Sleep(c.delay)
	atomic.AddInt32(n, -1)

	c.mu.Lock()
	c.calls = append(c.calls, userID+":"+message)
	c.mu.Unlock()

	return &store.ResponseEnvelope{Response: "ok", Type: store.ResponseTypeRAG, Mode: store.ModeNormal}
}

type stubSessions struct {
	sessions map[string]*store.Session
	failGet  error
	exits    []string
}

func (s *stubSessions) Current(_ context.Context, userID string) (*store.Session, error) {
	if s.failGet != nil {
		return nil, s.failGet
	}
	return s.sessions[userID].Clone(), nil
}

func (s *stubSessions) Exit(_ context.Context, userID, apiURL string) error {
	s.exits = append(s.exits, userID+"@"+apiURL)
	delete(s.sessions, userID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.EventType())
	}
	return out
}

func newChatHarness() (IChatService, *stubConversation, *stubSessions, *recordingPublisher) {
	conv := newStubConversation()
	sessions := &stubSessions{sessions: map[string]*store.Session{}}
	pub := &recordingPublisher{}
	return NewChatService(conv, sessions, pub, logger.NewNopLogger()), conv, sessions, pub
}

func TestSendMessageDefaultsUserId(t *testing.T) {
	svc, conv, _, _ := newChatHarness()

	reply, err := svc.SendMessage(context.Background(), &dto.SendMessageRequest{Message: "  bonjour  "})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Response)
	assert.Equal(t, []string{"default:bonjour"}, conv.calls)
}

func TestSendMessageRejectsBlank(t *testing.T) {
	svc, conv, _, _ := newChatHarness()

	_, err := svc.SendMessage(context.Background(), &dto.SendMessageRequest{Message: "   ", UserId: "u1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Empty(t, conv.calls)
}

func TestTurnsOfOneUserAreSerialized(t *testing.T) {
	svc, conv, _, _ := newChatHarness()
	conv.delay = 5 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.SendMessage(context.Background(), &dto.SendMessageRequest{Message: "salut", UserId: "u1"})
		}()
	}
	wg.Wait()

	assert.Len(t, conv.calls, 8)
	assert.Zero(t, atomic.LoadInt32(&conv.overlaps))
}

func (s *chatService) heldLocks() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

func TestUserLocksAreReleased(t *testing.T) {
	svc, conv, _, _ := newChatHarness()
	conv.delay = time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userId := fmt.Sprintf("user-%d", i%50)
			_, _ = svc.SendMessage(context.Background(), &dto.SendMessageRequest{Message: "salut", UserId: userId})
			_, _ = svc.ClearContext(context.Background(), userId)
		}(i)
	}
	wg.Wait()

	assert.Len(t, conv.calls, 200)
	assert.Zero(t, atomic.LoadInt32(&conv.overlaps))
	assert.Zero(t, svc.(*chatService).heldLocks())
}

func TestGetContext(t *testing.T) {
	svc, _, sessions, _ := newChatHarness()
	entered := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sessions.sessions["u1"] = &store.Session{UserID: "u1", APIURL: "https://api.github.com/", EnteredAt: entered}

	res, err := svc.GetContext(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, store.ModeAPI, res.Mode)
	require.NotNil(t, res.Context)
	assert.Equal(t, "https://api.github.com/", res.Context.APIURL)
	assert.Equal(t, entered, res.Context.ExplorationTime)

	res, err = svc.GetContext(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, store.ModeNormal, res.Mode)
	assert.Nil(t, res.Context)
}

func TestGetContextStoreFailure(t *testing.T) {
	svc, _, sessions, _ := newChatHarness()
	sessions.failGet = apperror.Wrap(apperror.ErrSessionStore, errors.New("connection reset"))

	_, err := svc.GetContext(context.Background(), "u1")
	assert.ErrorIs(t, err, apperror.ErrSessionStore)
}

func TestClearContext(t *testing.T) {
	svc, _, sessions, pub := newChatHarness()
	sessions.sessions["u1"] = &store.Session{UserID: "u1", APIURL: "https://api.github.com/"}

	res, err := svc.ClearContext(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, res.Cleared)
	assert.Equal(t, []string{"u1@https://api.github.com/"}, sessions.exits)
	assert.Equal(t, []string{events.TypeAPIModeExited}, pub.types())

	res, err = svc.ClearContext(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, res.Cleared)
	assert.Len(t, sessions.exits, 1)
}
