package chat

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/daily-hug/internal/model/chat"
	"github.com/zhouzirui/daily-hug/internal/model/persona"
	"github.com/zhouzirui/daily-hug/internal/service/conversation"
)

var ErrSessionNotFound = errors.New("session not found")

type hostedSession struct {
	session    chat.Session
	controller *conversation.Controller
}

// Service hosts conversations on behalf of clients that cannot run their own
// controller, such as browsers.
type Service struct {
	endpoint conversation.Endpoint
	timeout  time.Duration
	options  []conversation.Option

	mu       sync.RWMutex
	sessions map[string]*hostedSession
}

// NewService bootstraps the in-memory session registry. Every controller it
// creates talks to endpoint and is built with opts. Greeting and exchange
// calls are bounded by timeout; zero means unbounded.
func NewService(endpoint conversation.Endpoint, timeout time.Duration, opts ...conversation.Option) *Service {
	return &Service{
		endpoint: endpoint,
		timeout:  timeout,
		options:  opts,
		sessions: make(map[string]*hostedSession),
	}
}

// CreateSession provisions a session for params and runs its greeting before
// returning. A failed greeting still yields a usable, empty session.
func (s *Service) CreateSession(ctx context.Context, params persona.Params) (chat.Session, *conversation.Controller, error) {
	if err := ctx.Err(); err != nil {
		return chat.Session{}, nil, err
	}

	session := chat.Session{
		ID:          uuid.NewString(),
		UserName:    params.UserName(),
		PersonaName: params.PersonaName(),
		Traits:      params.Traits(),
		CreatedAt:   time.Now().UTC(),
	}
	controller := conversation.NewController(params, s.endpoint, s.options...)

	s.mu.Lock()
	s.sessions[session.ID] = &hostedSession{session: session, controller: controller}
	s.mu.Unlock()

	log.Printf("[session] created session=%s user=%s persona=%s", session.ID, session.UserName, session.PersonaName)

	greetCtx, cancel := s.sessionContext(ctx)
	defer cancel()
	controller.Initialize(greetCtx)
	return session, controller, nil
}

// Submit sends text as the next message of sessionID. The exchange runs on a
// context owned by the session: a caller that goes away does not abort it.
func (s *Service) Submit(ctx context.Context, sessionID, text string) error {
	controller, err := s.Controller(sessionID)
	if err != nil {
		return err
	}

	exchangeCtx, cancel := s.sessionContext(ctx)
	defer cancel()
	return controller.Submit(exchangeCtx, text)
}

// sessionContext keeps the caller's values but drops its cancellation.
func (s *Service) sessionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		return context.WithTimeout(detached, s.timeout)
	}
	return context.WithCancel(detached)
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hosted, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return hosted.session, nil
}

// Controller returns the controller driving sessionID.
func (s *Service) Controller(sessionID string) (*conversation.Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hosted, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return hosted.controller, nil
}

// EndSession forgets sessionID. In-flight exchanges finish on their own.
func (s *Service) EndSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	log.Printf("[session] ended session=%s", sessionID)
	return nil
}

// Count reports how many sessions are live.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
