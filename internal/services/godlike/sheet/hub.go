package sheet

import (
	"sync"
	"time"

	apperrors "github.com/louisbranch/godlike/internal/platform/errors"
	"github.com/louisbranch/godlike/internal/platform/telemetry/metrics"
	"github.com/louisbranch/godlike/internal/platform/timeouts"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

// Hub tracks open sheet sessions by id.
type Hub struct {
	repo    Repository
	timeout time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
	newID   func() string

	mu       sync.Mutex
	sessions map[string]*Session
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithTimeout sets the inactivity timeout of new sessions.
func WithTimeout(timeout time.Duration) HubOption {
	return func(h *Hub) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// WithMetrics sets the collectors tracking open sessions.
func WithMetrics(m *metrics.Metrics) HubOption {
	return func(h *Hub) {
		h.metrics = m
	}
}

// WithLogger sets the hub logger.
func WithLogger(logger zerolog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// NewHub creates an empty hub whose sessions read and write through repo.
func NewHub(repo Repository, opts ...HubOption) *Hub {
	h := &Hub{
		repo:     repo,
		timeout:  timeouts.SheetSession,
		logger:   zerolog.Nop(),
		newID:    func() string { return xid.New().String() },
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Open starts a sheet for a character in the Idle state.
func (h *Hub) Open(characterID int64, nickname string) *Session {
	id := h.newID()
	s := newSession(id, characterID, nickname, h.repo, h.timeout, h.remove)

	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()
	go s.run()

	h.metrics.SheetOpened()
	h.logger.Debug().Str("session_id", id).Int64("character_id", characterID).Msg("sheet opened")
	return s
}

// Get returns an open session, or SESSION_EXPIRED when it has closed or
// never existed.
func (h *Hub) Get(id string) (*Session, error) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	h.mu.Unlock()
	if !ok {
		return nil, apperrors.New(apperrors.CodeSessionExpired, "sheet session not found")
	}
	return s, nil
}

// Len returns the number of open sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close ends every open session.
func (h *Hub) Close() {
	h.mu.Lock()
	open := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		open = append(open, s)
	}
	h.mu.Unlock()

	for _, s := range open {
		s.Close()
	}
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s.id]
	delete(h.sessions, s.id)
	h.mu.Unlock()

	if ok {
		h.metrics.SheetClosed()
		h.logger.Debug().Str("session_id", s.id).Msg("sheet closed")
	}
}
