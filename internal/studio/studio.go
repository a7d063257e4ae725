package studio

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/service"
	"github.com/fleveque/ficha-service/internal/templates"
)

// Studio holds sessions by id. It is safe for concurrent use.
type Studio struct {
	renderer *service.Renderer
	decoder  service.Decoder
	logger   *zap.Logger
	defaults model.ExportSettings

	mu       sync.RWMutex
	sessions map[string]*Session
}

// New creates an empty Studio.
func New(renderer *service.Renderer, dec service.Decoder, logger *zap.Logger) *Studio {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Studio{
		renderer: renderer,
		decoder:  dec,
		logger:   logger,
		defaults: model.DefaultExportSettings(),
		sessions: make(map[string]*Session),
	}
}

// SetDefaultSettings changes the export settings new sessions start with.
func (st *Studio) SetDefaultSettings(settings model.ExportSettings) {
	st.mu.Lock()
	st.defaults = settings
	st.mu.Unlock()
}

// Create opens a new session for template k.
func (st *Studio) Create(k templates.Kind) (*Session, error) {
	if _, err := templates.Parse(string(k)); err != nil {
		return nil, err
	}
	st.mu.Lock()
	s := newSession(uuid.NewString(), k, st.renderer, st.decoder, st.defaults)
	st.sessions[s.ID] = s
	st.mu.Unlock()

	st.logger.Info("session created", zap.String("session", s.ID), zap.String("template", string(k)))
	return s, nil
}

// Get returns the session with id.
func (st *Studio) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return s, nil
}

// Delete closes a session. Unknown ids are ignored.
func (st *Studio) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of open sessions.
func (st *Studio) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Prune closes sessions idle for longer than ttl and returns how many.
func (st *Studio) Prune(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.lastUsed().Before(cutoff) {
			delete(st.sessions, id)
			n++
		}
	}
	if n > 0 {
		st.logger.Info("pruned idle sessions", zap.Int("count", n))
	}
	return n
}
