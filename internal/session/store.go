package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/domain"
)

// ErrNotFound is returned by a Persister when nothing is stored.
var ErrNotFound = errors.New("session: nothing persisted")

// Persister stores the serialized session somewhere that outlives the process.
type Persister interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Remove(ctx context.Context) error
}

// Provider is the session capability handed to the rest of the client.
type Provider interface {
	Current() (domain.Session, bool)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}

// Store holds the single current session. A nil persister keeps it in memory only.
type Store struct {
	mu        sync.RWMutex
	current   *domain.Session
	persister Persister
	logger    *zap.Logger
	now       func() time.Time
}

// NewStore builds an empty store; call Load to pick up a persisted session.
func NewStore(persister Persister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{persister: persister, logger: logger, now: time.Now}
}

// Load reads the persisted session and makes it current. Expired or unreadable
// sessions are discarded and removed from storage.
func (s *Store) Load(ctx context.Context) (domain.Session, bool, error) {
	if s.persister == nil {
		current, ok := s.Current()
		return current, ok, nil
	}

	data, err := s.persister.Read(ctx)
	if errors.Is(err, ErrNotFound) {
		s.setCurrent(nil)
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("read session: %w", err)
	}

	var loaded domain.Session
	if err := json.Unmarshal(data, &loaded); err != nil || !loaded.Authenticated() {
		s.logger.Warn("discarding unreadable session")
		s.setCurrent(nil)
		return domain.Session{}, false, s.persister.Remove(ctx)
	}

	if expiresAt, ok := CredentialExpiry(loaded.Credential); ok && !s.now().Before(expiresAt) {
		s.logger.Info("discarding expired session",
			zap.Int64("user_id", loaded.UserID),
			zap.Time("expired_at", expiresAt))
		s.setCurrent(nil)
		return domain.Session{}, false, s.persister.Remove(ctx)
	}

	s.setCurrent(&loaded)
	return loaded, true, nil
}

// Save persists session and replaces whatever was current.
func (s *Store) Save(ctx context.Context, session domain.Session) error {
	if !session.Authenticated() {
		return fmt.Errorf("session: credential required")
	}
	if s.persister != nil {
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		if err := s.persister.Write(ctx, data); err != nil {
			return fmt.Errorf("write session: %w", err)
		}
	}
	s.setCurrent(&session)
	return nil
}

// Clear drops the current session and removes the persisted copy.
func (s *Store) Clear(ctx context.Context) error {
	s.setCurrent(nil)
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Remove(ctx); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Current returns the live session, if any.
func (s *Store) Current() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Session{}, false
	}
	return *s.current, true
}

func (s *Store) setCurrent(session *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session == nil {
		s.current = nil
		return
	}
	copied := *session
	s.current = &copied
}
