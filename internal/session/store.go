package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"smartrecruiter/internal/logging"
	"smartrecruiter/internal/model"
	"smartrecruiter/internal/repository"
)

// Visitor-store keys owned by the session store. Both must be present for a
// session to be considered valid; a lone token or a lone identity record is
// corrupt and gets cleared.
const (
	keyToken = "token"
	keyUser  = "user"
)

// ErrPartialSession is returned by Commit for a session missing its token or identity.
var ErrPartialSession = errors.New("session must carry both a token and an identity")

// Store is the single source of truth for "who is logged in", per visitor.
// It caches sessions in memory for synchronous reads, persists them through a
// VisitorRepository, and broadcasts login/logout events to subscribers.
type Store struct {
	repo repository.VisitorRepository
	log  logging.Logger

	mu    sync.RWMutex
	cache map[string]*model.Session

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewStore constructs a session store backed by the given repository.
// A nil logger disables diagnostics.
func NewStore(repo repository.VisitorRepository, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop{}
	}
	return &Store{
		repo:  repo,
		log:   log,
		cache: make(map[string]*model.Session),
		subs:  make(map[int]chan Event),
	}
}

// Initialize loads the persisted session for a visitor into the in-memory
// cache. Malformed or partial records are cleared silently and yield an
// absent session; corruption is never surfaced to the caller. Repeated calls
// with the same corrupt input are idempotent.
func (s *Store) Initialize(ctx context.Context, visitorID string) *model.Session {
	token, tokenErr := s.repo.Get(ctx, visitorID, keyToken)
	rawUser, userErr := s.repo.Get(ctx, visitorID, keyUser)

	if errors.Is(tokenErr, repository.ErrKeyNotFound) && errors.Is(userErr, repository.ErrKeyNotFound) {
		s.forget(visitorID)
		return nil
	}

	// Transient storage failures are not corruption: report absent without
	// destroying whatever is persisted.
	if (tokenErr != nil && !errors.Is(tokenErr, repository.ErrKeyNotFound)) ||
		(userErr != nil && !errors.Is(userErr, repository.ErrKeyNotFound)) {
		s.log.Log("session_load_failed", map[string]any{
			"visitor_id": visitorID,
			"token_err":  errString(tokenErr),
			"user_err":   errString(userErr),
		})
		s.forget(visitorID)
		return nil
	}

	sess, ok := decodeStored(token, rawUser, tokenErr, userErr)
	if !ok {
		// Partial or unparsable record: self-heal by clearing both keys.
		s.log.Log("session_corrupt_cleared", map[string]any{"visitor_id": visitorID})
		if err := s.repo.DeleteAll(ctx, visitorID); err != nil {
			s.log.Log("session_clear_failed", map[string]any{
				"visitor_id": visitorID,
				"error":      err.Error(),
			})
		}
		s.forget(visitorID)
		return nil
	}

	s.mu.Lock()
	s.cache[visitorID] = sess
	s.mu.Unlock()
	return sess
}

// Current returns the cached session for the visitor, or nil when absent.
// It never touches storage; callers that may race a fresh process should
// Initialize first.
func (s *Store) Current(visitorID string) *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[visitorID]
}

// Commit persists the session and notifies subscribers. A commit followed by
// Current on the same flow always observes the committed value.
func (s *Store) Commit(ctx context.Context, visitorID string, sess *model.Session) error {
	if !sess.Present() {
		return ErrPartialSession
	}

	rawUser, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.repo.Set(ctx, visitorID, keyToken, sess.Token); err != nil {
		return err
	}
	if err := s.repo.Set(ctx, visitorID, keyUser, string(rawUser)); err != nil {
		// Never leave a token without an identity behind.
		_ = s.repo.Delete(ctx, visitorID, keyToken)
		return err
	}

	s.mu.Lock()
	s.cache[visitorID] = sess
	s.mu.Unlock()

	s.broadcast(Event{Kind: EventLogin, VisitorID: visitorID})
	return nil
}

// Clear removes all persisted keys for the visitor, drops the cached session,
// and notifies subscribers so session-derived state is re-derived everywhere.
func (s *Store) Clear(ctx context.Context, visitorID string) error {
	err := s.repo.DeleteAll(ctx, visitorID)
	s.forget(visitorID)
	s.broadcast(Event{Kind: EventLogout, VisitorID: visitorID})
	return err
}

func (s *Store) forget(visitorID string) {
	s.mu.Lock()
	delete(s.cache, visitorID)
	s.mu.Unlock()
}

// decodeStored turns the two persisted keys into a session, reporting false
// for any partial or unparsable combination.
func decodeStored(token, rawUser string, tokenErr, userErr error) (*model.Session, bool) {
	if tokenErr != nil || userErr != nil {
		return nil, false
	}
	if token == "" || rawUser == "" || rawUser == "undefined" {
		return nil, false
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(rawUser), &sess); err != nil {
		return nil, false
	}
	sess.Token = token
	if !sess.Present() {
		return nil, false
	}
	return &sess, true
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
