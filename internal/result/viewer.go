package result

import (
	"context"
	"encoding/json"
	"errors"

	"smartrecruiter/internal/gateway"
	"smartrecruiter/internal/model"
	"smartrecruiter/internal/repository"
	"smartrecruiter/internal/session"
)

// Visitor-store keys for the last successfully fetched analysis payload.
// Writes always go to CacheKey; reads also try the legacy key older clients
// wrote under.
const (
	CacheKey       = "analysisResult"
	legacyCacheKey = "cvAnalysisResult"
)

// ErrLoginRequired signals the caller to redirect to login: either no session
// exists or the backend rejected the credential and the session was cleared.
var ErrLoginRequired = errors.New("login required")

// Source records which step of the fallback chain produced a result.
type Source string

const (
	SourceBackend Source = "backend"
	SourceCache   Source = "cache"
	SourceNone    Source = "none"
)

// Viewer obtains the analysis record for the current user, tolerating both a
// flaky backend (cache fallback) and an expired credential (session clear).
type Viewer struct {
	backend gateway.AnalysisGateway
	store   *session.Store
	repo    repository.VisitorRepository
}

// NewViewer constructs a Viewer.
func NewViewer(backend gateway.AnalysisGateway, store *session.Store, repo repository.VisitorRepository) *Viewer {
	return &Viewer{backend: backend, store: store, repo: repo}
}

// Load applies the retrieval fallback chain top to bottom, stopping at the
// first success:
//
//  1. a specific record by id, when addressed
//  2. the most recent record for the authenticated user
//  3. the last cached payload in the visitor store
//  4. nothing — the caller renders the empty state
//
// A 401 during 1–2 clears the session and returns ErrLoginRequired; any other
// fetch failure falls through to the cache.
func (v *Viewer) Load(ctx context.Context, visitorID string, sess *model.Session, id string) (*model.AnalysisResult, Source, error) {
	if !sess.Present() {
		return nil, SourceNone, ErrLoginRequired
	}

	var raw json.RawMessage
	var err error
	if id != "" {
		raw, err = v.backend.FetchAnalysis(ctx, sess.Token, id)
	} else {
		raw, err = v.backend.FetchLatest(ctx, sess.Token)
	}

	if err == nil {
		// Each successful fetch supersedes the cached payload. Caching is
		// best-effort: a write failure must not break the happy path.
		_ = v.repo.Set(ctx, visitorID, CacheKey, string(raw))
		return Normalize(raw), SourceBackend, nil
	}

	if errors.Is(err, gateway.ErrUnauthorized) {
		_ = v.store.Clear(ctx, visitorID)
		return nil, SourceNone, ErrLoginRequired
	}

	for _, key := range []string{CacheKey, legacyCacheKey} {
		if cached, cacheErr := v.repo.Get(ctx, visitorID, key); cacheErr == nil {
			return Normalize(json.RawMessage(cached)), SourceCache, nil
		}
	}

	return nil, SourceNone, nil
}
