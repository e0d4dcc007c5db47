package feed

import (
	"context"
	"time"

	"bskyarchive/pkg/auth"
	"bskyarchive/pkg/bluesky"
	"bskyarchive/pkg/errors"
	"bskyarchive/pkg/logger"
)

// SessionSource reads the author feed with a bearer token obtained from
// createSession. The token is cached in a local file and reused across runs;
// when the service rejects it, the cache is silently replaced with a fresh
// session and the rejected request is repeated once.
type SessionSource struct {
	client     *bluesky.Client
	base       string
	identifier string
	password   string
	cache      *auth.SessionCache
	logger     logger.Logger

	session *auth.Session
}

// NewSessionSource creates an authenticated feed source
func NewSessionSource(client *bluesky.Client, base, identifier, password string, cache *auth.SessionCache, log logger.Logger) *SessionSource {
	if log == nil {
		log = logger.GetLogger()
	}
	return &SessionSource{
		client:     client,
		base:       base,
		identifier: identifier,
		password:   password,
		cache:      cache,
		logger:     log,
	}
}

// Resolve establishes a session and returns its DID as the actor
func (s *SessionSource) Resolve(ctx context.Context) (string, error) {
	if err := s.ensureSession(ctx); err != nil {
		return "", err
	}
	return s.session.DID, nil
}

// Page fetches one page of the author feed. An auth rejection invalidates
// the cached session; one fresh session is created and the page re-requested
// before the error is allowed to surface.
func (s *SessionSource) Page(ctx context.Context, actor string, limit int, cursor string) (*bluesky.FeedResponse, error) {
	if err := s.ensureSession(ctx); err != nil {
		return nil, err
	}

	page, err := s.client.AuthorFeed(ctx, s.base, actor, limit, cursor)
	if err == nil {
		return page, nil
	}
	if errors.KindOf(err) != errors.KindAuth {
		return nil, err
	}

	s.logger.WarnWithFields("cached session rejected, creating a new one", map[string]interface{}{
		"identifier": s.identifier,
	})

	if err := s.renewSession(ctx); err != nil {
		return nil, err
	}
	return s.client.AuthorFeed(ctx, s.base, actor, limit, cursor)
}

// ensureSession loads the cached session or creates a fresh one
func (s *SessionSource) ensureSession(ctx context.Context) error {
	if s.session != nil {
		return nil
	}

	cached, err := s.cache.Load()
	if err != nil {
		return err
	}
	if cached != nil {
		s.logger.DebugWithFields("using cached session", map[string]interface{}{
			"did": cached.DID,
		})
		s.session = cached
		s.client.SetBearerToken(cached.AccessJwt)
		return nil
	}

	return s.renewSession(ctx)
}

// renewSession creates a new session and replaces the cache
func (s *SessionSource) renewSession(ctx context.Context) error {
	// createSession must not carry a stale bearer token.
	s.client.ClearBearerToken()

	response, err := s.client.CreateSession(ctx, s.base, s.identifier, s.password)
	if err != nil {
		return err
	}

	session := &auth.Session{
		DID:       response.DID,
		Handle:    response.Handle,
		AccessJwt: response.AccessJwt,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.cache.Save(session); err != nil {
		// A failed cache write costs the next run a createSession, nothing
		// else; the current run continues with the in-memory session.
		s.logger.WithError(err).Warn("failed to cache session")
	}

	s.session = session
	s.client.SetBearerToken(session.AccessJwt)

	s.logger.InfoWithFields("session created", map[string]interface{}{
		"did":    session.DID,
		"handle": session.Handle,
	})
	return nil
}
