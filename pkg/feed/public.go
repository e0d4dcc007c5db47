package feed

import (
	"context"

	"bskyarchive/pkg/bluesky"
	"bskyarchive/pkg/logger"
)

// PublicSource reads the author feed through the public, unauthenticated
// API. This is the stable choice for CI builds: no secret, no session state.
type PublicSource struct {
	client *bluesky.Client
	base   string
	handle string
	logger logger.Logger
}

// NewPublicSource creates a public feed source for the given handle
func NewPublicSource(client *bluesky.Client, base, handle string, log logger.Logger) *PublicSource {
	if log == nil {
		log = logger.GetLogger()
	}
	return &PublicSource{
		client: client,
		base:   base,
		handle: handle,
		logger: log,
	}
}

// Resolve turns the handle into a DID. An upstream failure aborts the run;
// a successful response with an empty DID falls back to the raw handle,
// which getAuthorFeed accepts as an actor too.
func (s *PublicSource) Resolve(ctx context.Context) (string, error) {
	did, err := s.client.ResolveHandle(ctx, s.base, s.handle)
	if err != nil {
		return "", err
	}

	if did == "" {
		s.logger.WarnWithFields("handle did not resolve, using it as actor directly", map[string]interface{}{
			"handle": s.handle,
		})
		return s.handle, nil
	}

	s.logger.DebugWithFields("handle resolved", map[string]interface{}{
		"handle": s.handle,
		"did":    did,
	})
	return did, nil
}

// Page fetches one page of the author feed
func (s *PublicSource) Page(ctx context.Context, actor string, limit int, cursor string) (*bluesky.FeedResponse, error) {
	return s.client.AuthorFeed(ctx, s.base, actor, limit, cursor)
}
