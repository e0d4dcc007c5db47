// Package feed fetches the complete author feed from the ATProto API. The
// public and authenticated access paths implement a single Source interface;
// the pager on top of either is identical.
package feed

import (
	"context"

	"bskyarchive/pkg/bluesky"
)

// Source is one way of reading an author feed. Implementations differ only
// in authentication: PublicSource talks to the unauthenticated API,
// SessionSource holds a bearer token from createSession.
type Source interface {
	// Resolve returns the actor identifier used for feed paging.
	Resolve(ctx context.Context) (string, error)

	// Page fetches one feed page. An empty cursor requests the first page.
	Page(ctx context.Context, actor string, limit int, cursor string) (*bluesky.FeedResponse, error)
}
