package bluesky

import (
	"fmt"
	"net/url"
)

const (
	// DefaultPublicBase is the unauthenticated xrpc host
	DefaultPublicBase = "https://public.api.bsky.app/xrpc"

	// DefaultSessionBase is the authenticated xrpc host
	DefaultSessionBase = "https://bsky.social/xrpc"

	// ResolveHandleEndpoint resolves a handle into a DID
	ResolveHandleEndpoint = "/com.atproto.identity.resolveHandle"

	// AuthorFeedEndpoint pages through an author's feed
	AuthorFeedEndpoint = "/app.bsky.feed.getAuthorFeed"

	// CreateSessionEndpoint exchanges identifier+password for a bearer token
	CreateSessionEndpoint = "/com.atproto.server.createSession"

	// MaxFeedLimit is the largest page size getAuthorFeed accepts
	MaxFeedLimit = 100
)

// ResolveHandleURL constructs the URL resolving a handle to its DID
func ResolveHandleURL(base, handle string) string {
	params := url.Values{}
	params.Set("handle", handle)

	return fmt.Sprintf("%s%s?%s", base, ResolveHandleEndpoint, params.Encode())
}

// AuthorFeedURL constructs the URL for one author feed page. An empty cursor
// requests the first page.
func AuthorFeedURL(base, actor string, limit int, cursor string) string {
	if limit <= 0 || limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	params := url.Values{}
	params.Set("actor", actor)
	params.Set("limit", fmt.Sprintf("%d", limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	return fmt.Sprintf("%s%s?%s", base, AuthorFeedEndpoint, params.Encode())
}

// CreateSessionURL constructs the session creation URL
func CreateSessionURL(base string) string {
	return base + CreateSessionEndpoint
}
