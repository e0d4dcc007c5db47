package bluesky

import "encoding/json"

// PostRecordType is the canonical record type of an original post. Feed
// entries whose embedded record declares anything else (likes, generator
// records) are not posts.
const PostRecordType = "app.bsky.feed.post"

// FeedItem is one entry of an author feed page. An item may wrap a post, a
// repost marker, or a reply; Reason and Reply stay raw because only their
// presence matters to classification.
type FeedItem struct {
	Post   *FeedPost       `json:"post"`
	Reply  json.RawMessage `json:"reply,omitempty"`
	Reason json.RawMessage `json:"reason,omitempty"`
}

// HasReason reports whether the item carries a repost/boost annotation
func (i FeedItem) HasReason() bool {
	return rawPresent(i.Reason)
}

// HasReply reports whether the item carries a non-null reply context
func (i FeedItem) HasReply() bool {
	return rawPresent(i.Reply)
}

// rawPresent treats absent and JSON null the same way
func rawPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// FeedPost is the embedded post payload of a feed item
type FeedPost struct {
	URI    string `json:"uri"` // at://{did}/{collection}/{rkey}
	CID    string `json:"cid"`
	Record Record `json:"record"`
}

// Record is the post record itself
type Record struct {
	Type      string `json:"$type"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// FeedResponse is one page of app.bsky.feed.getAuthorFeed. An empty cursor
// means the feed is exhausted.
type FeedResponse struct {
	Feed   []FeedItem `json:"feed"`
	Cursor string     `json:"cursor,omitempty"`
}

// ResolveHandleResponse is the result of com.atproto.identity.resolveHandle
type ResolveHandleResponse struct {
	DID string `json:"did"`
}

// SessionResponse is the result of com.atproto.server.createSession
type SessionResponse struct {
	DID        string `json:"did"`
	Handle     string `json:"handle"`
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
}

// APIError is the JSON error body ATProto endpoints return on failure
type APIError struct {
	Name    string `json:"error"`
	Message string `json:"message"`
}
