// Package archive turns raw feed items into the normalized, month-grouped
// form the renderer consumes. Classification and grouping are pure; all
// network and filesystem work lives elsewhere.
package archive

import (
	"fmt"
	"html"
	"strings"
	"time"

	"bskyarchive/pkg/bluesky"
)

// Post is the normalized unit of the archive. Every Post corresponds to
// exactly one accepted feed item; reposts never make it here.
type Post struct {
	// CreatedAt is the post's own timestamp, offset preserved. Items whose
	// timestamp is missing or unparseable are dropped entirely.
	CreatedAt time.Time

	// Text is the HTML-escaped display text, possibly empty.
	Text string

	// Permalink is the public bsky.app URL, or empty when the at:// URI was
	// malformed. A missing permalink does not reject the post.
	Permalink string

	IsReply bool
}

// Classify decides whether a feed item is an original post by the author and,
// if so, extracts its normalized form. Rules are applied in order: reposts
// (any reason annotation) are always excluded, then items without a post
// payload, then records of the wrong type, then records whose timestamp does
// not parse. Replies are kept.
func Classify(item bluesky.FeedItem) (Post, bool) {
	if item.HasReason() {
		return Post{}, false
	}
	if item.Post == nil {
		return Post{}, false
	}
	if item.Post.Record.Type != bluesky.PostRecordType {
		return Post{}, false
	}

	createdAt, err := parseTimestamp(item.Post.Record.CreatedAt)
	if err != nil {
		return Post{}, false
	}

	return Post{
		CreatedAt: createdAt,
		Text:      html.EscapeString(item.Post.Record.Text),
		Permalink: PostURL(item.Post.URI),
		IsReply:   item.HasReply(),
	}, true
}

// ClassifyAll runs Classify over a full feed, keeping accepted posts in
// input order. Rejected items are counted, not reported.
func ClassifyAll(items []bluesky.FeedItem) (posts []Post, dropped int) {
	for _, item := range items {
		post, ok := Classify(item)
		if !ok {
			dropped++
			continue
		}
		posts = append(posts, post)
	}
	return posts, dropped
}

// parseTimestamp parses an ISO-8601 instant. A bare "Z" suffix is UTC;
// explicit offsets are preserved.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable timestamp %q: %w", value, err)
	}
	return t, nil
}

// PostURL derives the public permalink from an at:// resource identifier.
// The identifier has four slash-separated segments (scheme marker, account
// DID, collection, record key); anything else yields an empty permalink.
func PostURL(uri string) string {
	rest, ok := strings.CutPrefix(uri, "at://")
	if !ok {
		return ""
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ""
	}

	did, rkey := parts[0], parts[2]
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", did, rkey)
}
