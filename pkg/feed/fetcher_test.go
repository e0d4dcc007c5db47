package feed

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bskyarchive/pkg/bluesky"
	"bskyarchive/pkg/logger"
	"bskyarchive/pkg/throttle"
)

// scriptedSource replays a fixed sequence of pages
type scriptedSource struct {
	pages       []*bluesky.FeedResponse
	pageErr     error
	errOnPage   int
	resolveErr  error
	gotCursors  []string
	resolveDone bool
}

func (s *scriptedSource) Resolve(ctx context.Context) (string, error) {
	s.resolveDone = true
	if s.resolveErr != nil {
		return "", s.resolveErr
	}
	return "did:plc:test", nil
}

func (s *scriptedSource) Page(ctx context.Context, actor string, limit int, cursor string) (*bluesky.FeedResponse, error) {
	s.gotCursors = append(s.gotCursors, cursor)
	if s.pageErr != nil && len(s.gotCursors) == s.errOnPage {
		return nil, s.pageErr
	}

	idx := len(s.gotCursors) - 1
	if idx >= len(s.pages) {
		return &bluesky.FeedResponse{}, nil
	}
	return s.pages[idx], nil
}

func itemWithText(text string) bluesky.FeedItem {
	return bluesky.FeedItem{
		Post: &bluesky.FeedPost{
			Record: bluesky.Record{Type: bluesky.PostRecordType, Text: text},
		},
	}
}

func TestFetchAllPaginates(t *testing.T) {
	source := &scriptedSource{
		pages: []*bluesky.FeedResponse{
			{Feed: []bluesky.FeedItem{itemWithText("a"), itemWithText("b")}, Cursor: "c1"},
			{Feed: []bluesky.FeedItem{itemWithText("c")}, Cursor: "c2"},
			{Feed: []bluesky.FeedItem{itemWithText("d")}},
		},
	}

	fetcher := NewFetcher(source, 100, throttle.New(0), logger.NewNopLogger())
	items, err := fetcher.FetchAll(context.Background())
	require.NoError(t, err)

	// All pages concatenated in upstream order.
	require.Len(t, items, 4)
	assert.Equal(t, "a", items[0].Post.Record.Text)
	assert.Equal(t, "d", items[3].Post.Record.Text)

	// Cursors threaded page to page.
	assert.Equal(t, []string{"", "c1", "c2"}, source.gotCursors)
}

func TestFetchAllStopsOnEmptyCursor(t *testing.T) {
	source := &scriptedSource{
		pages: []*bluesky.FeedResponse{
			{Feed: []bluesky.FeedItem{itemWithText("only")}},
		},
	}

	fetcher := NewFetcher(source, 100, nil, logger.NewNopLogger())
	items, err := fetcher.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, items, 1)
	assert.Len(t, source.gotCursors, 1)
}

func TestFetchAllStopsOnEmptyPage(t *testing.T) {
	// A cursor with no items still terminates paging.
	source := &scriptedSource{
		pages: []*bluesky.FeedResponse{
			{Feed: []bluesky.FeedItem{itemWithText("a")}, Cursor: "c1"},
			{Feed: nil, Cursor: "c2"},
		},
	}

	fetcher := NewFetcher(source, 100, nil, logger.NewNopLogger())
	items, err := fetcher.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, items, 1)
	assert.Len(t, source.gotCursors, 2)
}

func TestFetchAllEmptyFeed(t *testing.T) {
	source := &scriptedSource{
		pages: []*bluesky.FeedResponse{{}},
	}

	fetcher := NewFetcher(source, 100, nil, logger.NewNopLogger())
	items, err := fetcher.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchAllFailFast(t *testing.T) {
	source := &scriptedSource{
		pages: []*bluesky.FeedResponse{
			{Feed: []bluesky.FeedItem{itemWithText("a")}, Cursor: "c1"},
		},
		pageErr:   fmt.Errorf("upstream error (code 502): relay unavailable"),
		errOnPage: 2,
	}

	fetcher := NewFetcher(source, 100, nil, logger.NewNopLogger())
	items, err := fetcher.FetchAll(context.Background())

	// No partial result: the whole run aborts.
	require.Error(t, err)
	assert.Nil(t, items)
}

func TestFetchAllResolveError(t *testing.T) {
	source := &scriptedSource{resolveErr: fmt.Errorf("config error: no such handle")}

	fetcher := NewFetcher(source, 100, nil, logger.NewNopLogger())
	_, err := fetcher.FetchAll(context.Background())

	require.Error(t, err)
	assert.Empty(t, source.gotCursors, "no page may be requested after a failed resolve")
}

func TestFetchAllPassesDuplicatesThrough(t *testing.T) {
	// Cursor drift can repeat items across pages; the fetcher must not mask it.
	source := &scriptedSource{
		pages: []*bluesky.FeedResponse{
			{Feed: []bluesky.FeedItem{itemWithText("dup")}, Cursor: "c1"},
			{Feed: []bluesky.FeedItem{itemWithText("dup")}},
		},
	}

	fetcher := NewFetcher(source, 100, nil, logger.NewNopLogger())
	items, err := fetcher.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
