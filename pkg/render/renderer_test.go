package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bskyarchive/pkg/archive"
	"bskyarchive/pkg/logger"
)

func parsePage(t *testing.T, path string) *goquery.Document {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	require.NoError(t, err)
	return doc
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func TestEnsureStylesheets(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, EnsureStylesheets(dir))

	style, err := os.ReadFile(filepath.Join(dir, "style.css"))
	require.NoError(t, err)
	assert.Contains(t, string(style), ".month-list a")

	user, err := os.ReadFile(filepath.Join(dir, "user.css"))
	require.NoError(t, err)
	assert.Equal(t, userCSSPlaceholder, string(user))
}

func TestEnsureStylesheetsPreservesUserCSS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, EnsureStylesheets(dir))

	// Simulate owner customisation between builds.
	custom := "body{background:#111;color:#eee}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.css"), []byte(custom), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("/* clobbered */"), 0644))

	require.NoError(t, EnsureStylesheets(dir))

	user, err := os.ReadFile(filepath.Join(dir, "user.css"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(user), "user.css must survive rebuilds byte for byte")

	style, err := os.ReadFile(filepath.Join(dir, "style.css"))
	require.NoError(t, err)
	assert.Equal(t, defaultCSS, string(style), "style.css is restored on every build")
}

func TestRenderMonthPage(t *testing.T) {
	dir := t.TempDir()
	renderer, err := NewRenderer(dir, "abc123", logger.NewNopLogger())
	require.NoError(t, err)

	posts := []archive.Post{
		{
			CreatedAt: mustTime(t, "2024-03-15T10:00:00Z"),
			Text:      "hello world",
			Permalink: "https://bsky.app/profile/did:plc:x/post/3k1",
			IsReply:   false,
		},
		{
			CreatedAt: mustTime(t, "2024-03-01T00:30:00Z"),
			Text:      "a reply",
			Permalink: "https://bsky.app/profile/did:plc:x/post/3k2",
			IsReply:   true,
		},
	}
	require.NoError(t, renderer.Render(archive.Group(posts)))

	doc := parsePage(t, filepath.Join(dir, "2024-03", "index.html"))

	articles := doc.Find("article.post")
	require.Equal(t, 2, articles.Length())

	// Newest first; UTC 10:00 displays as 19:00 JST.
	first := articles.First()
	epoch, ok := first.Attr("data-epoch")
	require.True(t, ok)
	assert.Equal(t, "1710496800", epoch)

	// The attribute must round-trip to the original instant.
	parsed, err := strconv.ParseInt(epoch, 10, 64)
	require.NoError(t, err)
	assert.True(t, time.Unix(parsed, 0).Equal(posts[0].CreatedAt))
	assert.Contains(t, first.Find(".meta").Text(), "2024-03-15 19:00")
	assert.Equal(t, 0, first.Find(".badge").Length())

	link, ok := first.Find("a").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://bsky.app/profile/did:plc:x/post/3k1", link)

	second := articles.Last()
	assert.Equal(t, "reply", second.Find(".badge").Text())

	// Cache buster rides on both stylesheets.
	doc.Find("link[rel=stylesheet]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		assert.Contains(t, href, "?v=abc123")
	})
}

func TestRenderMonthBoundaryFollowsTimestampDate(t *testing.T) {
	// 23:30 UTC on Jan 31 is already February in JST, but the month folder
	// follows the timestamp's own calendar date.
	dir := t.TempDir()
	renderer, err := NewRenderer(dir, "v1", logger.NewNopLogger())
	require.NoError(t, err)

	posts := []archive.Post{{
		CreatedAt: mustTime(t, "2024-01-31T23:30:00Z"),
		Text:      "boundary",
	}}
	require.NoError(t, renderer.Render(archive.Group(posts)))

	doc := parsePage(t, filepath.Join(dir, "2024-01", "index.html"))
	assert.Contains(t, doc.Find(".meta").Text(), "2024-02-01 08:30")
}

func TestRenderEscapedTextNotDoubleEscaped(t *testing.T) {
	dir := t.TempDir()
	renderer, err := NewRenderer(dir, "v1", logger.NewNopLogger())
	require.NoError(t, err)

	// Post text arrives pre-escaped from classification.
	posts := []archive.Post{{
		CreatedAt: mustTime(t, "2024-03-15T10:00:00Z"),
		Text:      "&lt;b&gt;not bold&lt;/b&gt; &amp; safe",
	}}
	require.NoError(t, renderer.Render(archive.Group(posts)))

	doc := parsePage(t, filepath.Join(dir, "2024-03", "index.html"))

	body := doc.Find("article.post p")
	assert.Equal(t, 0, body.Find("b").Length(), "escaped markup must not become live elements")
	assert.Equal(t, "<b>not bold</b> & safe", body.Text())
}

func TestRenderOmitsMissingPermalink(t *testing.T) {
	dir := t.TempDir()
	renderer, err := NewRenderer(dir, "v1", logger.NewNopLogger())
	require.NoError(t, err)

	posts := []archive.Post{{
		CreatedAt: mustTime(t, "2024-03-15T10:00:00Z"),
		Text:      "no link",
	}}
	require.NoError(t, renderer.Render(archive.Group(posts)))

	doc := parsePage(t, filepath.Join(dir, "2024-03", "index.html"))
	article := doc.Find("article.post")
	require.Equal(t, 1, article.Length())
	assert.Equal(t, 0, article.Find("a").Length())
}

func TestRenderIndex(t *testing.T) {
	dir := t.TempDir()
	renderer, err := NewRenderer(dir, "v1", logger.NewNopLogger())
	require.NoError(t, err)

	posts := []archive.Post{
		{CreatedAt: mustTime(t, "2024-03-15T10:00:00Z"), Text: "a"},
		{CreatedAt: mustTime(t, "2024-03-10T10:00:00Z"), Text: "b"},
		{CreatedAt: mustTime(t, "2023-12-01T10:00:00Z"), Text: "c"},
	}
	require.NoError(t, renderer.Render(archive.Group(posts)))

	doc := parsePage(t, filepath.Join(dir, "index.html"))

	links := doc.Find("main.month-list a")
	require.Equal(t, 2, links.Length())

	// Months listed newest first, each with its post count badge.
	first := links.First()
	href, _ := first.Attr("href")
	assert.Equal(t, "2024-03/", href)
	assert.Equal(t, "2", first.Find(".badge").Text())

	last := links.Last()
	href, _ = last.Attr("href")
	assert.Equal(t, "2023-12/", href)
	assert.Equal(t, "1", last.Find(".badge").Text())
}

func TestRenderEmptyArchive(t *testing.T) {
	dir := t.TempDir()
	renderer, err := NewRenderer(dir, "v1", logger.NewNopLogger())
	require.NoError(t, err)

	require.NoError(t, renderer.Render(archive.Group(nil)))

	doc := parsePage(t, filepath.Join(dir, "index.html"))
	assert.Equal(t, 0, doc.Find("main.month-list a").Length())

	// Stylesheets are written even when there is nothing to archive.
	_, err = os.Stat(filepath.Join(dir, "style.css"))
	assert.NoError(t, err)
}

func TestRenderSortScriptPresent(t *testing.T) {
	dir := t.TempDir()
	renderer, err := NewRenderer(dir, "v1", logger.NewNopLogger())
	require.NoError(t, err)

	posts := []archive.Post{{CreatedAt: mustTime(t, "2024-03-15T10:00:00Z"), Text: "x"}}
	require.NoError(t, renderer.Render(archive.Group(posts)))

	data, err := os.ReadFile(filepath.Join(dir, "2024-03", "index.html"))
	require.NoError(t, err)
	page := string(data)

	assert.True(t, strings.Contains(page, "sortToggle"))
	assert.True(t, strings.Contains(page, "dataset.epoch"))
}
