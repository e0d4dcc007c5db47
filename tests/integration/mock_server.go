package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
)

// MockATProtoServer simulates the xrpc endpoints the archiver talks to:
// handle resolution, paginated author feeds, and session creation.
type MockATProtoServer struct {
	server       *httptest.Server
	did          string
	handle       string
	pages        [][]map[string]interface{}
	requestCount int32
	feedStatus   int // non-zero forces every feed response to this code
	validToken   string
	sessionCalls int32
}

// NewMockATProtoServer creates a mock server for the given account. Feed
// items are split into pages of pageSize with cursors chaining them.
func NewMockATProtoServer(did, handle string, items []map[string]interface{}, pageSize int) *MockATProtoServer {
	m := &MockATProtoServer{
		did:    did,
		handle: handle,
	}
	for start := 0; start < len(items); start += pageSize {
		end := start + pageSize
		if end > len(items) {
			end = len(items)
		}
		m.pages = append(m.pages, items[start:end])
	}
	if len(m.pages) == 0 {
		m.pages = [][]map[string]interface{}{{}}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/com.atproto.identity.resolveHandle", m.handleResolve)
	mux.HandleFunc("/app.bsky.feed.getAuthorFeed", m.handleFeed)
	mux.HandleFunc("/com.atproto.server.createSession", m.handleCreateSession)

	m.server = httptest.NewServer(mux)
	return m
}

// URL returns the mock server's base URL, usable as an xrpc base
func (m *MockATProtoServer) URL() string {
	return m.server.URL
}

// Close shuts the server down
func (m *MockATProtoServer) Close() {
	m.server.Close()
}

// RequestCount returns how many requests the server saw
func (m *MockATProtoServer) RequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// SessionCalls returns how many createSession requests the server saw
func (m *MockATProtoServer) SessionCalls() int {
	return int(atomic.LoadInt32(&m.sessionCalls))
}

// FailFeedWith makes every subsequent feed request return the given status
func (m *MockATProtoServer) FailFeedWith(status int) {
	m.feedStatus = status
}

// RequireToken makes the feed endpoint demand the given bearer token
func (m *MockATProtoServer) RequireToken(token string) {
	m.validToken = token
}

func (m *MockATProtoServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	if r.URL.Query().Get("handle") != m.handle {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "InvalidRequest", "message": "Unable to resolve handle",
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"did": m.did})
}

func (m *MockATProtoServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	if m.feedStatus != 0 {
		w.WriteHeader(m.feedStatus)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "UpstreamFailure", "message": "simulated failure",
		})
		return
	}

	if m.validToken != "" && r.Header.Get("Authorization") != "Bearer "+m.validToken {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "ExpiredToken", "message": "token has expired",
		})
		return
	}

	page := 0
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 || parsed >= len(m.pages) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "InvalidRequest", "message": "bad cursor",
			})
			return
		}
		page = parsed
	}

	response := map[string]interface{}{
		"feed": m.pages[page],
	}
	if page+1 < len(m.pages) {
		response["cursor"] = fmt.Sprintf("%d", page+1)
	}
	json.NewEncoder(w).Encode(response)
}

func (m *MockATProtoServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)
	atomic.AddInt32(&m.sessionCalls, 1)

	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["identifier"] == "" || body["password"] == "" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "AuthenticationRequired", "message": "Invalid identifier or password",
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]string{
		"did":       m.did,
		"handle":    m.handle,
		"accessJwt": m.validToken,
	})
}

// PostItem builds a normal feed item for the mock feed
func PostItem(did, rkey, text, createdAt string) map[string]interface{} {
	return map[string]interface{}{
		"post": map[string]interface{}{
			"uri": fmt.Sprintf("at://%s/app.bsky.feed.post/%s", did, rkey),
			"cid": "bafy" + rkey,
			"record": map[string]interface{}{
				"$type":     "app.bsky.feed.post",
				"text":      text,
				"createdAt": createdAt,
			},
		},
	}
}

// ReplyItem builds a feed item carrying reply metadata
func ReplyItem(did, rkey, text, createdAt string) map[string]interface{} {
	item := PostItem(did, rkey, text, createdAt)
	item["reply"] = map[string]interface{}{
		"root":   map[string]string{"uri": "at://" + did + "/app.bsky.feed.post/root"},
		"parent": map[string]string{"uri": "at://" + did + "/app.bsky.feed.post/parent"},
	}
	return item
}

// RepostItem builds a feed item with a repost reason
func RepostItem(did, rkey, text, createdAt string) map[string]interface{} {
	item := PostItem(did, rkey, text, createdAt)
	item["reason"] = map[string]interface{}{
		"$type": "app.bsky.feed.defs#reasonRepost",
		"by":    map[string]string{"did": "did:plc:someoneelse"},
	}
	return item
}
