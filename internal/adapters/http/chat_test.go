package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/wavelink/internal/chatlog"
)

func newChatRouter(t *testing.T, limit int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctl := NewChatController(chatlog.NewStore(t.TempDir()), NewSlidingWindowLimiter(limit, time.Minute))
	r := gin.New()
	r.GET("/api/chat", ctl.HandleRead)
	r.POST("/api/chat", ctl.HandleAppend)
	return r
}

func postChat(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestChat_AppendAndRead(t *testing.T) {
	r := newChatRouter(t, 20)

	w := postChat(r, `{"room":"r1","nickname":"alice","message":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat?room=r1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var entries []chatlog.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].User)
	assert.Equal(t, "hello", entries[0].Msg)
}

func TestChat_RoomNameSanitizedLikeTheRelay(t *testing.T) {
	r := newChatRouter(t, 20)

	w := postChat(r, `{"room":"../../etc","nickname":"a","message":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// The sanitized name is the shared key: reading "etc" finds the entry.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat?room=etc", nil))
	var entries []chatlog.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)
}

func TestChat_EmptyMessageRejected(t *testing.T) {
	r := newChatRouter(t, 20)
	w := postChat(r, `{"room":"r1","nickname":"a","message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat_BadJSONRejected(t *testing.T) {
	r := newChatRouter(t, 20)
	w := postChat(r, `{nope`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat_RateLimited(t *testing.T) {
	r := newChatRouter(t, 2)

	for i := 0; i < 2; i++ {
		w := postChat(r, `{"room":"r1","nickname":"a","message":"x"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := postChat(r, `{"room":"r1","nickname":"a","message":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSlidingWindowLimiter_WindowExpiry(t *testing.T) {
	rl := NewSlidingWindowLimiter(1, 10*time.Millisecond)

	require.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow("k"))
}
