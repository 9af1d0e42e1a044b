package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/wavelink/internal/chatlog"
	"github.com/dkeye/wavelink/internal/domain"
)

// ChatController exposes the per-room chat log over HTTP. It is
// independent of the relay: the only thing shared is the room-name
// sanitization, so the log file keys line up with the signaling rooms.
type ChatController struct {
	store   *chatlog.Store
	limiter *SlidingWindowLimiter
}

func NewChatController(store *chatlog.Store, limiter *SlidingWindowLimiter) *ChatController {
	return &ChatController{store: store, limiter: limiter}
}

type appendRequest struct {
	Room     string `json:"room"`
	Nickname string `json:"nickname"`
	Message  string `json:"message"`
}

func (ctl *ChatController) HandleRead(c *gin.Context) {
	room := domain.SanitizeRoomName(c.Query("room"))
	entries, err := ctl.store.ReadAll(room)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(room)).Msg("chat read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read log"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (ctl *ChatController) HandleAppend(c *gin.Context) {
	var req appendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if !ctl.limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many messages"})
		return
	}

	room := domain.SanitizeRoomName(req.Room)
	entry, err := ctl.store.Append(room, req.Nickname, req.Message)
	if err != nil {
		if errors.Is(err, chatlog.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(room)).Msg("chat append")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "entry": entry})
}
