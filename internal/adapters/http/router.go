package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/wavelink/internal/adapters/signal"
	"github.com/dkeye/wavelink/internal/chatlog"
	"github.com/dkeye/wavelink/internal/config"
	"github.com/dkeye/wavelink/internal/core"
)

func SetupRouter(cfg *config.Config, reg *core.Registry, chat *chatlog.Store) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := signal.NewController(cfg, reg)
	chatCtl := NewChatController(chat, NewSlidingWindowLimiter(20, time.Minute))

	api := r.Group("/api")
	api.GET("/ws/signal", ctrl.HandleSignal)
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, reg.List())
	})
	api.GET("/stats", func(c *gin.Context) {
		rooms, members := reg.Stats()
		c.JSON(http.StatusOK, gin.H{"rooms": rooms, "members": members})
	})
	api.GET("/chat", chatCtl.HandleRead)
	api.POST("/chat", chatCtl.HandleAppend)

	return r
}
