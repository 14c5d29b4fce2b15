package server

import (
	"net/http"

	"github.com/jackbombadeur/RPGCompanion/internal/config"
	"github.com/jackbombadeur/RPGCompanion/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	coord   *game.Coordinator
	hub     *wsHub
	cfg     config.Config
	limiter *rateLimiter
	roll    game.DieRoller
}

// New wires the request layer around a store-backed coordinator. The
// hub doubles as the coordinator's event sink so broadcasts fire inside
// the per-session mutation scope.
func New(store game.Store, cfg config.Config) *Server {
	registerValidators()
	hub := newWSHub()
	rules := game.Ruleset{
		StartingNerve: cfg.StartingNerve,
		MaxNerve:      cfg.StartingNerve,
		PotencyMin:    cfg.PotencyMin,
		PotencyMax:    cfg.PotencyMax,
		MaxPlayers:    cfg.MaxPlayers,
	}
	return &Server{
		coord:   game.NewCoordinator(store, hub, rules),
		hub:     hub,
		cfg:     cfg,
		limiter: newRateLimiter(cfg.RedisURL),
		roll:    game.NewDieRoller(),
	}
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), metricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", s.handleWebsocket)

	api := router.Group("/api")
	{
		api.POST("/sessions", s.handleCreateSession)
		api.GET("/sessions/:id", s.handleGetSession)
		api.POST("/sessions/:id/join", s.handleJoinSession)
		api.POST("/sessions/:id/leave", s.handleLeaveSession)
		api.GET("/sessions/:id/players", s.handleListPlayers)
		api.POST("/sessions/:id/players/:playerId/nerve", s.handleUpdateNerve)
		api.POST("/sessions/:id/vowels", s.handleUpdateVowels)

		api.POST("/sessions/:id/encounter", s.handleSetEncounter)
		api.POST("/sessions/:id/encounter/stats", s.handleUpdateStats)
		api.POST("/sessions/:id/encounter/define", s.handleDefineWord)
		api.POST("/sessions/:id/encounter/potency", s.handleSetPotency)
		api.POST("/sessions/:id/encounter/adjust", s.handleAdjustStat)
		api.POST("/sessions/:id/prep/advance", s.handleAdvancePrep)
		api.POST("/sessions/:id/turn/advance", s.handleAdvanceTurn)

		api.GET("/sessions/:id/words", s.handleListWords)
		api.POST("/sessions/:id/words", s.handleCreateWord)
		api.POST("/sessions/:id/words/roll", s.handleRollWord)
		api.POST("/sessions/:id/words/:wordId/approve", s.handleApproveWord)

		api.GET("/sessions/:id/log", s.handleCombatLog)
		api.POST("/sessions/:id/combat", s.handleCombatAction)
	}
	return router
}
