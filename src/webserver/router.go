package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/web3voice/voice-dao/src/config"
	"github.com/web3voice/voice-dao/src/gov"
)

func attachRoutes(r *gin.Engine, cfg config.Config, engine *gov.Engine, rdb *redis.Client) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://dao.web3voice.io"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(rdb, []byte(cfg.JWTSecret))
	proposalH := NewProposals(engine)
	voteH := NewVotes(engine)
	memberH := NewMembers(engine)
	contribH := NewContributions(engine)
	treasuryH := NewTreasuryHandler(engine)
	adminH := NewAdmin(engine)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/challenge", authH.Challenge)
		v1.POST("/auth/verify", authH.Verify)

		secured := v1.Group("")
		secured.Use(JWTMiddleware([]byte(cfg.JWTSecret)))

		secured.POST("/proposals", proposalH.Create)
		secured.GET("/proposals", proposalH.List)
		secured.GET("/proposals/active", proposalH.Active)
		secured.GET("/proposals/:id", proposalH.Get)
		secured.POST("/proposals/:id/finalize", proposalH.Finalize)
		secured.POST("/proposals/:id/queue", proposalH.Queue)
		secured.POST("/proposals/:id/execute", proposalH.Execute)

		secured.POST("/proposals/:id/votes", voteH.Cast)
		secured.GET("/proposals/:id/votes/:addr", voteH.Get)

		secured.POST("/members/join", memberH.Join)
		secured.POST("/members/delegate", memberH.Delegate)
		secured.POST("/members/undelegate", memberH.Undelegate)
		secured.GET("/members", memberH.List)
		secured.GET("/members/:addr", memberH.Get)
		secured.GET("/members/:addr/contributions", contribH.ByMember)

		secured.POST("/contributions", contribH.Submit)
		secured.GET("/contributions/:id", contribH.Get)
		secured.POST("/contributions/:id/review", contribH.Review)

		secured.POST("/treasury/deposit", treasuryH.Deposit)
		secured.GET("/treasury", treasuryH.Get)

		secured.GET("/stats", adminH.Stats)
		secured.GET("/config", adminH.GetConfig)
		secured.GET("/council", adminH.Council)

		admin := secured.Group("/admin")
		admin.POST("/council", adminH.AddCouncil)
		admin.DELETE("/council/:addr", adminH.RemoveCouncil)
		admin.PUT("/config", adminH.UpdateConfig)
		admin.POST("/pause", adminH.Pause)
		admin.POST("/unpause", adminH.Unpause)
	}
}
