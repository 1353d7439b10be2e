package webserver

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/web3voice/voice-dao/src/config"
	"github.com/web3voice/voice-dao/src/gov"
)

func New(cfg config.Config, engine *gov.Engine, rdb *redis.Client) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, engine, rdb)
	return g
}
