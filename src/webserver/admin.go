package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/web3voice/voice-dao/src/gov"
	"github.com/web3voice/voice-dao/src/types"
)

type Admin struct{ engine *gov.Engine }

func NewAdmin(engine *gov.Engine) Admin { return Admin{engine: engine} }

func (a Admin) AddCouncil(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required,min=2,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := a.engine.AddCouncilMember(c, c.GetString("addr"), req.Address); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (a Admin) RemoveCouncil(c *gin.Context) {
	if err := a.engine.RemoveCouncilMember(c, c.GetString("addr"), c.Param("addr")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a Admin) UpdateConfig(c *gin.Context) {
	var req types.GovernanceConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := a.engine.UpdateGovernanceConfig(c, c.GetString("addr"), req); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a Admin) Pause(c *gin.Context) {
	if err := a.engine.Pause(c, c.GetString("addr")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a Admin) Unpause(c *gin.Context) {
	if err := a.engine.Unpause(c, c.GetString("addr")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a Admin) Stats(c *gin.Context) {
	stats, err := a.engine.Stats()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a Admin) GetConfig(c *gin.Context) {
	cfg, err := a.engine.GetConfig()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (a Admin) Council(c *gin.Context) {
	council, err := a.engine.CouncilMembers()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"council": council})
}
