package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/web3voice/voice-dao/src/gov"
)

type Members struct{ engine *gov.Engine }

func NewMembers(engine *gov.Engine) Members { return Members{engine: engine} }

func (m Members) Join(c *gin.Context) {
	if err := m.engine.JoinDAO(c, c.GetString("addr")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (m Members) Delegate(c *gin.Context) {
	var req struct {
		Delegate string `json:"delegate" binding:"required,min=2,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := m.engine.DelegateVotingPower(c, c.GetString("addr"), req.Delegate); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (m Members) Undelegate(c *gin.Context) {
	if err := m.engine.UndelegateVotingPower(c, c.GetString("addr")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (m Members) Get(c *gin.Context) {
	member, err := m.engine.GetMember(c.Param("addr"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (m Members) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := m.engine.ListMembers(offset, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
