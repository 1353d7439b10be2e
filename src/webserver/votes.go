package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/web3voice/voice-dao/src/gov"
)

type Votes struct{ engine *gov.Engine }

func NewVotes(engine *gov.Engine) Votes { return Votes{engine: engine} }

func (v Votes) Cast(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}

	var req struct {
		Support string `json:"support" binding:"required,oneof=for against abstain"`
		Reason  string `json:"reason" binding:"max=1024"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if err := v.engine.VoteOnProposal(c, c.GetString("addr"), id, req.Support, req.Reason); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (v Votes) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}
	vote, err := v.engine.GetVote(id, c.Param("addr"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, vote)
}
