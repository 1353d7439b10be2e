package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/web3voice/voice-dao/src/gov"
)

type TreasuryHandler struct{ engine *gov.Engine }

func NewTreasuryHandler(engine *gov.Engine) TreasuryHandler {
	return TreasuryHandler{engine: engine}
}

func (h TreasuryHandler) Deposit(c *gin.Context) {
	var req struct {
		Amount uint64 `json:"amount" binding:"required,gt=0"`
		Fund   string `json:"fund" binding:"omitempty,oneof=native voice"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var err error
	if req.Fund == gov.FundVoice {
		err = h.engine.FundVoiceTreasury(c, c.GetString("addr"), req.Amount)
	} else {
		err = h.engine.ContributeToTreasury(c, c.GetString("addr"), req.Amount)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h TreasuryHandler) Get(c *gin.Context) {
	snap, err := h.engine.GetTreasury()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
