package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/web3voice/voice-dao/src/gov"
)

type Contributions struct {
	engine    *gov.Engine
	sanitizer *bluemonday.Policy
}

func NewContributions(engine *gov.Engine) Contributions {
	return Contributions{engine: engine, sanitizer: bluemonday.StrictPolicy()}
}

func (h Contributions) Submit(c *gin.Context) {
	var req struct {
		Kind        string `json:"kind" binding:"required"`
		Title       string `json:"title" binding:"required,min=1,max=255"`
		Description string `json:"description" binding:"max=10000"`
		ContentRef  string `json:"contentRef" binding:"max=256"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	req.Description = h.sanitizer.Sanitize(req.Description)

	id, err := h.engine.SubmitContribution(c, c.GetString("addr"),
		req.Kind, req.Title, req.Description, req.ContentRef)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h Contributions) Review(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad contribution id"})
		return
	}
	var req struct {
		Approved bool   `json:"approved"`
		Reward   uint64 `json:"reward"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := h.engine.ReviewContribution(c, c.GetString("addr"), id, req.Approved, req.Reward); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Contributions) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad contribution id"})
		return
	}
	contribution, err := h.engine.GetContribution(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, contribution)
}

func (h Contributions) ByMember(c *gin.Context) {
	rows, err := h.engine.ContributionsByMember(c.Param("addr"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
