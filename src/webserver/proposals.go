package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/web3voice/voice-dao/src/gov"
)

type Proposals struct {
	engine    *gov.Engine
	sanitizer *bluemonday.Policy
}

func NewProposals(engine *gov.Engine) Proposals {
	// Strict policy with the markdown subset the frontend renders
	sanitizer := bluemonday.StrictPolicy()
	sanitizer.AllowElements("p", "br", "strong", "em", "code", "pre", "blockquote")
	sanitizer.AllowElements("ul", "ol", "li")
	sanitizer.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	sanitizer.AllowAttrs("href").OnElements("a")
	sanitizer.RequireParseableURLs(true)
	sanitizer.AddTargetBlankToFullyQualifiedLinks(true)
	sanitizer.RequireNoFollowOnLinks(true)

	return Proposals{engine: engine, sanitizer: sanitizer}
}

func (h Proposals) Create(c *gin.Context) {
	var req struct {
		Title       string      `json:"title" binding:"required,min=1,max=255"`
		Description string      `json:"description" binding:"max=10000"`
		Payload     gov.Payload `json:"payload" binding:"required"`
		Tags        []string    `json:"tags" binding:"max=10"`
		Attachments []string    `json:"attachments" binding:"max=10"`
		Deposit     uint64      `json:"deposit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	req.Description = h.sanitizer.Sanitize(req.Description)

	id, err := h.engine.CreateProposal(c, c.GetString("addr"), gov.CreateProposalInput{
		Title:       req.Title,
		Description: req.Description,
		Payload:     req.Payload,
		Tags:        req.Tags,
		Attachments: req.Attachments,
		Deposit:     req.Deposit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h Proposals) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}
	p, err := h.engine.GetProposal(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Proposals) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := h.engine.ListProposals(offset, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h Proposals) Active(c *gin.Context) {
	rows, err := h.engine.ActiveProposals()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h Proposals) Finalize(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}
	if err := h.engine.FinalizeProposal(c, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Proposals) Queue(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}
	if err := h.engine.QueueProposal(c, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Proposals) Execute(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}
	res, err := h.engine.ExecuteProposal(c, c.GetString("addr"), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
