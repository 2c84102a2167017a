package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/availability"
	"rara/internal/app/queries"
)

type BlockHTTP interface {
	List(c *gin.Context)
	Add(c *gin.Context)
	Remove(c *gin.Context)
}

// BlockHandler manages the manual calendar blocks of a host's listing.
type BlockHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type addBlockRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Note string `json:"note"`
}

func (h BlockHandler) List(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	q := availability.ListBlocksQuery{Actor: actor, PropertyID: c.Param("id")}
	result, err := queries.Ask[availability.ListBlocksQuery, dto.BlockCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BlockHandler) Add(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	var req addBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cmd := availability.AddBlockCommand{
		BlockID:    uuid.NewString(),
		Actor:      actor,
		PropertyID: c.Param("id"),
		From:       req.From,
		To:         req.To,
		Note:       req.Note,
	}
	result, err := commands.Dispatch[availability.AddBlockCommand, dto.Block](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BlockHandler) Remove(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	cmd := availability.RemoveBlockCommand{Actor: actor, PropertyID: c.Param("id"), BlockID: c.Param("blockId")}
	result, err := commands.Dispatch[availability.RemoveBlockCommand, dto.BlockCollection](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BlockHTTP = BlockHandler{}
