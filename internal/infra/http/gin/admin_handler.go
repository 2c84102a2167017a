package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/properties"
	"rara/internal/app/queries"
)

type AdminHTTP interface {
	Listings(c *gin.Context)
	SetListingStatus(c *gin.Context)
}

// AdminHandler moderates listings. Booking moderation reuses BookingHandler.
type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type listingStatusRequest struct {
	Status string `json:"status"`
}

func (h AdminHandler) Listings(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	q := properties.ListAdminPropertiesQuery{Actor: actor, Status: c.Query("status")}
	result, err := queries.Ask[properties.ListAdminPropertiesQuery, dto.PropertyCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) SetListingStatus(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	var req listingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cmd := properties.SetPropertyStatusCommand{PropertyID: c.Param("id"), Actor: actor, Status: req.Status}
	result, err := commands.Dispatch[properties.SetPropertyStatusCommand, dto.Property](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
