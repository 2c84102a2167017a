package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rara/internal/app/dto"
	"rara/internal/app/handlers/properties"
	"rara/internal/app/handlers/reports"
	"rara/internal/app/queries"
)

type HostHTTP interface {
	Listings(c *gin.Context)
	Occupancy(c *gin.Context)
	Earnings(c *gin.Context)
}

// HostHandler serves the host dashboard: own listings and per-listing reports.
type HostHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h HostHandler) Listings(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	q := properties.ListHostPropertiesQuery{Actor: actor}
	result, err := queries.Ask[properties.ListHostPropertiesQuery, dto.PropertyCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostHandler) Occupancy(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	q := reports.OccupancyQuery{Actor: actor, PropertyID: c.Param("id"), From: c.Query("from"), To: c.Query("to")}
	result, err := queries.Ask[reports.OccupancyQuery, dto.Occupancy](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostHandler) Earnings(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	q := reports.EarningsQuery{Actor: actor, PropertyID: c.Param("id")}
	result, err := queries.Ask[reports.EarningsQuery, dto.Earnings](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostHTTP = HostHandler{}
