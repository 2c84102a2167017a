package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/bookings"
	"rara/internal/app/queries"
)

type BookingHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	UpdateStatus(c *gin.Context)
	Delete(c *gin.Context)
	HostList(c *gin.Context)
	AdminList(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	PropertyID string    `json:"propertyId"`
	Dates      dto.Dates `json:"dates"`
	From       string    `json:"from"`
	To         string    `json:"to"`
}

type updateBookingStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h BookingHandler) List(c *gin.Context) {
	h.list(c, strings.ToLower(strings.TrimSpace(c.DefaultQuery("as", bookings.ViewGuest))))
}

func (h BookingHandler) HostList(c *gin.Context) { h.list(c, bookings.ViewHost) }

func (h BookingHandler) AdminList(c *gin.Context) { h.list(c, bookings.ViewAll) }

func (h BookingHandler) list(c *gin.Context, view string) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	q := bookings.ListBookingsQuery{Actor: actor, As: view, Status: c.Query("status")}
	result, err := queries.Ask[bookings.ListBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	q := bookings.GetBookingQuery{Actor: actor, BookingID: c.Param("id")}
	result, err := queries.Ask[bookings.GetBookingQuery, dto.Booking](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Create requests a stay. The total is always computed server-side; a repeated
// Idempotency-Key replays the first response.
func (h BookingHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	from, to := req.Dates.From, req.Dates.To
	if from == "" && to == "" {
		from, to = req.From, req.To
	}
	cmd := bookings.RequestBookingCommand{
		BookingID:       uuid.NewString(),
		Actor:           actor,
		PropertyID:      req.PropertyID,
		From:            from,
		To:              to,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookings.RequestBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) UpdateStatus(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	var req updateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cmd := bookings.UpdateBookingStatusCommand{
		BookingID: c.Param("id"),
		Actor:     actor,
		Status:    req.Status,
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[bookings.UpdateBookingStatusCommand, dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	cmd := bookings.DeleteBookingCommand{BookingID: c.Param("id"), Actor: actor}
	if _, err := commands.Dispatch[bookings.DeleteBookingCommand, bookings.DeleteBookingResult](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ BookingHTTP = BookingHandler{}
