package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/reviews"
	"rara/internal/app/queries"
)

type ReviewHTTP interface {
	List(c *gin.Context)
	Submit(c *gin.Context)
}

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type submitReviewRequest struct {
	BookingID string  `json:"bookingId"`
	Rating    float64 `json:"rating"`
	Comment   string  `json:"comment"`
}

func (h ReviewHandler) List(c *gin.Context) {
	q := reviews.ListReviewsQuery{PropertyID: c.Param("id")}
	result, err := queries.Ask[reviews.ListReviewsQuery, reviews.ReviewCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Submit reviews a completed stay of the caller.
func (h ReviewHandler) Submit(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cmd := reviews.SubmitReviewCommand{
		ReviewID:   uuid.NewString(),
		Actor:      actor,
		PropertyID: c.Param("id"),
		BookingID:  req.BookingID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	result, err := commands.Dispatch[reviews.SubmitReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ ReviewHTTP = ReviewHandler{}
