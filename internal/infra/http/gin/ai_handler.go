package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rara/internal/app/middleware"
	"rara/internal/app/services/assistant"
)

type AssistantHTTP interface {
	ListingDescription(c *gin.Context)
	SimilarListings(c *gin.Context)
}

type AssistantHandler struct {
	Service   *assistant.Service
	Validator middleware.Validator
	Logger    *slog.Logger
}

type similarListingsRequest struct {
	PhotoDataURI string `json:"photoDataUri"`
}

func (h AssistantHandler) ListingDescription(c *gin.Context) {
	if _, ok := requireActor(c, h.Logger); !ok {
		return
	}
	var req assistant.DescriptionParams
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if h.Validator != nil {
		if err := h.Validator.Validate(c.Request.Context(), req); err != nil {
			respondError(c, h.Logger, err)
			return
		}
	}
	text, err := h.Service.GenerateDescription(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": text})
}

func (h AssistantHandler) SimilarListings(c *gin.Context) {
	var req similarListingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	result, err := h.Service.FindSimilar(c.Request.Context(), req.PhotoDataURI)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AssistantHTTP = AssistantHandler{}
