package ginserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/availability"
	"rara/internal/app/handlers/properties"
	"rara/internal/app/queries"
)

const maxImageBytes = 10 << 20

type ListingHTTP interface {
	Catalog(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Availability(c *gin.Context)
	Quote(c *gin.Context)
	UploadImage(c *gin.Context)
}

// ImageStore persists listing photos and returns their public URL.
type ImageStore interface {
	UploadImage(ctx context.Context, prefix string, reader io.Reader, size int64, contentType string) (string, error)
}

type ListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Images   ImageStore
	Logger   *slog.Logger
}

type coordsPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type createListingRequest struct {
	Title         string        `json:"title"`
	Type          string        `json:"type"`
	Location      string        `json:"location"`
	Coords        coordsPayload `json:"coords"`
	PricePerNight int64         `json:"pricePerNight"`
	Currency      string        `json:"currency"`
	MaxGuests     int           `json:"maxGuests"`
	Bedrooms      int           `json:"bedrooms"`
	Beds          int           `json:"beds"`
	Bathrooms     int           `json:"bathrooms"`
	Description   string        `json:"description"`
	Amenities     []string      `json:"amenities"`
	Images        []string      `json:"images"`
	Rules         []string      `json:"rules"`
}

type updateListingRequest struct {
	Title         *string        `json:"title"`
	Type          *string        `json:"type"`
	Location      *string        `json:"location"`
	Coords        *coordsPayload `json:"coords"`
	PricePerNight *int64         `json:"pricePerNight"`
	MaxGuests     *int           `json:"maxGuests"`
	Bedrooms      *int           `json:"bedrooms"`
	Beds          *int           `json:"beds"`
	Bathrooms     *int           `json:"bathrooms"`
	Description   *string        `json:"description"`
	Amenities     []string       `json:"amenities"`
	Images        []string       `json:"images"`
	Rules         []string       `json:"rules"`
}

// Catalog serves the public search. Only published listings are returned.
func (h ListingHandler) Catalog(c *gin.Context) {
	q := properties.SearchCatalogQuery{
		Location:  strings.TrimSpace(c.Query("location")),
		Type:      strings.TrimSpace(c.Query("type")),
		Guests:    parseIntWithDefault(c.Query("guests"), 0),
		MinPrice:  int64(parseIntWithDefault(c.Query("minPrice"), 0)),
		MaxPrice:  int64(parseIntWithDefault(c.Query("maxPrice"), 0)),
		Amenities: parseCSV(c.QueryArray("amenities")),
		From:      c.Query("from"),
		To:        c.Query("to"),
		Limit:     parseIntWithDefault(c.Query("limit"), 0),
	}
	result, err := queries.Ask[properties.SearchCatalogQuery, dto.PropertyCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Get(c *gin.Context) {
	q := properties.GetPropertyQuery{PropertyID: c.Param("id"), Viewer: currentActor(c)}
	result, err := queries.Ask[properties.GetPropertyQuery, dto.Property](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cmd := properties.CreatePropertyCommand{
		PropertyID:    uuid.NewString(),
		Actor:         actor,
		Title:         strings.TrimSpace(req.Title),
		Type:          strings.TrimSpace(req.Type),
		Location:      strings.TrimSpace(req.Location),
		Lat:           req.Coords.Lat,
		Lng:           req.Coords.Lng,
		PricePerNight: req.PricePerNight,
		Currency:      req.Currency,
		MaxGuests:     req.MaxGuests,
		Bedrooms:      req.Bedrooms,
		Beds:          req.Beds,
		Bathrooms:     req.Bathrooms,
		Description:   req.Description,
		Amenities:     req.Amenities,
		Images:        req.Images,
		Rules:         req.Rules,
	}
	result, err := commands.Dispatch[properties.CreatePropertyCommand, dto.Property](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ListingHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	var req updateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cmd := properties.UpdatePropertyCommand{
		PropertyID:    c.Param("id"),
		Actor:         actor,
		Title:         req.Title,
		Type:          req.Type,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
		MaxGuests:     req.MaxGuests,
		Bedrooms:      req.Bedrooms,
		Beds:          req.Beds,
		Bathrooms:     req.Bathrooms,
		Description:   req.Description,
		Amenities:     req.Amenities,
		Images:        req.Images,
		Rules:         req.Rules,
	}
	if req.Coords != nil {
		cmd.Lat = &req.Coords.Lat
		cmd.Lng = &req.Coords.Lng
	}
	result, err := commands.Dispatch[properties.UpdatePropertyCommand, dto.Property](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	cmd := properties.DeletePropertyCommand{PropertyID: c.Param("id"), Actor: actor}
	if _, err := commands.Dispatch[properties.DeletePropertyCommand, properties.DeletePropertyResult](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h ListingHandler) Availability(c *gin.Context) {
	q := availability.GetAvailabilityQuery{PropertyID: c.Param("id"), From: c.Query("from"), To: c.Query("to")}
	result, err := queries.Ask[availability.GetAvailabilityQuery, dto.Availability](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Quote(c *gin.Context) {
	q := availability.QuoteQuery{PropertyID: c.Param("id"), From: c.Query("from"), To: c.Query("to")}
	result, err := queries.Ask[availability.QuoteQuery, dto.Quote](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UploadImage stores a multipart "file" and returns its URL.
func (h ListingHandler) UploadImage(c *gin.Context) {
	actor, ok := requireActor(c, h.Logger)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if header.Size > maxImageBytes {
		badRequest(c, "file is larger than 10MB")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "cannot read file")
		return
	}
	defer file.Close()

	url, err := h.Images.UploadImage(c.Request.Context(), "listings/"+actor.ID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func parseIntWithDefault(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// parseCSV accepts both repeated parameters and comma separated values.
func parseCSV(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

var _ ListingHTTP = ListingHandler{}
