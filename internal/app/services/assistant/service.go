// Package assistant generates listing copy and photo search queries through an
// external text model.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"rara/internal/app/dto"
	"rara/internal/app/handlers/properties"
	"rara/internal/app/queries"
)

var (
	// ErrExternalService wraps every generator failure; callers are not retried.
	ErrExternalService = errors.New("assistant: external service failed")
	ErrNotConfigured   = fmt.Errorf("%w: generator not configured", ErrExternalService)
	ErrInvalidPhoto    = errors.New("assistant: photo must be a data URI")
)

// Prompt is one text-in/text-out request. ImageDataURI is optional.
type Prompt struct {
	System       string
	User         string
	ImageDataURI string
}

// Generator is the port to the language model.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

type Service struct {
	Generator Generator
	Queries   queries.Bus
	Logger    *slog.Logger
}

type DescriptionParams struct {
	PropertyType      string   `json:"propertyType" validate:"required"`
	Location          string   `json:"location" validate:"required"`
	NumberOfGuests    int      `json:"numberOfGuests" validate:"gte=1"`
	NumberOfBedrooms  int      `json:"numberOfBedrooms" validate:"gte=0"`
	NumberOfBathrooms int      `json:"numberOfBathrooms" validate:"gte=0"`
	Amenities         []string `json:"amenities"`
	UniqueFeatures    string   `json:"uniqueFeatures"`
}

type SimilarListings struct {
	Query    string                 `json:"query"`
	Listings dto.PropertyCollection `json:"listings"`
}

const descriptionSystemPrompt = "You write warm, accurate rental listing descriptions of two or three short paragraphs. Do not invent amenities."

const photoSystemPrompt = "You look at a photo of a property and reply with a short search query (at most six words) describing its style and setting. Reply with the query only."

// GenerateDescription drafts listing copy from the host's facts.
func (s *Service) GenerateDescription(ctx context.Context, params DescriptionParams) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Property type: %s\n", params.PropertyType)
	fmt.Fprintf(&b, "Location: %s\n", params.Location)
	fmt.Fprintf(&b, "Guests: %d, bedrooms: %d, bathrooms: %d\n", params.NumberOfGuests, params.NumberOfBedrooms, params.NumberOfBathrooms)
	if len(params.Amenities) > 0 {
		fmt.Fprintf(&b, "Amenities: %s\n", strings.Join(params.Amenities, ", "))
	}
	if features := strings.TrimSpace(params.UniqueFeatures); features != "" {
		fmt.Fprintf(&b, "Unique features: %s\n", features)
	}
	text, err := s.generate(ctx, Prompt{System: descriptionSystemPrompt, User: b.String()})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

var dataURIPattern = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)

// FindSimilar turns a photo into a search query and matches it against published listings.
func (s *Service) FindSimilar(ctx context.Context, photoDataURI string) (SimilarListings, error) {
	if !dataURIPattern.MatchString(photoDataURI) {
		return SimilarListings{}, ErrInvalidPhoto
	}
	text, err := s.generate(ctx, Prompt{System: photoSystemPrompt, User: "Describe this property as a search query.", ImageDataURI: photoDataURI})
	if err != nil {
		return SimilarListings{}, err
	}
	query := strings.Trim(strings.TrimSpace(text), "\"'.")
	listings, err := queries.Ask[properties.SearchCatalogQuery, dto.PropertyCollection](ctx, s.Queries, properties.SearchCatalogQuery{
		Keywords: Keywords(query),
		Limit:    12,
	})
	if err != nil {
		return SimilarListings{}, err
	}
	return SimilarListings{Query: query, Listings: listings}, nil
}

func (s *Service) generate(ctx context.Context, prompt Prompt) (string, error) {
	if s.Generator == nil {
		return "", ErrNotConfigured
	}
	text, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("generator call failed", "error", err)
		}
		if errors.Is(err, ErrExternalService) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response", ErrExternalService)
	}
	return text, nil
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "with": {}, "and": {}, "in": {}, "of": {}, "on": {}, "for": {}, "by": {},
}

// Keywords splits a search query into lowercase terms without stop words.
func Keywords(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := stopWords[f]; stop || len(f) < 3 {
			continue
		}
		out = append(out, f)
	}
	return out
}
