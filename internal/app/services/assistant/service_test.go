package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rara/internal/app/dto"
	"rara/internal/app/handlers/properties"
	"rara/internal/app/queries"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type mockQueries struct {
	mock.Mock
}

func (m *mockQueries) Ask(ctx context.Context, query queries.Query) (any, error) {
	args := m.Called(ctx, query)
	return args.Get(0), args.Error(1)
}

const photo = "data:image/jpeg;base64,/9j/4AAQSkZJRg=="

func TestGenerateDescriptionSendsListingFacts(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p Prompt) bool {
		return p.System == descriptionSystemPrompt &&
			assert.ObjectsAreEqual("Property type: Villa\nLocation: Ubud, Bali\nGuests: 4, bedrooms: 2, bathrooms: 1\nAmenities: Pool, WiFi\nUnique features: rice field view\n", p.User)
	})).Return("  A quiet villa.  \n", nil)
	svc := &Service{Generator: gen}

	text, err := svc.GenerateDescription(context.Background(), DescriptionParams{
		PropertyType:      "Villa",
		Location:          "Ubud, Bali",
		NumberOfGuests:    4,
		NumberOfBedrooms:  2,
		NumberOfBathrooms: 1,
		Amenities:         []string{"Pool", "WiFi"},
		UniqueFeatures:    " rice field view ",
	})

	require.NoError(t, err)
	assert.Equal(t, "A quiet villa.", text)
	gen.AssertExpectations(t)
}

func TestGeneratorFailuresAreExternal(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("status 503")).Once()
	gen.On("Generate", mock.Anything, mock.Anything).Return("   ", nil).Once()
	svc := &Service{Generator: gen}
	params := DescriptionParams{PropertyType: "Villa", Location: "Ubud", NumberOfGuests: 1}

	_, err := svc.GenerateDescription(context.Background(), params)
	require.ErrorIs(t, err, ErrExternalService)
	assert.Contains(t, err.Error(), "status 503")

	_, err = svc.GenerateDescription(context.Background(), params)
	assert.ErrorIs(t, err, ErrExternalService)
}

func TestMissingGeneratorIsNotConfigured(t *testing.T) {
	svc := &Service{}

	_, err := svc.GenerateDescription(context.Background(), DescriptionParams{PropertyType: "Villa", Location: "Ubud"})

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, err, ErrExternalService)
}

func TestFindSimilarSearchesCatalog(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p Prompt) bool {
		return p.ImageDataURI == photo
	})).Return(`"Modern villa with a pool."`, nil)
	bus := &mockQueries{}
	found := dto.PropertyCollection{Items: []dto.Property{{ID: "P1"}}, Total: 1}
	bus.On("Ask", mock.Anything, properties.SearchCatalogQuery{
		Keywords: []string{"modern", "villa", "pool"},
		Limit:    12,
	}).Return(found, nil)
	svc := &Service{Generator: gen, Queries: bus}

	res, err := svc.FindSimilar(context.Background(), photo)

	require.NoError(t, err)
	assert.Equal(t, "Modern villa with a pool", res.Query)
	assert.Equal(t, found, res.Listings)
	bus.AssertExpectations(t)
}

func TestFindSimilarRejectsNonImages(t *testing.T) {
	gen := &mockGenerator{}
	svc := &Service{Generator: gen}

	for _, input := range []string{"", "https://example.com/a.jpg", "data:text/plain;base64,aGk="} {
		_, err := svc.FindSimilar(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidPhoto, input)
	}
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"cozy", "cabin", "mountains"}, Keywords("A cozy cabin in the Mountains!"))
	assert.Empty(t, Keywords("a of it"))
}
