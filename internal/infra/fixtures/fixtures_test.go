package fixtures_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"rara/internal/app/uow"
	domainbooking "rara/internal/domain/booking"
	domainproperty "rara/internal/domain/property"
	"rara/internal/infra/fixtures"
	"rara/internal/infra/security"
	"rara/internal/infra/storage/memory"
)

func TestLoadSeedsOnce(t *testing.T) {
	ctx := context.Background()
	factory := memory.Factory{Store: memory.NewStore()}
	conversations := memory.NewConversationRepository()
	hasher := security.BcryptHasher{Cost: bcrypt.MinCost}
	loader := fixtures.Loader{
		UoWFactory:    factory,
		Conversations: conversations,
		Passwords:     hasher,
		Clock:         func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) },
	}

	require.NoError(t, loader.Load(ctx))
	require.NoError(t, loader.Load(ctx))

	err := uow.Run(ctx, factory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		props, err := unit.Properties().List(ctx, domainproperty.Filter{})
		require.NoError(t, err)
		require.Len(t, props, 8)
		assert.Equal(t, domainproperty.ID("1"), props[0].ID)

		bookings, err := unit.Bookings().List(ctx, domainbooking.Filter{})
		require.NoError(t, err)
		assert.Len(t, bookings, 5)

		user, err := unit.Users().ByEmail(ctx, "sarah@rara.dev")
		require.NoError(t, err)
		assert.NoError(t, hasher.Compare(user.PasswordHash, fixtures.DevPassword))
		return nil
	})
	require.NoError(t, err)

	for _, id := range []string{"C001", "C002", "C003"} {
		conv, err := conversations.ByID(ctx, id)
		require.NoError(t, err, id)
		assert.NotEmpty(t, conv.Messages, id)
	}
	thread, err := conversations.ByID(ctx, "C001")
	require.NoError(t, err)
	assert.Len(t, thread.Messages, 2)
}

func TestLoadWithoutConversationStore(t *testing.T) {
	loader := fixtures.Loader{
		UoWFactory: memory.Factory{Store: memory.NewStore()},
		Passwords:  security.BcryptHasher{Cost: bcrypt.MinCost},
	}

	assert.NoError(t, loader.Load(context.Background()))
}
