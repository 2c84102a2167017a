package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rara/internal/app/commands"
	"rara/internal/app/uow"
)

type echoCommand struct {
	Name  string `validate:"required"`
	Token string
}

func (echoCommand) Key() string              { return "test.echo" }
func (c echoCommand) IdempotencyKey() string { return c.Token }
func (echoCommand) ResultPrototype() any     { return &echoResult{} }

type echoResult struct {
	Greeting string `json:"greeting"`
}

type readCommand struct{}

func (readCommand) Key() string    { return "test.read" }
func (readCommand) ReadOnly() bool { return true }

type fakeUnit struct {
	uow.UnitOfWork
	committed  bool
	rolledBack bool
}

func (u *fakeUnit) Commit(context.Context) error   { u.committed = true; return nil }
func (u *fakeUnit) Rollback(context.Context) error { u.rolledBack = true; return nil }

type fakeFactory struct {
	units []*fakeUnit
	opts  []uow.TxOptions
}

func (f *fakeFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	u := &fakeUnit{}
	f.units = append(f.units, u)
	f.opts = append(f.opts, opts)
	return u, nil
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(IdempotencyRecord), args.Bool(1), args.Error(2)
}

func (m *mockStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	return m.Called(ctx, rec).Error(0)
}

type countingBus struct {
	calls  int
	result any
	err    error
	sawUoW bool
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls++
	_, b.sawUoW = uow.FromContext(ctx)
	return b.result, b.err
}

func TestTransactionCommitsOnSuccess(t *testing.T) {
	factory := &fakeFactory{}
	next := &countingBus{result: "ok"}
	bus := ChainCommands(next, Transaction(factory, nil))

	res, err := bus.Dispatch(context.Background(), echoCommand{Name: "x"})

	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.True(t, next.sawUoW)
	require.Len(t, factory.units, 1)
	assert.True(t, factory.units[0].committed)
	assert.False(t, factory.units[0].rolledBack)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	factory := &fakeFactory{}
	boom := errors.New("boom")
	bus := ChainCommands(&countingBus{err: boom}, Transaction(factory, nil))

	_, err := bus.Dispatch(context.Background(), echoCommand{Name: "x"})

	assert.ErrorIs(t, err, boom)
	require.Len(t, factory.units, 1)
	assert.False(t, factory.units[0].committed)
	assert.True(t, factory.units[0].rolledBack)
}

func TestTransactionHonoursReadOnlyCommands(t *testing.T) {
	factory := &fakeFactory{}
	bus := ChainCommands(&countingBus{}, Transaction(factory, nil))

	_, err := bus.Dispatch(context.Background(), readCommand{})

	require.NoError(t, err)
	require.Len(t, factory.opts, 1)
	assert.True(t, factory.opts[0].ReadOnly)
}

func TestTransactionReusesBoundUnit(t *testing.T) {
	factory := &fakeFactory{}
	bus := ChainCommands(&countingBus{}, Transaction(factory, nil))
	ctx := uow.ContextWithUnitOfWork(context.Background(), &fakeUnit{})

	_, err := bus.Dispatch(ctx, echoCommand{Name: "x"})

	require.NoError(t, err)
	assert.Empty(t, factory.units)
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	store := &mockStore{}
	store.On("Get", mock.Anything, "test.echo:k1").
		Return(IdempotencyRecord{Key: "test.echo:k1", Payload: []byte(`{"greeting":"hi"}`)}, true, nil)
	next := &countingBus{}
	bus := ChainCommands(next, Idempotency(store, nil))

	res, err := bus.Dispatch(context.Background(), echoCommand{Name: "x", Token: "k1"})

	require.NoError(t, err)
	assert.Equal(t, &echoResult{Greeting: "hi"}, res)
	assert.Zero(t, next.calls)
	store.AssertExpectations(t)
}

func TestIdempotencyStoresFirstResult(t *testing.T) {
	store := &mockStore{}
	store.On("Get", mock.Anything, "test.echo:k2").Return(IdempotencyRecord{}, false, nil)
	store.On("Save", mock.Anything, mock.MatchedBy(func(rec IdempotencyRecord) bool {
		return rec.Key == "test.echo:k2" && string(rec.Payload) == `{"greeting":"hello"}`
	})).Return(nil)
	next := &countingBus{result: &echoResult{Greeting: "hello"}}
	bus := ChainCommands(next, Idempotency(store, nil))

	res, err := bus.Dispatch(context.Background(), echoCommand{Name: "x", Token: "k2"})

	require.NoError(t, err)
	assert.Equal(t, &echoResult{Greeting: "hello"}, res)
	assert.Equal(t, 1, next.calls)
	store.AssertExpectations(t)
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	store := &mockStore{}
	store.On("Get", mock.Anything, "test.echo:k3").Return(IdempotencyRecord{}, false, nil)
	boom := errors.New("boom")
	bus := ChainCommands(&countingBus{err: boom}, Idempotency(store, nil))

	_, err := bus.Dispatch(context.Background(), echoCommand{Name: "x", Token: "k3"})

	assert.ErrorIs(t, err, boom)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIdempotencySkipsEmptyKey(t *testing.T) {
	store := &mockStore{}
	next := &countingBus{result: "ok"}
	bus := ChainCommands(next, Idempotency(store, nil))

	_, err := bus.Dispatch(context.Background(), echoCommand{Name: "x"})

	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestValidationRejectsMissingFields(t *testing.T) {
	next := &countingBus{}
	bus := ChainCommands(next, Validation(NewStructValidator()))

	_, err := bus.Dispatch(context.Background(), echoCommand{})

	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Name is required", err.Error())
	assert.Zero(t, next.calls)
}

type denyAll struct{ err error }

func (d denyAll) Authorize(context.Context, any) error { return d.err }

func TestChainRunsOutermostFirst(t *testing.T) {
	denied := errors.New("denied")
	factory := &fakeFactory{}
	bus := ChainCommands(&countingBus{},
		Authorization(denyAll{err: denied}),
		Transaction(factory, nil),
	)

	_, err := bus.Dispatch(context.Background(), echoCommand{Name: "x"})

	assert.ErrorIs(t, err, denied)
	assert.Empty(t, factory.units)
}
