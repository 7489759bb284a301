package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/accounts/services/accounts"
	"github.com/tech-arch1tect/accounts/services/clock"
	"github.com/tech-arch1tect/accounts/services/logging"
	"github.com/tech-arch1tect/accounts/testutils"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	service *Service
	store   *accounts.GormStore
	sender  *testutils.RecordingSender
	clock   *clock.Mock
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := testutils.SetupTestDB(t, &accounts.Account{})
	clk := clock.NewMock(testutils.TestStart)
	store := accounts.NewGormStore(db, clk, logging.NewNop())
	sender := &testutils.RecordingSender{}
	cfg := testutils.GetTestConfig()

	return &fixture{
		service: NewService(&cfg.Auth, store, sender, clk, logging.NewNop()),
		store:   store,
		sender:  sender,
		clock:   clk,
	}
}

func (f *fixture) pendingAccount(t *testing.T, username, email string) *accounts.Account {
	t.Helper()
	account, err := f.store.Create(context.Background(), &accounts.Account{
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		Status:       accounts.StatusPending,
	})
	require.NoError(t, err)
	return account
}

func TestIssueCode(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	account := f.pendingAccount(t, "alice", "a@x.com")

	code, err := f.service.IssueCode(ctx, account)
	require.NoError(t, err)
	assert.Len(t, code, 32)

	stored, found, err := f.store.FindByVerificationCode(ctx, code)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, account.ID, stored.ID)
	assert.Equal(t, accounts.StatusPending, stored.Status)
	assert.True(t, stored.VerificationExpiresAt.Equal(testutils.TestStart.Add(15*time.Minute)))
}

func TestAssignCode_DoesNotPersist(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	account := &accounts.Account{Username: "alice", Email: "a@x.com", PasswordHash: "hash", Status: accounts.StatusPending}
	code, err := f.service.AssignCode(account)
	require.NoError(t, err)
	require.NotNil(t, account.VerificationCode)
	assert.Equal(t, code, *account.VerificationCode)
	assert.True(t, account.VerificationExpiresAt.Equal(testutils.TestStart.Add(15*time.Minute)))

	_, found, err := f.store.FindByVerificationCode(ctx, code)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = f.store.Create(ctx, account)
	require.NoError(t, err)
	stored, found, err := f.store.FindByVerificationCode(ctx, code)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, account.ID, stored.ID)
}

func TestIssueCode_UniquePerCall(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	account := f.pendingAccount(t, "alice", "a@x.com")

	first, err := f.service.IssueCode(ctx, account)
	require.NoError(t, err)
	second, err := f.service.IssueCode(ctx, account)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	_, found, err := f.store.FindByVerificationCode(ctx, first)
	require.NoError(t, err)
	assert.False(t, found, "the previous code is overwritten")
}

func TestVerify_ActivatesAndConsumes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	account := f.pendingAccount(t, "alice", "a@x.com")

	code, err := f.service.IssueCode(ctx, account)
	require.NoError(t, err)

	verified, err := f.service.Verify(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, accounts.StatusActive, verified.Status)
	assert.Nil(t, verified.VerificationCode)

	_, err = f.service.Verify(ctx, code)
	assert.True(t, errors.Is(err, ErrInvalidCode))
}

func TestVerify_UnknownCode(t *testing.T) {
	f := setup(t)

	_, err := f.service.Verify(context.Background(), "0000")
	assert.True(t, errors.Is(err, ErrInvalidCode))

	_, err = f.service.Verify(context.Background(), "")
	assert.True(t, errors.Is(err, ErrInvalidCode))
}

func TestVerify_ExpiredCodeIsClearedThenInvalid(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	account := f.pendingAccount(t, "alice", "a@x.com")

	code, err := f.service.IssueCode(ctx, account)
	require.NoError(t, err)

	f.clock.Advance(16 * time.Minute)

	_, err = f.service.Verify(ctx, code)
	assert.True(t, errors.Is(err, ErrCodeExpired))

	_, err = f.service.Verify(ctx, code)
	assert.True(t, errors.Is(err, ErrInvalidCode))

	stored, _, err := f.store.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, accounts.StatusPending, stored.Status)
	assert.Nil(t, stored.VerificationCode)
}

func TestVerify_AtExactExpiryStillValid(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	account := f.pendingAccount(t, "alice", "a@x.com")

	code, err := f.service.IssueCode(ctx, account)
	require.NoError(t, err)

	f.clock.Advance(15 * time.Minute)

	_, err = f.service.Verify(ctx, code)
	assert.NoError(t, err)
}

func TestResend(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	account := f.pendingAccount(t, "alice", "a@x.com")

	original, err := f.service.IssueCode(ctx, account)
	require.NoError(t, err)

	require.NoError(t, f.service.Resend(ctx, "a@x.com"))

	sent, ok := f.sender.Last()
	require.True(t, ok)
	assert.Equal(t, "a@x.com", sent.Email)
	assert.NotEqual(t, original, sent.Code)
	assert.True(t, sent.ExpiresAt.Equal(testutils.TestStart.Add(15*time.Minute)))

	_, err = f.service.Verify(ctx, original)
	assert.True(t, errors.Is(err, ErrInvalidCode))

	_, err = f.service.Verify(ctx, sent.Code)
	assert.NoError(t, err)
}

func TestResend_Errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	err := f.service.Resend(ctx, "nobody@x.com")
	assert.True(t, errors.Is(err, ErrAccountNotFound))

	account := f.pendingAccount(t, "alice", "a@x.com")
	code, err := f.service.IssueCode(ctx, account)
	require.NoError(t, err)
	_, err = f.service.Verify(ctx, code)
	require.NoError(t, err)

	err = f.service.Resend(ctx, "a@x.com")
	assert.True(t, errors.Is(err, ErrAlreadyVerified))
	assert.Equal(t, 0, f.sender.Count())
}

func TestResend_DeliveryFailureIsLoggedNotReturned(t *testing.T) {
	db := testutils.SetupTestDB(t, &accounts.Account{})
	clk := clock.NewMock(testutils.TestStart)
	store := accounts.NewGormStore(db, clk, logging.NewNop())
	core, logs := observer.New(zap.WarnLevel)

	sender := &testutils.MockCodeSender{}
	sender.On("SendVerificationCode", "a@x.com", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(errors.New("smtp unavailable"))

	cfg := testutils.GetTestConfig()
	service := NewService(&cfg.Auth, store, sender, clk, logging.NewWithLogger(zap.New(core)))

	_, err := store.Create(context.Background(), &accounts.Account{
		Username: "alice", Email: "a@x.com", PasswordHash: "hash", Status: accounts.StatusPending,
	})
	require.NoError(t, err)

	require.NoError(t, service.Resend(context.Background(), "a@x.com"))
	sender.AssertExpectations(t)

	entries := logs.FilterMessage("verification code delivery failed").All()
	require.Len(t, entries, 1)
	for _, field := range entries[0].Context {
		assert.NotEqual(t, "code", field.Key)
	}
}
