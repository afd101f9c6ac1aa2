package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateAccount(ctx context.Context, account *Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockRepository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "test-secret")
	ctx := context.Background()

	var stored *Account
	mockRepo.On("GetAccountByEmail", ctx, "amina@example.org").Return(nil, nil).Once()
	mockRepo.On("CreateAccount", ctx, mock.AnythingOfType("*auth.Account")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*Account) }).Return(nil)

	account, err := service.Register(ctx, RegisterRequest{
		Email:    "Amina@Example.org",
		Password: "correct-horse",
	})
	assert.NoError(t, err)
	assert.Equal(t, "amina@example.org", account.Email)
	assert.Equal(t, RoleParticipant, account.Role)
	assert.NotEqual(t, "correct-horse", account.PasswordHash)

	mockRepo.On("GetAccountByEmail", ctx, "amina@example.org").Return(stored, nil)

	token, _, err := service.Login(ctx, "amina@example.org", "correct-horse")
	assert.NoError(t, err)

	parsed, err := service.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, account.ID.String(), parsed.AccountID)
	assert.Equal(t, RoleParticipant, parsed.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "test-secret")
	ctx := context.Background()

	mockRepo.On("GetAccountByEmail", ctx, "amina@example.org").Return(nil, nil).Once()
	mockRepo.On("CreateAccount", ctx, mock.Anything).Return(nil)
	account, err := service.Register(ctx, RegisterRequest{Email: "amina@example.org", Password: "correct-horse"})
	assert.NoError(t, err)

	mockRepo.On("GetAccountByEmail", ctx, "amina@example.org").Return(account, nil)

	_, _, err = service.Login(ctx, "amina@example.org", "battery-staple")
	assert.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	mockRepo := new(MockRepository)
	issuer := NewService(mockRepo, "secret-a")
	verifier := NewService(new(MockRepository), "secret-b")
	ctx := context.Background()

	mockRepo.On("GetAccountByEmail", ctx, "amina@example.org").Return(nil, nil).Once()
	mockRepo.On("CreateAccount", ctx, mock.Anything).Return(nil)
	account, err := issuer.Register(ctx, RegisterRequest{Email: "amina@example.org", Password: "correct-horse"})
	assert.NoError(t, err)

	mockRepo.On("GetAccountByEmail", ctx, "amina@example.org").Return(account, nil)
	token, _, err := issuer.Login(ctx, "amina@example.org", "correct-horse")
	assert.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "test-secret")
	ctx := context.Background()

	mockRepo.On("GetAccountByEmail", ctx, "amina@example.org").
		Return(&Account{ID: uuid.New(), Email: "amina@example.org"}, nil)

	_, err := service.Register(ctx, RegisterRequest{Email: "amina@example.org", Password: "correct-horse"})
	assert.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}
