package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"reviewhub/internal/config"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// uniqueViolation builds the driver error Postgres reports when a unique
// index rejects a row.
func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(username string) error {
	args := m.Called(username)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

// MockNotifier mocks the notifier.Notifier interface and records the last
// dispatched code so tests can check it against the stored hash.
type MockNotifier struct {
	mock.Mock
	LastCode string
}

func (m *MockNotifier) SendConfirmation(ctx context.Context, username, email, code string) error {
	m.LastCode = code
	args := m.Called(ctx, username, email, code)
	return args.Error(0)
}

func newTestAuthService(userRepo *MockUserRepository, n *MockNotifier) AuthService {
	cfg := &config.Config{
		JWTSecret: "test-secret",
		TokenTTL:  24 * time.Hour,
	}
	return NewAuthService(userRepo, n, cfg)
}

func TestSignup_NewUser(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := newTestAuthService(mockUserRepo, mockNotifier)

	mockUserRepo.On("FindByEmail", "new@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByUsername", "newuser").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil)
	mockNotifier.On("SendConfirmation", mock.Anything, "newuser", "new@example.com", mock.AnythingOfType("string")).Return(nil)

	user, err := authService.Signup(context.Background(), "newuser", "new@example.com")

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "newuser", user.Username)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Len(t, mockNotifier.LastCode, 6)
	assert.NoError(t, auth.VerifyConfirmationCode(user.ConfirmationCode, mockNotifier.LastCode))
	mockUserRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestSignup_SamePairIsIdempotent(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := newTestAuthService(mockUserRepo, mockNotifier)

	oldHash, _ := auth.HashConfirmationCode("111111")
	existing := &models.User{
		ID:               "existing-id",
		Username:         "repeat",
		Email:            "repeat@example.com",
		Role:             models.RoleUser,
		ConfirmationCode: oldHash,
	}

	mockUserRepo.On("FindByEmail", "repeat@example.com").Return(existing, nil)
	mockUserRepo.On("FindByUsername", "repeat").Return(existing, nil)
	mockUserRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil)
	mockNotifier.On("SendConfirmation", mock.Anything, "repeat", "repeat@example.com", mock.AnythingOfType("string")).Return(nil)

	user, err := authService.Signup(context.Background(), "repeat", "repeat@example.com")

	assert.NoError(t, err)
	assert.Equal(t, "existing-id", user.ID)
	// a fresh code replaces the stored one on re-signup
	assert.NotEqual(t, oldHash, user.ConfirmationCode)
	assert.NoError(t, auth.VerifyConfirmationCode(user.ConfirmationCode, mockNotifier.LastCode))
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything)
	mockUserRepo.AssertExpectations(t)
}

func TestSignup_EmailBoundToOtherUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := newTestAuthService(mockUserRepo, mockNotifier)

	existing := &models.User{ID: "other-id", Username: "someoneelse", Email: "taken@example.com"}
	mockUserRepo.On("FindByEmail", "taken@example.com").Return(existing, nil)
	mockUserRepo.On("FindByUsername", "newcomer").Return(nil, gorm.ErrRecordNotFound)

	user, err := authService.Signup(context.Background(), "newcomer", "taken@example.com")

	assert.ErrorIs(t, err, ErrIdentityMismatch)
	assert.Nil(t, user)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything)
	mockNotifier.AssertNotCalled(t, "SendConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignup_UsernameBoundToOtherEmail(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := newTestAuthService(mockUserRepo, mockNotifier)

	existing := &models.User{ID: "other-id", Username: "taken", Email: "original@example.com"}
	mockUserRepo.On("FindByEmail", "fresh@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByUsername", "taken").Return(existing, nil)

	user, err := authService.Signup(context.Background(), "taken", "fresh@example.com")

	assert.ErrorIs(t, err, ErrIdentityMismatch)
	assert.Nil(t, user)
}

func TestSignup_ReservedUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := newTestAuthService(mockUserRepo, mockNotifier)

	for _, username := range []string{"me", "Me", "ME"} {
		user, err := authService.Signup(context.Background(), username, "me@example.com")

		assert.Error(t, err)
		assert.Nil(t, user)

		var vErr *ValidationError
		assert.True(t, errors.As(err, &vErr))
		assert.Equal(t, "username", vErr.Field)
	}
	mockUserRepo.AssertNotCalled(t, "FindByEmail", mock.Anything)
}

func TestSignup_UniqueViolationOnInsert(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := newTestAuthService(mockUserRepo, mockNotifier)

	mockUserRepo.On("FindByEmail", "race@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByUsername", "racer").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*models.User")).Return(uniqueViolation())

	user, err := authService.Signup(context.Background(), "racer", "race@example.com")

	assert.ErrorIs(t, err, ErrIdentityMismatch)
	assert.Nil(t, user)
}

func TestObtainToken_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := newTestAuthService(mockUserRepo, mockNotifier)

	hash, _ := auth.HashConfirmationCode("123456")
	user := &models.User{
		ID:               "user-id",
		Username:         "confirmed",
		Email:            "confirmed@example.com",
		Role:             models.RoleUser,
		ConfirmationCode: hash,
	}
	mockUserRepo.On("FindByUsername", "confirmed").Return(user, nil)

	token, err := authService.ObtainToken(context.Background(), "confirmed", "123456")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-id", claims.UserID)
	assert.Equal(t, "confirmed", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestObtainToken_SameCodeTwice(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := newTestAuthService(mockUserRepo, mockNotifier)

	hash, _ := auth.HashConfirmationCode("123456")
	user := &models.User{ID: "user-id", Username: "confirmed", ConfirmationCode: hash}
	mockUserRepo.On("FindByUsername", "confirmed").Return(user, nil)

	first, err := authService.ObtainToken(context.Background(), "confirmed", "123456")
	assert.NoError(t, err)
	assert.NotEmpty(t, first)

	// the code is not rotated on use
	second, err := authService.ObtainToken(context.Background(), "confirmed", "123456")
	assert.NoError(t, err)
	assert.NotEmpty(t, second)
}

func TestObtainToken_UnknownUser(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := newTestAuthService(mockUserRepo, mockNotifier)

	mockUserRepo.On("FindByUsername", "ghost").Return(nil, gorm.ErrRecordNotFound)

	token, err := authService.ObtainToken(context.Background(), "ghost", "123456")

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, token)
}

func TestObtainToken_WrongCode(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := newTestAuthService(mockUserRepo, mockNotifier)

	hash, _ := auth.HashConfirmationCode("123456")
	user := &models.User{ID: "user-id", Username: "confirmed", ConfirmationCode: hash}
	mockUserRepo.On("FindByUsername", "confirmed").Return(user, nil)

	token, err := authService.ObtainToken(context.Background(), "confirmed", "654321")

	assert.ErrorIs(t, err, ErrInvalidConfirmationCode)
	assert.Empty(t, token)
}

func TestObtainToken_NoCodeIssued(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := newTestAuthService(mockUserRepo, mockNotifier)

	user := &models.User{ID: "user-id", Username: "pending"}
	mockUserRepo.On("FindByUsername", "pending").Return(user, nil)

	token, err := authService.ObtainToken(context.Background(), "pending", "123456")

	assert.ErrorIs(t, err, ErrInvalidConfirmationCode)
	assert.Empty(t, token)
}

func TestValidateToken_Expired(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := newTestAuthService(mockUserRepo, mockNotifier)

	claims := Claims{
		UserID:   "user-id",
		Username: "expired",
		Role:     models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte("test-secret"))

	validated, err := authService.ValidateToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, validated)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := newTestAuthService(mockUserRepo, mockNotifier)

	claims := Claims{
		UserID: "user-id",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte("another-secret"))

	validated, err := authService.ValidateToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, validated)
}
