package services_test

import (
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

const testJWTSecret = "test_jwt_secret"

func notFound(what string) error {
	return fmt.Errorf("user with %s: %w", what, models.ErrUserNotFound)
}

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	user := &models.User{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
	}

	mockRepo.On("GetByUsername", user.Username).Return(nil, notFound("username")).Once()
	mockRepo.On("GetByEmail", user.Email).Return(nil, notFound("email")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := authService.RegisterUser(user)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Username already taken
	mockRepo.On("GetByUsername", user.Username).Return(&models.User{ID: 1}, nil).Once()
	err = authService.RegisterUser(user)
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
	mockRepo.AssertExpectations(t)

	// Email already registered
	mockRepo.On("GetByUsername", user.Username).Return(nil, notFound("username")).Once()
	mockRepo.On("GetByEmail", user.Email).Return(&models.User{ID: 1}, nil).Once()
	err = authService.RegisterUser(user)
	assert.ErrorIs(t, err, models.ErrEmailTaken)
	mockRepo.AssertExpectations(t)

	// A concurrent registration caught by the store's unique index is still a conflict
	racer := &models.User{Username: "racer", Email: "race@example.com", Password: "password123"}
	mockRepo.On("GetByUsername", racer.Username).Return(nil, notFound("username")).Once()
	mockRepo.On("GetByEmail", racer.Email).Return(nil, notFound("email")).Once()
	mockRepo.On("Create", racer).Return(fmt.Errorf("failed to create user: %w", models.ErrEmailTaken)).Once()
	err = authService.RegisterUser(racer)
	assert.ErrorIs(t, err, models.ErrEmailTaken)
	mockRepo.AssertExpectations(t)

	// Lookup failures are not mistaken for a free username
	mockRepo.On("GetByUsername", "other").Return(nil, fmt.Errorf("connection reset")).Once()
	err = authService.RegisterUser(&models.User{Username: "other", Email: "o@example.com", Password: "secret1"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       123,
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	mockRepo.On("GetByUsername", user.Username).Return(user, nil).Once()
	token, err := authService.LoginUser("testuser", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(123), claims.UserID)
	assert.Equal(t, "testuser", claims.Username)
	assert.Greater(t, claims.ExpiresAt, time.Now().Unix())
	mockRepo.AssertExpectations(t)

	// Wrong password
	mockRepo.On("GetByUsername", user.Username).Return(user, nil).Once()
	_, err = authService.LoginUser("testuser", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Unknown user gets the same answer
	mockRepo.On("GetByUsername", "nonexistentuser").Return(nil, notFound("username")).Once()
	_, err = authService.LoginUser("nonexistentuser", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), testJWTSecret)

	sign := func(secret string, exp time.Time) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, services.Claims{
			UserID:         7,
			Username:       "testuser",
			StandardClaims: jwt.StandardClaims{ExpiresAt: exp.Unix()},
		})
		s, err := token.SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	claims, err := authService.ValidateToken(sign(testJWTSecret, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)

	_, err = authService.ValidateToken("invalid.token.string")
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	_, err = authService.ValidateToken(sign("another_secret", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	_, err = authService.ValidateToken(sign(testJWTSecret, time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestAuthService_Authenticate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{ID: 42, Username: "testuser", Password: string(hashedPassword)}

	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	token, err := authService.LoginUser("testuser", "password123")
	require.NoError(t, err)

	mockRepo.On("GetByID", uint(42)).Return(user, nil).Once()
	got, err := authService.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "testuser", got.Username)
	assert.Empty(t, got.Password)
	mockRepo.AssertExpectations(t)

	// The token outlives its user
	mockRepo.On("GetByID", uint(42)).Return(nil, fmt.Errorf("user with ID 42: %w", models.ErrUserNotFound)).Once()
	_, err = authService.Authenticate(token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
	mockRepo.AssertExpectations(t)

	// Storage failures are not reported as a bad token
	mockRepo.On("GetByID", uint(42)).Return(nil, fmt.Errorf("connection reset")).Once()
	_, err = authService.Authenticate(token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrInvalidToken)
	mockRepo.AssertExpectations(t)

	// Bad tokens never reach the repository
	_, err = authService.Authenticate("invalid.token.string")
	assert.ErrorIs(t, err, services.ErrInvalidToken)
	mockRepo.AssertNotCalled(t, "GetByID", uint(0))
}
