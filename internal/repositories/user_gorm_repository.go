package repositories

import (
	"errors"
	"fmt"

	"catalog/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database. A unique index violation is
// reported as models.ErrUsernameTaken or models.ErrEmailTaken.
func (r *GORMUserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if taken := r.takenBy(user); taken != nil {
			return fmt.Errorf("failed to create user: %w", taken)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// takenBy returns the sentinel for whichever unique field of user is already stored.
func (r *GORMUserRepository) takenBy(user *models.User) error {
	if _, err := r.GetByUsername(user.Username); err == nil {
		return fmt.Errorf("%w: %s", models.ErrUsernameTaken, user.Username)
	}
	if _, err := r.GetByEmail(user.Email); err == nil {
		return fmt.Errorf("%w: %s", models.ErrEmailTaken, user.Email)
	}
	return nil
}

// GetByUsername retrieves a user by their username.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.first("username = ?", username)
}

// GetByEmail retrieves a user by their email.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.first("email = ?", email)
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(id uint) (*models.User, error) {
	return r.first("id = ?", id)
}

func (r *GORMUserRepository) first(query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user where %s %v: %w", query, arg, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user where %s %v: %w", query, arg, err)
	}
	return &user, nil
}
