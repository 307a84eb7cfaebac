package repositories

import (
	"catalog/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// Save inserts the product when its ID is zero and overwrites the stored record otherwise.
	// The passed product is updated in place with the stored ID and timestamps.
	Save(product *models.Product) error
	FindAll() ([]models.Product, error)
	// FindByID returns an error wrapping models.ErrProductNotFound when the ID is unknown.
	FindByID(id uint) (*models.Product, error)
	ExistsByID(id uint) (bool, error)
	// DeleteByID succeeds silently when the ID is unknown.
	DeleteByID(id uint) error
}
