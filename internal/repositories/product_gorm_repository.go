package repositories

import (
	"errors"
	"fmt"
	"time"

	"catalog/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Save creates or updates a product.
func (r *GORMProductRepository) Save(product *models.Product) error {
	keepCreatedAt := false
	if product.ID != 0 && product.CreatedAt.IsZero() {
		exists, err := r.ExistsByID(product.ID)
		if err != nil {
			return err
		}
		keepCreatedAt = exists
		if !exists {
			// An explicit ID that is not stored yet is an insert.
			product.CreatedAt = time.Now()
		}
	}

	tx := r.db
	if keepCreatedAt {
		// Updates usually arrive without created_at; keep the stored one.
		tx = tx.Omit("CreatedAt")
	}
	if err := tx.Save(product).Error; err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	if keepCreatedAt {
		if err := r.db.First(product, "id = ?", product.ID).Error; err != nil {
			return fmt.Errorf("failed to reload product %d: %w", product.ID, err)
		}
	}
	return nil
}

// FindAll retrieves all products ordered by ID.
func (r *GORMProductRepository) FindAll() ([]models.Product, error) {
	products := make([]models.Product, 0)
	if err := r.db.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a single product by its ID.
func (r *GORMProductRepository) FindByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// ExistsByID reports whether a product with the given ID is stored.
func (r *GORMProductRepository) ExistsByID(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product %d: %w", id, err)
	}
	return count > 0, nil
}

// DeleteByID deletes a product by its ID.
func (r *GORMProductRepository) DeleteByID(id uint) error {
	if err := r.db.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}
