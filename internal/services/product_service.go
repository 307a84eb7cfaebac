package services

import (
	"fmt"
	"log"

	"catalog/internal/models"
	"catalog/internal/repositories"
)

// ProductService is the business-facing contract over products.
type ProductService interface {
	SaveProduct(product *models.Product) (*models.Product, error)
	GetAllProducts() ([]models.Product, error)
	// GetProductByID returns an error wrapping models.ErrProductNotFound when the product is absent.
	GetProductByID(id uint) (*models.Product, error)
	// UpdateProduct overwrites the product stored under id. It returns an error
	// wrapping models.ErrProductNotFound, and stores nothing, when id is unknown.
	UpdateProduct(id uint, product *models.Product) (*models.Product, error)
	DeleteProduct(id uint) error
}

// EventPublisher delivers product events to interested consumers.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// productService handles business logic related to products.
type productService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
}

// NewProductService creates a new ProductService. publisher may be nil, in
// which case no events are published.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) ProductService {
	return &productService{
		repo:      repo,
		publisher: publisher,
	}
}

// SaveProduct persists a new or given product.
func (s *productService) SaveProduct(product *models.Product) (*models.Product, error) {
	if err := s.repo.Save(product); err != nil {
		return nil, err
	}
	s.publish(models.ProductCreated, product.ID, product)
	return product, nil
}

// GetAllProducts retrieves all products in storage order.
func (s *productService) GetAllProducts() ([]models.Product, error) {
	return s.repo.FindAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *productService) GetProductByID(id uint) (*models.Product, error) {
	return s.repo.FindByID(id)
}

// UpdateProduct replaces the product stored under id.
func (s *productService) UpdateProduct(id uint, product *models.Product) (*models.Product, error) {
	exists, err := s.repo.ExistsByID(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("product with ID %d not found for update: %w", id, models.ErrProductNotFound)
	}

	product.ID = id
	if err := s.repo.Save(product); err != nil {
		return nil, err
	}
	s.publish(models.ProductUpdated, id, product)
	return product, nil
}

// DeleteProduct deletes a product by its ID. Unknown IDs are not an error.
func (s *productService) DeleteProduct(id uint) error {
	if err := s.repo.DeleteByID(id); err != nil {
		return err
	}
	s.publish(models.ProductDeleted, id, nil)
	return nil
}

func (s *productService) publish(eventType models.ProductEventType, id uint, product *models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(models.NewProductEvent(eventType, id, product)); err != nil {
		log.Printf("Warning: failed to publish %s for product %d: %v", eventType, id, err)
	}
}
