package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductEventType names what happened to a product.
type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// ProductEvent is published after a product mutation has been persisted.
type ProductEvent struct {
	ID         string           `json:"id"`
	Type       ProductEventType `json:"type"`
	ProductID  uint             `json:"product_id"`
	Product    *Product         `json:"product,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewProductEvent builds an event with a fresh ID. product may be nil for deletions.
func NewProductEvent(eventType ProductEventType, productID uint, product *Product) ProductEvent {
	return ProductEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		ProductID:  productID,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
}
