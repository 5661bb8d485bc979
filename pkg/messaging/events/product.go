package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/google/uuid"
)

// ProductUpdatedEvent announces a product update and the membership changes it caused.
type ProductUpdatedEvent struct {
	Carrier     map[string]string `json:"carrier,omitempty"`
	ProductID   uuid.UUID         `json:"product_id"`
	Collections []uuid.UUID       `json:"collections"`
	Added       []uuid.UUID       `json:"added"`
	Removed     []uuid.UUID       `json:"removed"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (e ProductUpdatedEvent) Subject() string {
	return messaging.ProductUpdatedSubject
}

func (e ProductUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// ProductDeletedEvent announces a deleted product and the collections it left.
type ProductDeletedEvent struct {
	Carrier     map[string]string `json:"carrier,omitempty"`
	ProductID   uuid.UUID         `json:"product_id"`
	Collections []uuid.UUID       `json:"collections"`
	DeletedAt   time.Time         `json:"deleted_at"`
}

func (e ProductDeletedEvent) Subject() string {
	return messaging.ProductDeletedSubject
}

func (e ProductDeletedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
