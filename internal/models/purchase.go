// internal/models/purchase.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase records a user acquiring a beat. The composite unique index is
// what resolves two concurrent purchase attempts: the second insert is
// rejected by the store, not by application-level locking.
type Purchase struct {
	BaseModel
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_purchases_user_beat"`
	BeatID       uuid.UUID `json:"beat_id" gorm:"type:uuid;not null;uniqueIndex:idx_purchases_user_beat"`
	PricePaid    float64   `json:"price_paid" gorm:"type:decimal(10,2);not null"`
	PurchaseDate time.Time `json:"purchase_date" gorm:"autoCreateTime"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Beat Beat `json:"beat,omitempty" gorm:"foreignKey:BeatID"`
}
