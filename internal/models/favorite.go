// internal/models/favorite.go
package models

import "github.com/google/uuid"

// Favorite and CartItem are plain many-to-many join rows between users and
// beats. The composite primary key makes adds naturally idempotent.

type Favorite struct {
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	BeatID uuid.UUID `json:"beat_id" gorm:"type:uuid;primaryKey"`
}

type CartItem struct {
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	BeatID uuid.UUID `json:"beat_id" gorm:"type:uuid;primaryKey"`
}

func (CartItem) TableName() string {
	return "cart"
}
