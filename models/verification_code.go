package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationCode is the pending e-mail confirmation code; one per user.
type VerificationCode struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      int       `gorm:"not null"`
	ExpiredAt time.Time `gorm:"not null"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (v *VerificationCode) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (v VerificationCode) IsExpired(now time.Time) bool {
	return !now.Before(v.ExpiredAt)
}
