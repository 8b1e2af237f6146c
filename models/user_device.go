package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDevice is a mobile push endpoint registered with SNS.
type UserDevice struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_devices_user_token,priority:1"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Platform    string    `gorm:"size:16;not null"` // android | ios
	TokenHash   string    `gorm:"size:64;not null;uniqueIndex:ux_devices_user_token,priority:2"`
	EndpointARN string    `gorm:"size:256;not null"`
	Enabled     bool      `gorm:"not null;default:true"`
	UpdatedAt   time.Time
	CreatedAt   time.Time
}
