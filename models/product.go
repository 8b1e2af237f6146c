package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product is a catalog entry; nutrition values are per 100 g.
type Product struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name     string          `gorm:"not null;uniqueIndex"`
	Proteins decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	Fats     decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	Carbs    decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	Calories decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	// Source holds provenance for rows synthesized by the extraction
	// oracle (confidence, assumptions, raw name). Empty for manual rows.
	Source    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
