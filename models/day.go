package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Day is one user's aggregated nutrition record for a calendar date.
type Day struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_days_user_date,priority:1"`
	User   *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Date   time.Time `gorm:"type:date;not null;uniqueIndex:ux_days_user_date,priority:2"`

	BodyWeight decimal.NullDecimal `gorm:"type:numeric(6,2)"`
	BodyFat    decimal.NullDecimal `gorm:"type:numeric(5,2)"`
	Trend      decimal.NullDecimal `gorm:"type:numeric(6,2)"` // smoothed body weight

	TotalProteins      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalFats          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalCarbs         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalCalories      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	AdditionalCalories decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Day) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DayProduct records how many grams of a product were eaten on a day.
type DayProduct struct {
	DayID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Day       *Day      `gorm:"foreignKey:DayID;constraint:OnDelete:CASCADE"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Weight    int       `gorm:"not null"`
}

// DayTotals is the additive part of a Day.
type DayTotals struct {
	Proteins           decimal.Decimal
	Fats               decimal.Decimal
	Carbs              decimal.Decimal
	Calories           decimal.Decimal
	AdditionalCalories decimal.Decimal
}

func (t DayTotals) Add(o DayTotals) DayTotals {
	return DayTotals{
		Proteins:           t.Proteins.Add(o.Proteins),
		Fats:               t.Fats.Add(o.Fats),
		Carbs:              t.Carbs.Add(o.Carbs),
		Calories:           t.Calories.Add(o.Calories),
		AdditionalCalories: t.AdditionalCalories.Add(o.AdditionalCalories),
	}
}
