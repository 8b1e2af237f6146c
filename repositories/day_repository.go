package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DayRepository struct {
	db *gorm.DB
}

func NewDayRepository(db *gorm.DB) *DayRepository {
	return &DayRepository{db: db}
}

func (r *DayRepository) Transaction(ctx context.Context, fn func(tx DayWriter) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DayRepository{db: tx})
	})
}

func (r *DayRepository) GetByDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.Day, error) {
	var day models.Day
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, utils.DateOnly(date)).
		First(&day).Error
	if err != nil {
		return nil, translate(err)
	}
	return &day, nil
}

func (r *DayRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Day, error) {
	var day models.Day
	if err := r.db.WithContext(ctx).First(&day, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &day, nil
}

func (r *DayRepository) CreateIfAbsent(ctx context.Context, day *models.Day) (bool, error) {
	day.Date = utils.DateOnly(day.Date)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(day)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *DayRepository) IncrementTotals(ctx context.Context, dayID uuid.UUID, delta models.DayTotals) error {
	res := r.db.WithContext(ctx).
		Model(&models.Day{}).
		Where("id = ?", dayID).
		Updates(map[string]interface{}{
			"total_proteins":      gorm.Expr("total_proteins + ?", delta.Proteins),
			"total_fats":          gorm.Expr("total_fats + ?", delta.Fats),
			"total_carbs":         gorm.Expr("total_carbs + ?", delta.Carbs),
			"total_calories":      gorm.Expr("total_calories + ?", delta.Calories),
			"additional_calories": gorm.Expr("additional_calories + ?", delta.AdditionalCalories),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DayRepository) AddProducts(ctx context.Context, rows []models.DayProduct) error {
	if len(rows) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(&rows).Error)
}

func (r *DayRepository) UpsertProducts(ctx context.Context, rows []models.DayProduct) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "day_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"weight": gorm.Expr("day_products.weight + excluded.weight"),
			}),
		}).
		Create(&rows).Error
}

func (r *DayRepository) List(ctx context.Context, userID uuid.UUID, f DayFilter, p utils.Pagination) ([]models.Day, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Day{}).Where("user_id = ?", userID)
	if !f.Start.IsZero() {
		base = base.Where("date >= ?", utils.DateOnly(f.Start))
	}
	if !f.End.IsZero() {
		base = base.Where("date <= ?", utils.DateOnly(f.End))
	}

	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var days []models.Day
	err := base.Order(dayOrder(f.SortBy)).Offset(p.Offset()).Limit(p.Limit()).Find(&days).Error
	return days, total, err
}

func dayOrder(s DaySortBy) string {
	switch s {
	case SortOldest:
		return "date ASC"
	case SortMostCalories:
		return "total_calories DESC, date DESC"
	case SortLowestWeight:
		return "body_weight ASC NULLS LAST, date DESC"
	default:
		return "date DESC"
	}
}

func (r *DayRepository) ProductsForDays(ctx context.Context, dayIDs []uuid.UUID) ([]models.DayProduct, error) {
	if len(dayIDs) == 0 {
		return nil, nil
	}
	var rows []models.DayProduct
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("day_id IN ?", dayIDs).
		Order("day_id, weight DESC").
		Find(&rows).Error
	return rows, err
}

// FirstAndLast returns the user's earliest and latest days, or ErrNotFound
// when the user has none.
func (r *DayRepository) FirstAndLast(ctx context.Context, userID uuid.UUID) (*models.Day, *models.Day, error) {
	var first, last models.Day
	db := r.db.WithContext(ctx).Where("user_id = ?", userID).Session(&gorm.Session{})
	if err := db.Order("date ASC").First(&first).Error; err != nil {
		return nil, nil, translate(err)
	}
	if err := db.Order("date DESC").First(&last).Error; err != nil {
		return nil, nil, translate(err)
	}
	return &first, &last, nil
}

func (r *DayRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Day, error) {
	var days []models.Day
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date ASC").Find(&days).Error
	return days, err
}

// UpdateMeasurements persists body weight, body fat and trend of days.
func (r *DayRepository) UpdateMeasurements(ctx context.Context, days []models.Day) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range days {
			err := tx.Model(&models.Day{}).
				Where("id = ?", d.ID).
				Updates(map[string]interface{}{
					"body_weight": d.BodyWeight,
					"body_fat":    d.BodyFat,
					"trend":       d.Trend,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *DayRepository) WeightTrend(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]TrendPoint, error) {
	return r.trend(ctx, "trend", "trend IS NOT NULL", userID, start, end)
}

func (r *DayRepository) CalorieTrend(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]TrendPoint, error) {
	return r.trend(ctx, "total_calories", "", userID, start, end)
}

func (r *DayRepository) trend(ctx context.Context, column, extra string, userID uuid.UUID, start, end time.Time) ([]TrendPoint, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Day{}).
		Select("date, "+column+" AS value").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, utils.DateOnly(start), utils.DateOnly(end))
	if extra != "" {
		q = q.Where(extra)
	}
	var points []TrendPoint
	err := q.Order("date ASC").Scan(&points).Error
	return points, err
}
