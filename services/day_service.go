package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/repositories"
	"github.com/ye11ow-banana/main-be/utils"
)

// trendSmoothing is the weight given to a new body-weight reading.
var trendSmoothing = decimal.RequireFromString("0.1")

type DayProductView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Weight    int             `json:"weight"`
	Calories  decimal.Decimal `json:"calories"`
}

type DayView struct {
	ID                 uuid.UUID           `json:"id"`
	Date               string              `json:"date"`
	BodyWeight         decimal.NullDecimal `json:"body_weight"`
	BodyFat            decimal.NullDecimal `json:"body_fat"`
	Trend              decimal.NullDecimal `json:"trend"`
	TotalProteins      decimal.Decimal     `json:"total_proteins"`
	TotalFats          decimal.Decimal     `json:"total_fats"`
	TotalCarbs         decimal.Decimal     `json:"total_carbs"`
	TotalCalories      decimal.Decimal     `json:"total_calories"`
	AdditionalCalories decimal.Decimal     `json:"additional_calories"`
	Products           []DayProductView    `json:"products"`
}

type DayPage struct {
	Days       []DayView `json:"data"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	Total      int64     `json:"total"`
	TotalPages int       `json:"total_pages"`
}

type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type SortByOption struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// MeasurementUpdate carries the fields to change; nil leaves a field as is.
type MeasurementUpdate struct {
	BodyWeight *decimal.Decimal
	BodyFat    *decimal.Decimal
}

type DayService struct {
	days repositories.DayStore
	now  func() time.Time
}

func NewDayService(days repositories.DayStore) *DayService {
	return &DayService{days: days, now: time.Now}
}

func (s *DayService) SortBys() []SortByOption {
	return []SortByOption{
		{Name: "Most recent", Code: string(repositories.SortMostRecent)},
		{Name: "Oldest", Code: string(repositories.SortOldest)},
		{Name: "Most calories", Code: string(repositories.SortMostCalories)},
		{Name: "Lowest weight", Code: string(repositories.SortLowestWeight)},
	}
}

func (s *DayService) List(ctx context.Context, userID uuid.UUID, f repositories.DayFilter, p utils.Pagination) (*DayPage, error) {
	if f.SortBy == "" {
		f.SortBy = repositories.SortMostRecent
	}
	if !f.SortBy.Valid() {
		return nil, &ValidationError{Field: "sort_by", Value: string(f.SortBy), Reason: "unknown sort order"}
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.Start.After(f.End) {
		return nil, &ValidationError{Field: "start_date", Reason: "start_date is after end_date"}
	}

	days, total, err := s.days.List(ctx, userID, f, p)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(days))
	for _, d := range days {
		ids = append(ids, d.ID)
	}
	rows, err := s.days.ProductsForDays(ctx, ids)
	if err != nil {
		return nil, err
	}
	byDay := map[uuid.UUID][]DayProductView{}
	for _, r := range rows {
		v := DayProductView{ProductID: r.ProductID, Weight: r.Weight}
		if r.Product != nil {
			v.Name = r.Product.Name
			v.Calories = r.Product.Calories.Mul(decimal.NewFromInt(int64(r.Weight))).Div(hundred).Round(2)
		}
		byDay[r.DayID] = append(byDay[r.DayID], v)
	}

	out := &DayPage{
		Days:       make([]DayView, 0, len(days)),
		Page:       p.Page,
		PerPage:    p.Limit(),
		Total:      total,
		TotalPages: p.PageCount(total),
	}
	for _, d := range days {
		v := newDayView(d)
		if ps := byDay[d.ID]; ps != nil {
			v.Products = ps
		}
		out.Days = append(out.Days, v)
	}
	return out, nil
}

func newDayView(d models.Day) DayView {
	return DayView{
		ID:                 d.ID,
		Date:               d.Date.Format(utils.DateLayout),
		BodyWeight:         d.BodyWeight,
		BodyFat:            d.BodyFat,
		Trend:              d.Trend,
		TotalProteins:      d.TotalProteins,
		TotalFats:          d.TotalFats,
		TotalCarbs:         d.TotalCarbs,
		TotalCalories:      d.TotalCalories,
		AdditionalCalories: d.AdditionalCalories,
		Products:           []DayProductView{},
	}
}

// DateRange spans the user's first and last day, or the current month when
// there are none.
func (s *DayService) DateRange(ctx context.Context, userID uuid.UUID) (*DateRange, error) {
	first, last, err := s.days.FirstAndLast(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		start, end := utils.ThisMonthRange(s.now())
		return &DateRange{StartDate: start.Format(utils.DateLayout), EndDate: end.Format(utils.DateLayout)}, nil
	}
	if err != nil {
		return nil, err
	}
	return &DateRange{
		StartDate: first.Date.Format(utils.DateLayout),
		EndDate:   last.Date.Format(utils.DateLayout),
	}, nil
}

// UpdateMeasurements sets body weight and fat on one of the user's days and
// recomputes the smoothed weight trend of every day from then on.
func (s *DayService) UpdateMeasurements(ctx context.Context, userID, dayID uuid.UUID, in MeasurementUpdate) (*DayView, error) {
	if in.BodyWeight != nil && !in.BodyWeight.IsPositive() {
		return nil, &ValidationError{Field: "body_weight", Value: in.BodyWeight.String(), Reason: "must be positive"}
	}
	if in.BodyFat != nil && (in.BodyFat.IsNegative() || in.BodyFat.GreaterThan(hundred)) {
		return nil, &ValidationError{Field: "body_fat", Value: in.BodyFat.String(), Reason: "must be between 0 and 100"}
	}

	day, err := s.days.GetByID(ctx, dayID)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && day.UserID != userID) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	days, err := s.days.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range days {
		if days[i].ID != dayID {
			continue
		}
		if in.BodyWeight != nil {
			days[i].BodyWeight = decimal.NewNullDecimal(in.BodyWeight.Round(2))
		}
		if in.BodyFat != nil {
			days[i].BodyFat = decimal.NewNullDecimal(in.BodyFat.Round(2))
		}
	}

	changed := smoothTrends(days, dayID)
	if err := s.days.UpdateMeasurements(ctx, changed); err != nil {
		return nil, err
	}
	for _, d := range days {
		if d.ID == dayID {
			v := newDayView(d)
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

// smoothTrends recomputes trends over days (ordered by date) in place and
// returns the days that need saving: the edited one plus any whose trend
// moved. A day without a weight reading has no trend.
func smoothTrends(days []models.Day, edited uuid.UUID) []models.Day {
	var changed []models.Day
	var prev decimal.NullDecimal
	for i := range days {
		d := &days[i]
		next := decimal.NullDecimal{}
		if d.BodyWeight.Valid {
			w := d.BodyWeight.Decimal
			if prev.Valid {
				w = prev.Decimal.Add(trendSmoothing.Mul(w.Sub(prev.Decimal)))
			}
			next = decimal.NewNullDecimal(w.Round(2))
			prev = next
		}
		moved := next.Valid != d.Trend.Valid || (next.Valid && !next.Decimal.Equal(d.Trend.Decimal))
		d.Trend = next
		if moved || d.ID == edited {
			changed = append(changed, *d)
		}
	}
	return changed
}
