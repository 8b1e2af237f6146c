package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ye11ow-banana/main-be/repositories"
	"github.com/ye11ow-banana/main-be/utils"
)

type TrendType string

const (
	TrendWeight  TrendType = "weight"
	TrendCalorie TrendType = "calorie"
)

type TrendItem struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

type TrendService struct {
	days repositories.DayStore
}

func NewTrendService(days repositories.DayStore) *TrendService {
	return &TrendService{days: days}
}

func (s *TrendService) Items(ctx context.Context, userID uuid.UUID, typ TrendType, start, end time.Time) ([]TrendItem, error) {
	if start.After(end) {
		return nil, &ValidationError{Field: "start_date", Reason: "start_date is after end_date"}
	}

	var (
		points []repositories.TrendPoint
		err    error
	)
	switch typ {
	case TrendWeight:
		points, err = s.days.WeightTrend(ctx, userID, start, end)
	case TrendCalorie:
		points, err = s.days.CalorieTrend(ctx, userID, start, end)
	default:
		return nil, &ValidationError{Field: "type", Value: string(typ), Reason: "expected weight or calorie"}
	}
	if err != nil {
		return nil, err
	}

	out := make([]TrendItem, 0, len(points))
	for _, p := range points {
		out = append(out, TrendItem{Date: p.Date.Format(utils.DateLayout), Value: p.Value})
	}
	return out, nil
}
