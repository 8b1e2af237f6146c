package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/repositories"
	"github.com/ye11ow-banana/main-be/utils"
)

type DayProductInput struct {
	UserID    uuid.UUID `json:"user_id" binding:"required"`
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Weight    string    `json:"weight" binding:"required"`
}

// DayCreation adds eaten products and extra calories to the days of one
// date, per user.
type DayCreation struct {
	Date               time.Time
	AdditionalCalories map[uuid.UUID]decimal.Decimal
	Products           []DayProductInput
}

// DayEvent is emitted after a day changed.
type DayEvent struct {
	UserID        uuid.UUID       `json:"user_id"`
	Date          string          `json:"date"`
	AddedCalories decimal.Decimal `json:"added_calories"`
}

type dayPublisher interface {
	Publish(ctx context.Context, ev DayEvent)
}

type DayCreationService struct {
	log      *logger.Logger
	days     repositories.DayStore
	products repositories.ProductStore
	events   dayPublisher
}

func NewDayCreationService(log *logger.Logger, days repositories.DayStore, products repositories.ProductStore, events dayPublisher) *DayCreationService {
	return &DayCreationService{log: log, days: days, products: products, events: events}
}

type userProduct struct {
	userID    uuid.UUID
	productID uuid.UUID
}

type dayPlan struct {
	userID uuid.UUID
	totals models.DayTotals
	rows   []models.DayProduct
	day    *models.Day
}

var hundred = decimal.NewFromInt(100)

func (s *DayCreationService) CreateDay(ctx context.Context, in DayCreation) error {
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "date is required"}
	}
	date := utils.DateOnly(in.Date)

	// merge (user, product) pairs before touching the store
	weights := map[userProduct]int{}
	var order []userProduct
	for i, p := range in.Products {
		w, err := ParseWeight(p.Weight)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Field = fmt.Sprintf("products[%d].weight", i)
			}
			return err
		}
		k := userProduct{userID: p.UserID, productID: p.ProductID}
		if _, seen := weights[k]; !seen {
			order = append(order, k)
		}
		weights[k] += w
	}
	for userID, kcal := range in.AdditionalCalories {
		if kcal.IsNegative() {
			return &ValidationError{Field: "additional_calories", Value: userID.String(), Reason: "must not be negative"}
		}
	}

	catalog, err := s.catalog(ctx, order)
	if err != nil {
		return err
	}

	plans := map[uuid.UUID]*dayPlan{}
	var users []uuid.UUID
	planFor := func(userID uuid.UUID) *dayPlan {
		p, ok := plans[userID]
		if !ok {
			p = &dayPlan{userID: userID}
			plans[userID] = p
			users = append(users, userID)
		}
		return p
	}

	for _, k := range order {
		prod := catalog[k.productID]
		w := weights[k]
		factor := decimal.NewFromInt(int64(w)).Div(hundred)
		p := planFor(k.userID)
		p.totals = p.totals.Add(models.DayTotals{
			Proteins: prod.Proteins.Mul(factor),
			Fats:     prod.Fats.Mul(factor),
			Carbs:    prod.Carbs.Mul(factor),
			Calories: prod.Calories.Mul(factor),
		})
		p.rows = append(p.rows, models.DayProduct{ProductID: k.productID, Weight: w})
	}

	extraUsers := make([]uuid.UUID, 0, len(in.AdditionalCalories))
	for userID := range in.AdditionalCalories {
		extraUsers = append(extraUsers, userID)
	}
	sort.Slice(extraUsers, func(i, j int) bool { return extraUsers[i].String() < extraUsers[j].String() })
	for _, userID := range extraUsers {
		kcal := in.AdditionalCalories[userID]
		if _, ok := plans[userID]; !ok && kcal.IsZero() {
			continue
		}
		p := planFor(userID)
		p.totals.Calories = p.totals.Calories.Add(kcal)
		p.totals.AdditionalCalories = p.totals.AdditionalCalories.Add(kcal)
	}

	if len(users) == 0 {
		return nil
	}

	for _, userID := range users {
		day, err := s.days.GetByDate(ctx, userID, date)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("load day: %w", err)
		}
		plans[userID].day = day
	}

	err = s.days.Transaction(ctx, func(tx repositories.DayWriter) error {
		for _, userID := range users {
			if err := applyPlan(ctx, tx, plans[userID], date); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create day: %w", err)
	}

	for _, userID := range users {
		p := plans[userID]
		s.log.Info("day updated", "user_id", userID, "date", date.Format(utils.DateLayout), "products", len(p.rows), "calories", p.totals.Calories.String())
		if s.events != nil {
			s.events.Publish(ctx, DayEvent{
				UserID:        userID,
				Date:          date.Format(utils.DateLayout),
				AddedCalories: p.totals.Calories,
			})
		}
	}
	return nil
}

func (s *DayCreationService) catalog(ctx context.Context, order []userProduct) (map[uuid.UUID]models.Product, error) {
	var ids []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, k := range order {
		if !seen[k.productID] {
			seen[k.productID] = true
			ids = append(ids, k.productID)
		}
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	out := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, &ValidationError{Field: "product_id", Value: id.String(), Reason: "product does not exist"}
		}
	}
	return out, nil
}

// applyPlan creates the day or, when it exists (or another writer created
// it first), increments it in place.
func applyPlan(ctx context.Context, tx repositories.DayWriter, p *dayPlan, date time.Time) error {
	if p.day == nil {
		day := &models.Day{
			UserID:             p.userID,
			Date:               date,
			TotalProteins:      p.totals.Proteins,
			TotalFats:          p.totals.Fats,
			TotalCarbs:         p.totals.Carbs,
			TotalCalories:      p.totals.Calories,
			AdditionalCalories: p.totals.AdditionalCalories,
		}
		created, err := tx.CreateIfAbsent(ctx, day)
		if err != nil {
			return err
		}
		if created {
			return tx.AddProducts(ctx, withDay(p.rows, day.ID))
		}
		existing, err := tx.GetByDate(ctx, p.userID, date)
		if err != nil {
			return err
		}
		p.day = existing
	}

	if err := tx.IncrementTotals(ctx, p.day.ID, p.totals); err != nil {
		return err
	}
	return tx.UpsertProducts(ctx, withDay(p.rows, p.day.ID))
}

func withDay(rows []models.DayProduct, dayID uuid.UUID) []models.DayProduct {
	out := make([]models.DayProduct, len(rows))
	for i, r := range rows {
		r.DayID = dayID
		out[i] = r
	}
	return out
}
