package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/repositories"
	"github.com/ye11ow-banana/main-be/utils"
)

func seedDay(store *fakeDayStore, userID uuid.UUID, date time.Time, weight string) *models.Day {
	d := &models.Day{ID: uuid.New(), UserID: userID, Date: utils.DateOnly(date), TotalCalories: dec("1000")}
	if weight != "" {
		d.BodyWeight = decimal.NewNullDecimal(dec(weight))
	}
	store.days[d.ID] = d
	return d
}

func TestSmoothTrends(t *testing.T) {
	days := []models.Day{
		{ID: uuid.New(), BodyWeight: decimal.NewNullDecimal(dec("80"))},
		{ID: uuid.New()},
		{ID: uuid.New(), BodyWeight: decimal.NewNullDecimal(dec("90"))},
	}
	changed := smoothTrends(days, days[1].ID)

	if !days[0].Trend.Valid || !days[0].Trend.Decimal.Equal(dec("80")) {
		t.Fatalf("first trend must equal the weight, got %v", days[0].Trend)
	}
	if days[1].Trend.Valid {
		t.Fatal("day without weight has no trend")
	}
	// 80 + 0.1 * (90 - 80)
	if !days[2].Trend.Decimal.Equal(dec("81")) {
		t.Fatalf("want 81, got %s", days[2].Trend.Decimal)
	}
	if len(changed) != 3 {
		t.Fatalf("want all three saved, got %d", len(changed))
	}

	again := smoothTrends(days, uuid.Nil)
	if len(again) != 0 {
		t.Fatalf("stable trends must not be re-saved, got %d", len(again))
	}
}

func TestDayServiceUpdateMeasurementsRecomputesLaterTrends(t *testing.T) {
	store := newFakeDayStore()
	user := uuid.New()
	d1 := seedDay(store, user, testDate, "")
	d2 := seedDay(store, user, testDate.AddDate(0, 0, 1), "90")
	svc := NewDayService(store)

	w := dec("80")
	got, err := svc.UpdateMeasurements(context.Background(), user, d1.ID, MeasurementUpdate{BodyWeight: &w})
	if err != nil {
		t.Fatalf("UpdateMeasurements: %v", err)
	}
	if !got.Trend.Decimal.Equal(dec("80")) {
		t.Fatalf("trend: %v", got.Trend)
	}
	if tr := store.days[d2.ID].Trend; !tr.Valid || !tr.Decimal.Equal(dec("81")) {
		t.Fatalf("next day trend: %v", tr)
	}
}

func TestDayServiceUpdateMeasurementsOwnerOnly(t *testing.T) {
	store := newFakeDayStore()
	d := seedDay(store, uuid.New(), testDate, "")
	w := dec("70")

	_, err := NewDayService(store).UpdateMeasurements(context.Background(), uuid.New(), d.ID, MeasurementUpdate{BodyWeight: &w})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDayServiceUpdateMeasurementsValidates(t *testing.T) {
	store := newFakeDayStore()
	user := uuid.New()
	d := seedDay(store, user, testDate, "")
	fat := dec("120")

	_, err := NewDayService(store).UpdateMeasurements(context.Background(), user, d.ID, MeasurementUpdate{BodyFat: &fat})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestDayServiceDateRange(t *testing.T) {
	store := newFakeDayStore()
	svc := NewDayService(store)
	svc.now = func() time.Time { return time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC) }
	user := uuid.New()

	got, err := svc.DateRange(context.Background(), user)
	if err != nil {
		t.Fatalf("DateRange: %v", err)
	}
	if got.StartDate != "2025-02-01" || got.EndDate != "2025-02-28" {
		t.Fatalf("want current month, got %+v", got)
	}

	seedDay(store, user, testDate, "")
	seedDay(store, user, testDate.AddDate(0, 0, 5), "")
	got, err = svc.DateRange(context.Background(), user)
	if err != nil {
		t.Fatalf("DateRange: %v", err)
	}
	if got.StartDate != "2025-03-14" || got.EndDate != "2025-03-19" {
		t.Fatalf("want stored range, got %+v", got)
	}
}

func TestDayServiceListIncludesProducts(t *testing.T) {
	store := newFakeDayStore()
	user := uuid.New()
	d := seedDay(store, user, testDate, "")
	product := uuid.New()
	store.products[[2]uuid.UUID{d.ID, product}] = 150
	seedDay(store, uuid.New(), testDate, "")

	page, err := NewDayService(store).List(context.Background(), user, repositories.DayFilter{}, utils.NewPagination(1, 10))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 || len(page.Days) != 1 || page.TotalPages != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	if len(page.Days[0].Products) != 1 || page.Days[0].Products[0].Weight != 150 {
		t.Fatalf("products: %+v", page.Days[0].Products)
	}
}

func TestDayServiceListRejectsUnknownSort(t *testing.T) {
	_, err := NewDayService(newFakeDayStore()).List(context.Background(), uuid.New(),
		repositories.DayFilter{SortBy: "random"}, utils.NewPagination(1, 10))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestTrendServiceItems(t *testing.T) {
	store := newFakeDayStore()
	user := uuid.New()
	seedDay(store, user, testDate, "")
	seedDay(store, user, testDate.AddDate(0, 0, 1), "")
	svc := NewTrendService(store)

	items, err := svc.Items(context.Background(), user, TrendCalorie, testDate, testDate.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 2 || items[0].Date != "2025-03-14" || !items[0].Value.Equal(dec("1000")) {
		t.Fatalf("unexpected items %+v", items)
	}

	var ve *ValidationError
	if _, err := svc.Items(context.Background(), user, TrendCalorie, testDate.AddDate(0, 0, 1), testDate); !errors.As(err, &ve) {
		t.Fatalf("inverted range: want ValidationError, got %v", err)
	}
	if _, err := svc.Items(context.Background(), user, "steps", testDate, testDate); !errors.As(err, &ve) {
		t.Fatalf("unknown type: want ValidationError, got %v", err)
	}
}
