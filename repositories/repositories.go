// Package repositories is the storage boundary: interfaces consumed by
// services plus their gorm/Postgres implementations.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/utils"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// ProductCandidate is a catalog row with its text-similarity measures
// against a query.
type ProductCandidate struct {
	Product    models.Product
	Similarity float64
	Distance   int
}

type ProductStore interface {
	// TrigramCandidates returns products whose trigram similarity to
	// query is at least minSimilarity, best first, ties by id. limit <= 0
	// means no limit.
	TrigramCandidates(ctx context.Context, query string, minSimilarity float64, limit int) ([]ProductCandidate, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Search(ctx context.Context, q string, p utils.Pagination) ([]models.Product, int64, error)
}

// DaySortBy orders paginated day listings.
type DaySortBy string

const (
	SortMostRecent   DaySortBy = "most_recent"
	SortOldest       DaySortBy = "oldest"
	SortMostCalories DaySortBy = "most_calories"
	SortLowestWeight DaySortBy = "lowest_weight"
)

func (s DaySortBy) Valid() bool {
	switch s {
	case SortMostRecent, SortOldest, SortMostCalories, SortLowestWeight:
		return true
	}
	return false
}

type DayFilter struct {
	Start  time.Time
	End    time.Time // inclusive
	SortBy DaySortBy
}

type TrendPoint struct {
	Date  time.Time
	Value decimal.Decimal
}

// DayWriter is the set of mutations the day aggregation runs inside one
// transaction.
type DayWriter interface {
	GetByDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.Day, error)
	// CreateIfAbsent inserts day unless (user_id, date) already exists and
	// reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, day *models.Day) (bool, error)
	// IncrementTotals adds delta to the stored totals in a single UPDATE.
	IncrementTotals(ctx context.Context, dayID uuid.UUID, delta models.DayTotals) error
	AddProducts(ctx context.Context, rows []models.DayProduct) error
	// UpsertProducts inserts rows, adding weight onto existing
	// (day_id, product_id) rows.
	UpsertProducts(ctx context.Context, rows []models.DayProduct) error
}

type DayStore interface {
	DayWriter
	Transaction(ctx context.Context, fn func(tx DayWriter) error) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Day, error)
	List(ctx context.Context, userID uuid.UUID, f DayFilter, p utils.Pagination) ([]models.Day, int64, error)
	ProductsForDays(ctx context.Context, dayIDs []uuid.UUID) ([]models.DayProduct, error)
	FirstAndLast(ctx context.Context, userID uuid.UUID) (*models.Day, *models.Day, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Day, error)
	UpdateMeasurements(ctx context.Context, days []models.Day) error
	WeightTrend(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]TrendPoint, error)
	CalorieTrend(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]TrendPoint, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, login string) (*models.User, error)
	ListVerified(ctx context.Context) ([]models.User, error)
	SetAvatarURL(ctx context.Context, id uuid.UUID, url *string) error

	UpsertVerificationCode(ctx context.Context, userID uuid.UUID, code int, expiresAt time.Time) error
	GetVerificationCode(ctx context.Context, userID uuid.UUID) (*models.VerificationCode, error)
	// Verify marks the user verified and removes the code atomically.
	Verify(ctx context.Context, userID uuid.UUID, codeID uuid.UUID) error
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
