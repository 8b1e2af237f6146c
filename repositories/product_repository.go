package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const searchMinSimilarity = 0.3

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

type candidateRow struct {
	models.Product `gorm:"embedded"`
	Similarity     float64
	Distance       int
}

func (r *ProductRepository) TrigramCandidates(ctx context.Context, query string, minSimilarity float64, limit int) ([]ProductCandidate, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("products.*, similarity(lower(products.name), ?) AS similarity, levenshtein(lower(products.name), ?) AS distance", query, query).
		Where("similarity(lower(products.name), ?) >= ?", query, minSimilarity).
		Order("similarity DESC, products.id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []candidateRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ProductCandidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, ProductCandidate{Product: row.Product, Similarity: row.Similarity, Distance: row.Distance})
	}
	return out, nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":     p.Name,
			"proteins": p.Proteins,
			"fats":     p.Fats,
			"carbs":    p.Carbs,
			"calories": p.Calories,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Search pages through the catalog. A non-empty q keeps names containing it
// or trigram-similar to it, closest first; otherwise names sort
// alphabetically.
func (r *ProductRepository) Search(ctx context.Context, q string, p utils.Pagination) ([]models.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Product{})
	order := clause.Expr{SQL: "name ASC"}
	if q = strings.ToLower(strings.TrimSpace(q)); q != "" {
		base = base.Where("lower(name) LIKE ? OR similarity(lower(name), ?) >= ?", "%"+escapeLike(q)+"%", q, searchMinSimilarity)
		order = clause.Expr{SQL: "similarity(lower(name), ?) DESC, name ASC", Vars: []interface{}{q}}
	}

	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []models.Product
	err := base.Clauses(clause.OrderBy{Expression: order}).Offset(p.Offset()).Limit(p.Limit()).Find(&products).Error
	return products, total, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
