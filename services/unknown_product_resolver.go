package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/repositories"

	"gorm.io/datatypes"
)

type nutritionSynthesizer interface {
	UnknownToNutrition(ctx context.Context, rawNames []string, model string) ([]SynthesizedProduct, error)
}

type productCreator interface {
	Create(ctx context.Context, p *models.Product) error
}

// UnknownProductResolver adds catalog products for names the matcher could
// not place, using nutrition values synthesized by the oracle.
type UnknownProductResolver struct {
	log      *logger.Logger
	oracle   nutritionSynthesizer
	products productCreator
	model    string
}

func NewUnknownProductResolver(log *logger.Logger, oracle nutritionSynthesizer, products productCreator, model string) *UnknownProductResolver {
	return &UnknownProductResolver{log: log, oracle: oracle, products: products, model: model}
}

// Resolve makes one oracle call for all distinct names in items, creates a
// product per synthesized entry and returns a match for every item whose
// name got a product. Those matches carry score 0.
func (r *UnknownProductResolver) Resolve(ctx context.Context, items []RawItem) ([]ResolvedMatch, error) {
	if len(items) == 0 {
		return nil, nil
	}

	distinct := map[string]bool{}
	for _, it := range items {
		distinct[NormalizeName(it.RawName)] = true
	}
	names := make([]string, 0, len(distinct))
	for n := range distinct {
		names = append(names, n)
	}
	sort.Strings(names)

	synthesized, err := r.oracle.UnknownToNutrition(ctx, names, r.model)
	if err != nil {
		return nil, err
	}

	created := map[string]*models.Product{}
	for _, sp := range synthesized {
		key := NormalizeName(sp.RawName)
		if !distinct[key] {
			r.log.Debug("synthesized product matches no item", "raw_name", sp.RawName)
			continue
		}
		// first entry per name wins
		if _, ok := created[key]; ok {
			r.log.Debug("duplicate synthesized product skipped", "raw_name", sp.RawName)
			continue
		}
		p, err := newSynthesizedProduct(sp)
		if err != nil {
			return nil, err
		}
		if err := r.products.Create(ctx, p); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				err = ErrProductNameTaken
			}
			return nil, fmt.Errorf("create synthesized product %q: %w", p.Name, err)
		}
		r.log.Info("synthesized product created", "raw_name", sp.RawName, "name", p.Name, "confidence", sp.Confidence)
		created[key] = p
	}

	out := make([]ResolvedMatch, 0, len(items))
	for _, it := range items {
		p, ok := created[NormalizeName(it.RawName)]
		if !ok {
			r.log.Warn("unknown product left unresolved", "raw_name", it.RawName)
			continue
		}
		out = append(out, ResolvedMatch{
			User:         it.User,
			ProductID:    p.ID,
			Name:         p.Name,
			Weight:       it.Weight,
			MatchedScore: 0,
		})
	}
	return out, nil
}

func newSynthesizedProduct(sp SynthesizedProduct) (*models.Product, error) {
	name := strings.TrimSpace(sp.Name)
	if name == "" {
		name = strings.TrimSpace(sp.RawName)
	}
	source, err := json.Marshal(map[string]any{
		"origin":      "oracle",
		"raw_name":    sp.RawName,
		"confidence":  sp.Confidence,
		"assumptions": sp.Assumptions,
	})
	if err != nil {
		return nil, err
	}
	return &models.Product{
		Name:     name,
		Proteins: decimal.NewFromFloat(sp.Per100g.Proteins).Round(2),
		Fats:     decimal.NewFromFloat(sp.Per100g.Fats).Round(2),
		Carbs:    decimal.NewFromFloat(sp.Per100g.Carbs).Round(2),
		Calories: decimal.NewFromFloat(sp.Per100g.Calories).Round(2),
		Source:   datatypes.JSON(source),
	}, nil
}
