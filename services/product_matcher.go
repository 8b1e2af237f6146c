package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/ye11ow-banana/main-be/config"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/repositories"
)

// ProductMatch is a catalog product found for a raw name.
type ProductMatch struct {
	Product models.Product
	Score   float64
}

type ProductMatcher struct {
	products repositories.ProductStore
	cfg      config.MatcherConfig
}

func NewProductMatcher(products repositories.ProductStore, cfg config.MatcherConfig) *ProductMatcher {
	return &ProductMatcher{products: products, cfg: cfg}
}

// Find looks up rawName with the configured similarity floor.
func (m *ProductMatcher) Find(ctx context.Context, rawName string) (*ProductMatch, error) {
	return m.FindAbove(ctx, rawName, m.cfg.MinSimilarity)
}

// FindAbove returns the best catalog product for rawName, or ErrNoMatch when
// no product reaches minSimilarity on raw trigram similarity. Short queries
// are re-ranked with an edit-distance component since trigrams say little
// about them.
func (m *ProductMatcher) FindAbove(ctx context.Context, rawName string, minSimilarity float64) (*ProductMatch, error) {
	query := NormalizeName(rawName)
	if query == "" {
		return nil, ErrNoMatch
	}

	short := utf8.RuneCountInString(query) <= m.cfg.ShortQueryMaxRunes
	limit := 1
	if short {
		limit = 0
	}
	candidates, err := m.products.TrigramCandidates(ctx, query, minSimilarity, limit)
	if err != nil {
		return nil, fmt.Errorf("match %q: %w", rawName, err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoMatch
	}

	if !short {
		c := candidates[0]
		return &ProductMatch{Product: c.Product, Score: c.Similarity}, nil
	}

	best := -1
	bestScore := 0.0
	for i, c := range candidates {
		s := m.blend(c.Similarity, c.Distance)
		if best < 0 || s > bestScore || (s == bestScore && c.Product.ID.String() < candidates[best].Product.ID.String()) {
			best, bestScore = i, s
		}
	}
	return &ProductMatch{Product: candidates[best].Product, Score: bestScore}, nil
}

func (m *ProductMatcher) blend(similarity float64, distance int) float64 {
	return similarity*m.cfg.SimilarityWeight + levenshteinScore(distance)*m.cfg.LevenshteinWeight
}

func levenshteinScore(distance int) float64 {
	switch distance {
	case 0:
		return 1.0
	case 1:
		return 0.75
	case 2:
		return 0.5
	}
	return 0
}
