package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ye11ow-banana/main-be/config"
)

var testMatcherConfig = config.MatcherConfig{
	MinSimilarity:      0.20,
	SimilarityWeight:   0.85,
	LevenshteinWeight:  0.15,
	ShortQueryMaxRunes: 4,
}

func TestProductMatcherFindsCaseInsensitive(t *testing.T) {
	store := &fakeProductStore{}
	banana := store.add("Банан", "1.1", "0.3", "22.8", "89")
	store.add("Гречка", "12.6", "3.3", "62.1", "313")

	m := NewProductMatcher(store, testMatcherConfig)
	got, err := m.Find(context.Background(), "банан")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Product.ID != banana.ID {
		t.Fatalf("want %s, got %s", banana.Name, got.Product.Name)
	}
	if got.Score <= 0.8 {
		t.Fatalf("want score > 0.8, got %v", got.Score)
	}
}

func TestProductMatcherNoMatch(t *testing.T) {
	store := &fakeProductStore{}
	store.add("Банан", "1.1", "0.3", "22.8", "89")

	_, err := NewProductMatcher(store, testMatcherConfig).Find(context.Background(), "xyzxyz")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("want ErrNoMatch, got %v", err)
	}
}

func TestProductMatcherBlank(t *testing.T) {
	_, err := NewProductMatcher(&fakeProductStore{}, testMatcherConfig).Find(context.Background(), "   ")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("want ErrNoMatch, got %v", err)
	}
}

func TestProductMatcherBlendsShortQueries(t *testing.T) {
	store := &fakeProductStore{}
	rice := store.add("Рис", "7", "1", "78", "344")

	got, err := NewProductMatcher(store, testMatcherConfig).Find(context.Background(), "риса")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Product.ID != rice.ID {
		t.Fatalf("want rice, got %s", got.Product.Name)
	}

	sim := trigramSimilarity("рис", "риса")
	want := sim*0.85 + 0.75*0.15
	if math.Abs(got.Score-want) > 1e-9 {
		t.Fatalf("want blended %v, got %v", want, got.Score)
	}
	if math.Abs(got.Score-sim) < 1e-9 {
		t.Fatalf("score must differ from the trigram-only %v", sim)
	}
}

func TestProductMatcherShortQueryPrefersCloserEdit(t *testing.T) {
	store := &fakeProductStore{}
	// both names contain every trigram of the query; only one is zero edits away
	cheese := store.add("Сир", "25", "27", "0", "350")
	store.add("Сир твердий", "26", "30", "0", "380")

	got, err := NewProductMatcher(store, testMatcherConfig).Find(context.Background(), "сир")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Product.ID != cheese.ID {
		t.Fatalf("want %q, got %q", cheese.Name, got.Product.Name)
	}
}

func TestProductMatcherPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewProductMatcher(&fakeProductStore{queryErr: boom}, testMatcherConfig).Find(context.Background(), "банан")
	if !errors.Is(err, boom) || errors.Is(err, ErrNoMatch) {
		t.Fatalf("want wrapped store error, got %v", err)
	}
}

func TestLevenshteinScore(t *testing.T) {
	for d, want := range map[int]float64{0: 1, 1: 0.75, 2: 0.5, 3: 0, 10: 0} {
		if got := levenshteinScore(d); got != want {
			t.Fatalf("distance %d: want %v got %v", d, want, got)
		}
	}
}
