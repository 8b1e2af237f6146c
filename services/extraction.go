package services

import (
	"context"

	"github.com/google/uuid"
)

// RawItem is one food line read by the extraction oracle, before matching.
type RawItem struct {
	User    string `json:"user"`
	RawName string `json:"raw_name"`
	Weight  string `json:"weight"`
}

type ExtractionResult struct {
	Items    []RawItem `json:"items"`
	Warnings []string  `json:"warnings"`
	Unparsed []string  `json:"unparsed"`
}

type Per100g struct {
	Proteins float64 `json:"proteins"`
	Fats     float64 `json:"fats"`
	Carbs    float64 `json:"carbs"`
	Calories float64 `json:"calories"`
}

// SynthesizedProduct is nutrition data the oracle made up for an unknown name.
type SynthesizedProduct struct {
	RawName     string  `json:"raw_name"`
	Name        string  `json:"name"`
	Per100g     Per100g `json:"per_100g"`
	Confidence  float64 `json:"confidence"`
	Assumptions string  `json:"assumptions"`
}

// ResolvedMatch binds a raw item to a catalog product. MatchedScore is 0 for
// products synthesized during ingestion.
type ResolvedMatch struct {
	User         string    `json:"user"`
	ProductID    uuid.UUID `json:"product_id"`
	Name         string    `json:"name"`
	Weight       string    `json:"weight"`
	MatchedScore float64   `json:"matched_score"`
}

// ItemExtractor is the language-model boundary of ingestion.
type ItemExtractor interface {
	ImageToItems(ctx context.Context, image []byte, mime, model string) (*ExtractionResult, error)
	TextToItems(ctx context.Context, text, model string) (*ExtractionResult, error)
	UnknownToNutrition(ctx context.Context, rawNames []string, model string) ([]SynthesizedProduct, error)
}
