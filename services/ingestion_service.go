package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ye11ow-banana/main-be/logger"

	"golang.org/x/sync/errgroup"
)

type productFinder interface {
	Find(ctx context.Context, rawName string) (*ProductMatch, error)
}

type unknownResolver interface {
	Resolve(ctx context.Context, items []RawItem) ([]ResolvedMatch, error)
}

type IngestResult struct {
	Products []ResolvedMatch `json:"products"`
	Warnings []string        `json:"warnings"`
	Unparsed []string        `json:"unparsed"`
}

// IngestionService turns a photographed food table plus an optional note
// into catalog-bound items. It does not write days.
type IngestionService struct {
	log         *logger.Logger
	extractor   ItemExtractor
	matcher     productFinder
	resolver    unknownResolver
	visionModel string
	textModel   string
	timeout     time.Duration
}

func NewIngestionService(log *logger.Logger, extractor ItemExtractor, matcher productFinder, resolver unknownResolver, visionModel, textModel string, timeout time.Duration) *IngestionService {
	return &IngestionService{
		log:         log,
		extractor:   extractor,
		matcher:     matcher,
		resolver:    resolver,
		visionModel: visionModel,
		textModel:   textModel,
		timeout:     timeout,
	}
}

func (s *IngestionService) Ingest(ctx context.Context, image []byte, mime, userText string) (*IngestResult, error) {
	if len(image) == 0 {
		return nil, &ValidationError{Field: "image", Reason: "image is required"}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	userText = strings.TrimSpace(userText)
	var fromImage, fromText *ExtractionResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.extractor.ImageToItems(gctx, image, mime, s.visionModel)
		if err != nil {
			return fmt.Errorf("extract image: %w", err)
		}
		fromImage = r
		return nil
	})
	if userText != "" {
		g.Go(func() error {
			r, err := s.extractor.TextToItems(gctx, userText, s.textModel)
			if err != nil {
				return fmt.Errorf("extract text: %w", err)
			}
			fromText = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &IngestResult{Products: []ResolvedMatch{}, Warnings: []string{}, Unparsed: []string{}}
	var items []RawItem
	for _, r := range []*ExtractionResult{fromImage, fromText} {
		if r == nil {
			continue
		}
		items = append(items, r.Items...)
		out.Warnings = append(out.Warnings, r.Warnings...)
		out.Unparsed = append(out.Unparsed, r.Unparsed...)
	}

	var unknown []RawItem
	for _, it := range items {
		m, err := s.matcher.Find(ctx, it.RawName)
		if errors.Is(err, ErrNoMatch) {
			unknown = append(unknown, it)
			continue
		}
		if err != nil {
			return nil, err
		}
		out.Products = append(out.Products, ResolvedMatch{
			User:         it.User,
			ProductID:    m.Product.ID,
			Name:         m.Product.Name,
			Weight:       it.Weight,
			MatchedScore: m.Score,
		})
	}

	if len(unknown) > 0 {
		s.log.Info("resolving unknown products", "count", len(unknown))
		resolved, err := s.resolver.Resolve(ctx, unknown)
		if err != nil {
			return nil, fmt.Errorf("resolve unknown products: %w", err)
		}
		out.Products = append(out.Products, resolved...)
	}

	s.log.Info("ingestion finished",
		"items", len(items),
		"matched", len(items)-len(unknown),
		"unknown", len(unknown),
		"warnings", len(out.Warnings),
	)
	return out, nil
}
