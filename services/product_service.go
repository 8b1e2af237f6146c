package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/repositories"
	"github.com/ye11ow-banana/main-be/utils"
)

type ProductInput struct {
	Name     string          `json:"name" binding:"required"`
	Proteins decimal.Decimal `json:"proteins"`
	Fats     decimal.Decimal `json:"fats"`
	Carbs    decimal.Decimal `json:"carbs"`
	Calories decimal.Decimal `json:"calories"`
}

type ProductView struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Proteins decimal.Decimal `json:"proteins"`
	Fats     decimal.Decimal `json:"fats"`
	Carbs    decimal.Decimal `json:"carbs"`
	Calories decimal.Decimal `json:"calories"`
}

type ProductPage struct {
	Products   []ProductView `json:"data"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
}

type ProductService struct {
	products repositories.ProductStore
}

func NewProductService(products repositories.ProductStore) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) Search(ctx context.Context, q string, p utils.Pagination) (*ProductPage, error) {
	products, total, err := s.products.Search(ctx, q, p)
	if err != nil {
		return nil, err
	}
	out := &ProductPage{
		Products:   make([]ProductView, 0, len(products)),
		Page:       p.Page,
		PerPage:    p.Limit(),
		Total:      total,
		TotalPages: p.PageCount(total),
	}
	for _, prod := range products {
		out.Products = append(out.Products, newProductView(prod))
	}
	return out, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*ProductView, error) {
	p, err := in.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, storeError(err)
	}
	v := newProductView(*p)
	return &v, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in ProductInput) (*ProductView, error) {
	p, err := in.toModel()
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.products.Update(ctx, p); err != nil {
		return nil, storeError(err)
	}
	v := newProductView(*p)
	return &v, nil
}

func (in ProductInput) toModel() (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "name is required"}
	}
	for field, v := range map[string]decimal.Decimal{
		"proteins": in.Proteins,
		"fats":     in.Fats,
		"carbs":    in.Carbs,
		"calories": in.Calories,
	} {
		if v.IsNegative() {
			return nil, &ValidationError{Field: field, Value: v.String(), Reason: "must not be negative"}
		}
	}
	return &models.Product{
		Name:     name,
		Proteins: in.Proteins.Round(2),
		Fats:     in.Fats.Round(2),
		Carbs:    in.Carbs.Round(2),
		Calories: in.Calories.Round(2),
	}, nil
}

func newProductView(p models.Product) ProductView {
	return ProductView{ID: p.ID, Name: p.Name, Proteins: p.Proteins, Fats: p.Fats, Carbs: p.Carbs, Calories: p.Calories}
}

func storeError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		return ErrProductNameTaken
	case errors.Is(err, repositories.ErrNotFound):
		return ErrNotFound
	}
	return err
}
