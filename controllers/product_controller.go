package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/services"
	"github.com/ye11ow-banana/main-be/utils"
)

type productCatalog interface {
	Search(ctx context.Context, q string, p utils.Pagination) (*services.ProductPage, error)
	Create(ctx context.Context, in services.ProductInput) (*services.ProductView, error)
	Update(ctx context.Context, id uuid.UUID, in services.ProductInput) (*services.ProductView, error)
}

type ProductController struct {
	log      *logger.Logger
	products productCatalog
}

func NewProductController(log *logger.Logger, products productCatalog) *ProductController {
	return &ProductController{log: log, products: products}
}

func (pc *ProductController) Search(c *gin.Context) {
	page, err := pc.products.Search(c.Request.Context(), c.Query("q"), pagination(c))
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (pc *ProductController) Create(c *gin.Context) {
	var in services.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.products.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (pc *ProductController) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var in services.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.products.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
