package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/service/inventory"
)

// ProductHandler serves /api/products.
type ProductHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewProductHandler constructs the product handler.
func NewProductHandler(svc *inventory.Service, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{svc: svc, logger: logger}
}

// productRequest accepts numbers or numeric strings for stock and price.
type productRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Stock    decimal.Decimal `json:"stock"`
	Price    decimal.Decimal `json:"price"`
}

func (r productRequest) product() (models.Product, error) {
	stock, err := wholeNumber("stock", r.Stock, "stock must be a whole number")
	if err != nil {
		return models.Product{}, err
	}
	return models.Product{
		Name:     r.Name,
		Category: r.Category,
		Stock:    stock,
		Price:    r.Price,
	}, nil
}

// List returns every product.
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Create adds a product.
func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	product, err := req.product()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), product)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update replaces a product's fields.
func (h *ProductHandler) Update(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	product, err := req.product()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), product)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a product.
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
