package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/service/ledger"
	"github.com/mamadbah2/shopms/internal/service/receipt"
)

const incompleteItemMessage = "Each item must include productId, quantity, and salePrice."

// SaleHandler serves /api/sales.
type SaleHandler struct {
	ledger *ledger.Service
	shop   receipt.Shop
	logger *zap.Logger
}

// NewSaleHandler constructs the sale handler.
func NewSaleHandler(ledger *ledger.Service, shop receipt.Shop, logger *zap.Logger) *SaleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleHandler{ledger: ledger, shop: shop, logger: logger}
}

type saleItemRequest struct {
	ProductID string           `json:"productId"`
	Quantity  *decimal.Decimal `json:"quantity"`
	SalePrice *decimal.Decimal `json:"salePrice"`
}

type saleRequest struct {
	BuyerName string            `json:"buyerName"`
	Items     []saleItemRequest `json:"items"`
}

// items coerces the request lines once; the ledger only sees typed quantities.
// A missing buyer or empty list is left for the ledger to report first.
func (r saleRequest) items() ([]models.SaleItemInput, error) {
	if strings.TrimSpace(r.BuyerName) == "" || len(r.Items) == 0 {
		return nil, nil
	}
	out := make([]models.SaleItemInput, 0, len(r.Items))
	for i, item := range r.Items {
		if item.ProductID == "" || item.Quantity == nil || item.SalePrice == nil {
			return nil, models.NewValidationError(fmt.Sprintf("items[%d]", i), incompleteItemMessage)
		}
		quantity, err := wholeNumber(fmt.Sprintf("items[%d].quantity", i), *item.Quantity, "Item quantity must be a whole number.")
		if err != nil {
			return nil, err
		}
		out = append(out, models.SaleItemInput{
			ProductID: item.ProductID,
			Quantity:  quantity,
			SalePrice: *item.SalePrice,
		})
	}
	return out, nil
}

// List returns every sale newest first.
func (h *SaleHandler) List(c *gin.Context) {
	sales, err := h.ledger.ListSales(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

// Get returns one sale.
func (h *SaleHandler) Get(c *gin.Context) {
	sale, err := h.ledger.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// Create records a sale.
func (h *SaleHandler) Create(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	items, err := req.items()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	sale, err := h.ledger.CreateSale(c.Request.Context(), req.BuyerName, items)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// Update replaces a sale's buyer and lines.
func (h *SaleHandler) Update(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	items, err := req.items()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	sale, err := h.ledger.UpdateSale(c.Request.Context(), c.Param("id"), req.BuyerName, items)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// Delete removes a sale and returns its stock.
func (h *SaleHandler) Delete(c *gin.Context) {
	if err := h.ledger.DeleteSale(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted and stock reverted successfully."})
}

// Receipt streams the sale's PDF receipt inline.
func (h *SaleHandler) Receipt(c *gin.Context) {
	sale, err := h.ledger.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := receipt.Render(&buf, sale, h.shop); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s", receipt.Filename(sale.ID)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
