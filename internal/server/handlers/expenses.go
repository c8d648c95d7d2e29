package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/service/expenses"
	"github.com/mamadbah2/shopms/internal/service/reporting"
)

// ExpenseHandler serves /api/expenses.
type ExpenseHandler struct {
	svc    *expenses.Service
	loc    *time.Location
	logger *zap.Logger
}

// NewExpenseHandler constructs the expense handler. Dates without a time are read in loc.
func NewExpenseHandler(svc *expenses.Service, loc *time.Location, logger *zap.Logger) *ExpenseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &ExpenseHandler{svc: svc, loc: loc, logger: logger}
}

type expenseRequest struct {
	Type        string           `json:"type"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	ExpenseDate string           `json:"expenseDate"`
}

// List returns expenses newest first, optionally limited by ?from=&to= (YYYY-MM-DD, inclusive).
func (h *ExpenseHandler) List(c *gin.Context) {
	within, err := h.queryRange(c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	list, err := h.svc.List(c.Request.Context(), within)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create records an expense.
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	in := expenses.Input{
		Type:        models.ExpenseType(strings.TrimSpace(req.Type)),
		Description: req.Description,
		Amount:      req.Amount,
	}
	if req.ExpenseDate != "" {
		when, err := h.parseDate(req.ExpenseDate)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		in.ExpenseDate = &when
	}

	created, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Delete removes an expense.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully."})
}

// parseDate accepts RFC 3339 timestamps or bare calendar dates.
func (h *ExpenseHandler) parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, h.loc)
	if err != nil {
		return time.Time{}, models.NewValidationError("expenseDate", "expenseDate must be YYYY-MM-DD or RFC 3339")
	}
	return t, nil
}

func (h *ExpenseHandler) queryRange(from, to string) (*models.DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}

	start, end := time.Time{}, time.Now().In(h.loc)
	if from != "" {
		day, err := reporting.ParseDay(from, h.loc)
		if err != nil {
			return nil, models.NewValidationError("from", "from must be YYYY-MM-DD")
		}
		start = day
	}
	if to != "" {
		day, err := reporting.ParseDay(to, h.loc)
		if err != nil {
			return nil, models.NewValidationError("to", "to must be YYYY-MM-DD")
		}
		end = day
	}
	return reporting.NewWindow(start, end, h.loc).Range(), nil
}
