package handler

import (
	"net/http"
	"strconv"
	"time"

	"tileledger/internal/apierror"
	"tileledger/internal/dto"
	"tileledger/internal/service"

	"github.com/gin-gonic/gin"
)

// LedgerHandler serves the append-only side: moves, payments and bills.
type LedgerHandler struct {
	ledger service.LedgerService
	bills  service.BillService
}

func NewLedgerHandler(ledger service.LedgerService, bills service.BillService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, bills: bills}
}

func mutationStatus(resp *dto.MutationResponse) int {
	if resp.Duplicate() {
		return http.StatusOK
	}
	return http.StatusCreated
}

// AddMove godoc
// @Summary Record a purchase or a sale line
// @Description qty is rounded to 3 decimals and price_per_unit to 2. A price of 0
// @Description is stored as no price: the move reads back with price_per_unit null.
// @Tags ledger
// @Accept json
// @Produce json
// @Param body body dto.AddMoveRequest true "Move"
// @Success 201 {object} dto.MutationResponse
// @Success 200 {object} dto.MutationResponse "duplicate, nothing written"
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/moves [post]
func (h *LedgerHandler) AddMove(c *gin.Context) {
	var req dto.AddMoveRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.ledger.AddMove(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(mutationStatus(resp), resp)
}

// ListMoves accepts optional ?product_id= and ?date=YYYY-MM-DD.
func (h *LedgerHandler) ListMoves(c *gin.Context) {
	var filter dto.MoveFilter
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid product_id"))
			return
		}
		filter.ProductID = &id
	}
	if c.Query("date") != "" {
		day, ok := queryDay(c)
		if !ok {
			return
		}
		filter.Day = &day
	}
	resp, err := h.ledger.ListMoves(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LedgerHandler) AddPayment(c *gin.Context) {
	var req dto.AddPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.ledger.AddPayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(mutationStatus(resp), resp)
}

func (h *LedgerHandler) ListPayments(c *gin.Context) {
	var day *time.Time
	if c.Query("date") != "" {
		d, ok := queryDay(c)
		if !ok {
			return
		}
		day = &d
	}
	resp, err := h.ledger.ListPayments(c.Request.Context(), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SaveBill godoc
// @Summary Save a multi-line purchase or sale bill
// @Tags ledger
// @Accept json
// @Produce json
// @Param body body dto.BillRequest true "Bill"
// @Success 200 {object} dto.BillResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/bills [post]
func (h *LedgerHandler) SaveBill(c *gin.Context) {
	var req dto.BillRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.bills.SaveBill(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if resp.Saved > 0 || resp.CreatedOnly > 0 {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}
