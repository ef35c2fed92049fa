package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"tileledger/internal/apierror"
	"tileledger/internal/ledger"
	"tileledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ReportsHandler serves the read side and the file exports.
type ReportsHandler struct {
	reports   service.ReportService
	exports   service.ExportService
	threshold decimal.Decimal
}

func NewReportsHandler(reports service.ReportService, exports service.ExportService, lowStock decimal.Decimal) *ReportsHandler {
	return &ReportsHandler{reports: reports, exports: exports, threshold: lowStock}
}

func (h *ReportsHandler) ProductStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.reports.ProductStock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StockLevels lists every product's stock; ?threshold= overrides the low-stock limit.
func (h *ReportsHandler) StockLevels(c *gin.Context) {
	threshold := h.threshold
	if raw := c.Query("threshold"); raw != "" {
		t, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"threshold": "must be a number"}))
			return
		}
		threshold = t
	}
	resp, err := h.reports.StockLevels(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) CustomerBalance(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.reports.CustomerBalance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) SupplierBalance(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.reports.SupplierBalance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DailyReport godoc
// @Summary Moves, payments, totals and closing stock of one day
// @Tags reports
// @Produce json
// @Param date query string false "YYYY-MM-DD, default today"
// @Success 200 {object} ledger.DailyReport
// @Router /v1/reports/daily [get]
func (h *ReportsHandler) DailyReport(c *gin.Context) {
	day, ok := queryDay(c)
	if !ok {
		return
	}
	resp, err := h.reports.DailyReport(c.Request.Context(), day)
	if err != nil {
		respondError(c, err)
		return
	}
	if c.Query("view") == "stock" {
		resp.Moves = ledger.ByProduct(resp.Moves)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) ExportStock(c *gin.Context) {
	format := exportFormat(c)
	var buf bytes.Buffer
	if err := h.exports.ExportStock(c.Request.Context(), &buf, format); err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, &buf, "stock."+format, format)
}

func (h *ReportsHandler) ExportDaily(c *gin.Context) {
	day, ok := queryDay(c)
	if !ok {
		return
	}
	format := exportFormat(c)
	var buf bytes.Buffer
	if err := h.exports.ExportDaily(c.Request.Context(), &buf, day, format); err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, &buf, fmt.Sprintf("daily_%s.%s", day.Format(ledger.DateLayout), format), format)
}

func exportFormat(c *gin.Context) string {
	return strings.ToLower(c.DefaultQuery("format", service.FormatCSV))
}

func sendFile(c *gin.Context, buf *bytes.Buffer, name, format string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, service.ContentType(format), buf.Bytes())
}
