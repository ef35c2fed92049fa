package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"tileledger/internal/infra"
	"tileledger/internal/ledger"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// ContentType maps an export format to its MIME type.
func ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

type ExportService interface {
	ExportStock(ctx context.Context, w io.Writer, format string) error
	ExportDaily(ctx context.Context, w io.Writer, day time.Time, format string) error
}

type exportService struct {
	reports   ReportService
	dir       string
	threshold decimal.Decimal
}

func NewExportService(reports ReportService, exportDir string, lowStock decimal.Decimal) ExportService {
	return &exportService{reports: reports, dir: exportDir, threshold: lowStock}
}

var (
	stockHeader = []string{"ID", "Name", "Material", "Size", "Unit", "Opening Stock", "Stock", "Status"}
	dailyHeader = []string{"Time", "Kind", "Product", "Size", "Unit", "Qty", "Price", "Value", "Party", "Notes"}
)

func stockStatus(l ledger.StockLevel, threshold decimal.Decimal) string {
	switch {
	case l.Negative:
		return "negative"
	case l.Stock.LessThan(threshold):
		return "low"
	}
	return "ok"
}

func writeTable(w io.Writer, t infra.Table, format string) error {
	switch format {
	case FormatCSV:
		return infra.WriteCSV(w, t)
	case FormatXLSX:
		return infra.WriteXLSX(w, t)
	}
	return invalid("format", "must be csv or xlsx")
}

func (s *exportService) ExportStock(ctx context.Context, w io.Writer, format string) error {
	format = strings.ToLower(format)
	if format != FormatCSV && format != FormatXLSX {
		return invalid("format", "must be csv or xlsx")
	}
	stock, err := s.reports.StockLevels(ctx, s.threshold)
	if err != nil {
		return err
	}
	t := infra.Table{Sheet: "Stock", Header: stockHeader}
	for _, l := range stock.Levels {
		t.Rows = append(t.Rows, []any{
			l.Product.ID, l.Product.Name, l.Product.Material, l.Product.Size, l.Product.Unit,
			l.Product.OpeningStock, l.Stock, stockStatus(l, s.threshold),
		})
	}
	return writeTable(w, t, format)
}

func (s *exportService) ExportDaily(ctx context.Context, w io.Writer, day time.Time, format string) error {
	format = strings.ToLower(format)
	switch format {
	case FormatCSV, FormatXLSX, FormatPDF:
	default:
		return invalid("format", "must be csv, xlsx or pdf")
	}
	report, err := s.reports.DailyReport(ctx, day)
	if err != nil {
		return err
	}
	if format == FormatPDF {
		return s.writePDF(w, report)
	}

	t := infra.Table{Sheet: report.Date, Header: dailyHeader}
	for _, m := range report.Moves {
		t.Rows = append(t.Rows, []any{
			m.TS.Format("15:04:05"), string(m.Kind), m.ProductName, m.Size, m.Unit,
			m.Qty, m.PricePerUnit, m.Value, m.PartyName, m.Notes,
		})
	}
	return writeTable(w, t, format)
}

func (s *exportService) writePDF(w io.Writer, report *ledger.DailyReport) error {
	path, err := infra.GenerateDailyReportPDF(report, s.dir)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copy pdf: %w", err)
	}
	log.Info().Str("path", path).Msg("daily report pdf generated")
	return nil
}
