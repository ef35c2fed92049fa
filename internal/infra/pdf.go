package infra

// Daily report rendering with go-pdf/fpdf.
// A4 portrait, one section per block of the report:
//   - headline totals
//   - bill-wise and party-wise totals
//   - the day's movements and payments
//   - closing stock, negatives marked
//
// The output file is saved to storagePath/daily_{date}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"tileledger/internal/ledger"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

type pdfColumn struct {
	title string
	width float64 // fraction of the content width
	align string
}

// GenerateDailyReportPDF renders report into storagePath (created if needed)
// and returns the path of the written file.
func GenerateDailyReportPDF(report *ledger.DailyReport, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("daily_%s.pdf", report.Date))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, "Daily Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, report.Date, "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	section := func(title string) {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, title, "", 1, "L", false, 0, "")
		pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
		pdf.Ln(1)
	}
	table := func(cols []pdfColumn, rows [][]string) {
		pdf.SetFont("Helvetica", "B", 7)
		for i, c := range cols {
			ln := 0
			if i == len(cols)-1 {
				ln = 1
			}
			pdf.CellFormat(contentW*c.width, 5, c.title, "B", ln, c.align, false, 0, "")
		}
		pdf.SetFont("Helvetica", "", 7)
		if len(rows) == 0 {
			pdf.CellFormat(contentW, 5, "none", "", 1, "L", false, 0, "")
			return
		}
		for _, row := range rows {
			for i, c := range cols {
				ln := 0
				if i == len(cols)-1 {
					ln = 1
				}
				pdf.CellFormat(contentW*c.width, 5, tr(clip(row[i], int(c.width*110))), "", ln, c.align, false, 0, "")
			}
		}
	}

	section("Totals")
	table([]pdfColumn{{"Purchases", .25, "R"}, {"Sales", .25, "R"}, {"Received from customers", .25, "R"}, {"Paid to suppliers", .25, "R"}},
		[][]string{{
			money(report.Totals.Purchases), money(report.Totals.Sales),
			money(report.Totals.ReceivedFromCust), money(report.Totals.PaidToSuppliers),
		}})

	// ── Bill-wise / party-wise ───────────────────────────────────────────────
	section("Bills")
	bills := make([][]string, 0, len(report.Bills))
	for _, b := range report.Bills {
		bills = append(bills, []string{string(b.Kind), b.Bill, fmt.Sprint(b.Lines), b.Qty.String(), money(b.Value)})
	}
	table([]pdfColumn{{"Kind", .15, "L"}, {"Bill", .40, "L"}, {"Lines", .10, "R"}, {"Qty", .15, "R"}, {"Value", .20, "R"}}, bills)

	section("Parties")
	parties := make([][]string, 0, len(report.Parties))
	for _, p := range report.Parties {
		parties = append(parties, []string{string(p.Kind), p.Party, money(p.Value)})
	}
	table([]pdfColumn{{"Kind", .15, "L"}, {"Party", .60, "L"}, {"Value", .25, "R"}}, parties)

	// ── Movements ────────────────────────────────────────────────────────────
	section("Movements")
	moves := make([][]string, 0, len(report.Moves))
	for _, m := range report.Moves {
		price := ""
		if m.PricePerUnit.Valid {
			price = money(m.PricePerUnit.Decimal)
		}
		moves = append(moves, []string{
			m.TS.Format("15:04"), string(m.Kind), m.ProductName, m.Size, m.Qty.String(),
			price, money(m.Value), m.PartyName, m.Notes,
		})
	}
	table([]pdfColumn{
		{"Time", .07, "L"}, {"Kind", .09, "L"}, {"Product", .20, "L"}, {"Size", .09, "L"},
		{"Qty", .08, "R"}, {"Price", .09, "R"}, {"Value", .11, "R"}, {"Party", .14, "L"}, {"Notes", .13, "L"},
	}, moves)

	section("Payments")
	pays := make([][]string, 0, len(report.Payments))
	for _, p := range report.Payments {
		pays = append(pays, []string{p.TS.Format("15:04"), string(p.Kind), p.PartyType, p.PartyName, money(p.Amount), p.Notes})
	}
	table([]pdfColumn{{"Time", .08, "L"}, {"Kind", .14, "L"}, {"Type", .12, "L"}, {"Party", .28, "L"}, {"Amount", .14, "R"}, {"Notes", .24, "L"}}, pays)

	// ── Closing stock ────────────────────────────────────────────────────────
	section("Closing stock")
	closing := make([][]string, 0, len(report.Closing))
	for _, l := range report.Closing {
		flag := ""
		if l.Negative {
			flag = "NEGATIVE"
		}
		closing = append(closing, []string{l.Product.Name, l.Product.Material, l.Product.Size, l.Product.Unit, l.Stock.String(), flag})
	}
	table([]pdfColumn{{"Product", .30, "L"}, {"Material", .16, "L"}, {"Size", .14, "L"}, {"Unit", .10, "L"}, {"Stock", .14, "R"}, {"", .16, "C"}}, closing)

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if n < 2 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}
