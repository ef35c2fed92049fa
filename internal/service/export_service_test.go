package service

import (
	"bytes"
	"encoding/csv"
	"testing"

	"tileledger/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportFixture(t *testing.T) (*fixture, ExportService) {
	t.Helper()
	f := newFixture(t, ledger.DefaultDedupeWindow)
	pid := f.product(t, "Marble", "2x2", "4")
	cid := f.customer(t, "Ravi")
	_, err := f.ledger.AddMove(f.ctx, saleReq(pid, "6", "50", int64p(cid), "Bill 3"))
	require.NoError(t, err)
	f.product(t, "Granite", "4x4", "40")
	return f, NewExportService(f.reports, t.TempDir(), dec("10"))
}

func TestExportStock_CSV(t *testing.T) {
	f, svc := exportFixture(t)
	var buf bytes.Buffer
	require.NoError(t, svc.ExportStock(f.ctx, &buf, "CSV"))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, stockHeader, records[0])
	// (size, name) order: 2x2 before 4x4
	assert.Equal(t, []string{"1", "Marble", "Tiles", "2x2", "box", "4", "-2", "negative"}, records[1])
	assert.Equal(t, "ok", records[2][7])
}

func TestExportDaily_XLSX(t *testing.T) {
	f, svc := exportFixture(t)
	var buf bytes.Buffer
	require.NoError(t, svc.ExportDaily(f.ctx, &buf, day, "xlsx"))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("2024-03-10")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, dailyHeader, rows[0])
	assert.Equal(t, "sale", rows[1][1])
	assert.Equal(t, "Marble", rows[1][2])
	assert.Equal(t, "Ravi", rows[1][8])
	assert.Equal(t, "Bill 3", rows[1][9])
}

func TestExportDaily_PDF(t *testing.T) {
	f, svc := exportFixture(t)
	var buf bytes.Buffer
	require.NoError(t, svc.ExportDaily(f.ctx, &buf, day, "pdf"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestExport_RejectsUnknownFormat(t *testing.T) {
	f, svc := exportFixture(t)
	var buf bytes.Buffer
	assert.ErrorIs(t, svc.ExportStock(f.ctx, &buf, "pdf"), ErrValidation)
	assert.ErrorIs(t, svc.ExportDaily(f.ctx, &buf, day, "docx"), ErrValidation)
	assert.Zero(t, buf.Len())
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType(FormatPDF))
	assert.Contains(t, ContentType(FormatCSV), "text/csv")
	assert.Equal(t, "application/octet-stream", ContentType("bin"))
}
