package infra

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() Table {
	ts := time.Date(2024, 3, 10, 9, 5, 0, 0, time.Local)
	return Table{
		Sheet:  "moves",
		Header: []string{"Time", "Product", "Qty", "Price"},
		Rows: [][]any{
			{ts, "Marble, polished", decimal.RequireFromString("-6"), decimal.NewNullDecimal(decimal.NewFromInt(50))},
			{ts, "Granite", decimal.NewFromInt(20), decimal.NullDecimal{}},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))
	assert.Equal(t,
		"Time,Product,Qty,Price\n"+
			"2024-03-10 09:05:00,\"Marble, polished\",-6,50\n"+
			"2024-03-10 09:05:00,Granite,20,\n",
		buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("moves")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Time", "Product", "Qty", "Price"}, rows[0])
	assert.Equal(t, "-6", rows[1][2])
	assert.Equal(t, "50", rows[1][3])
	if len(rows[2]) > 3 {
		assert.Empty(t, rows[2][3], "null price leaves the cell empty")
	}
}

func TestClip(t *testing.T) {
	assert.Equal(t, "Marble", clip("Marble", 10))
	assert.Equal(t, "Marb.", clip("Marble", 5))
	assert.Equal(t, "Marble", clip("Marble", 1))
}
