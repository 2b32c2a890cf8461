package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf, Sheet{
		Name:    "Lịch hẹn",
		Headers: []string{"Mã", "Họ tên", "Phí"},
		Widths:  []float64{8, 25},
		Rows: [][]interface{}{
			{int64(1), "Nguyễn Văn An", 150000.0},
			{int64(2), nil, 0.0},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Lịch hẹn"}, f.GetSheetList())

	rows, err := f.GetRows("Lịch hẹn")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Mã", "Họ tên", "Phí"}, rows[0])
	assert.Equal(t, "Nguyễn Văn An", rows[1][1])
	assert.Equal(t, "", rows[2][1])
}

func TestWriteXLSX_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Sheet{Name: "Sheet1", Headers: []string{"A"}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
