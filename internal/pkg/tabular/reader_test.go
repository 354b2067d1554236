package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadRowsCSV(t *testing.T) {
	body := "\xef\xbb\xbfemployee_code,start_date,end_date,shift_code\nEMP1001,2024-03-04,2024-03-08,a2307\n"
	rows, err := ReadRows(strings.NewReader(body), "upload.CSV", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "employee_code", rows[0][0])
	assert.Equal(t, "a2307", rows[1][3])
}

func TestReadRowsXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"employee_code", "shift_code"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"EMP1004", "o"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ReadRows(bytes.NewReader(buf.Bytes()), "roster.xlsx", 0)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"employee_code", "shift_code"}, {"EMP1004", "o"}}, rows)
}

func TestReadRowsRejectsUnknownExtension(t *testing.T) {
	_, err := ReadRows(strings.NewReader("x"), "roster.pdf", 0)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadRowsEnforcesSizeLimit(t *testing.T) {
	_, err := ReadRows(strings.NewReader("a,b\n1,2\n"), "small.csv", 4)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestReadRowsEmptyCSV(t *testing.T) {
	_, err := ReadRows(strings.NewReader(""), "empty.csv", 0)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestHeaderIndexAndCell(t *testing.T) {
	idx := HeaderIndex([]string{" Employee_Code ", "SHIFT_CODE"})
	assert.Equal(t, 0, idx["employee_code"])
	assert.Equal(t, 1, idx["shift_code"])

	assert.Equal(t, "x", Cell([]string{" x "}, 0))
	assert.Equal(t, "", Cell([]string{"x"}, 3))
	assert.Equal(t, "", Cell([]string{"x"}, -1))
}
