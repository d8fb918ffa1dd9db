package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSX_RoundTrip(t *testing.T) {
	data, err := XLSX(Sheet{
		Name:    "Earnings 2024-06",
		Headers: []string{"Guard", "Shifts", "Net"},
		Widths:  []float64{20, 10},
		Rows: [][]interface{}{
			{"Amos", 10, 10300.5},
			{"Bela", 0, 0},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Earnings 2024-06"}, f.GetSheetList())

	rows, err := f.GetRows("Earnings 2024-06")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Guard", "Shifts", "Net"}, rows[0])
	assert.Equal(t, "Amos", rows[1][0])
	assert.Equal(t, "10", rows[1][1])
	assert.Equal(t, "10300.5", rows[1][2])
}
