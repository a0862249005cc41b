package order

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	created := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)

	pending := NewOrder("ORD-20260304-AAAAAA", created)
	pending.ClientName = "Jeanne Martin"
	pending.ClientEmail = "jeanne@example.com"
	pending.Total = "45050.00"

	approved := NewOrder("ORD-20260304-BBBBBB", created)
	approved.Total = "90000.00"
	require.NoError(t, approved.Approve(1, created.Add(2*time.Hour)))

	data, err := WriteWorkbook([]*Order{pending, approved})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Orders"}, f.GetSheetList())

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Order number", rows[0][0])
	assert.Equal(t, "Paid at", rows[0][8])

	assert.Equal(t, []string{
		"ORD-20260304-AAAAAA", "pending", "Jeanne Martin", "jeanne@example.com", "",
		"45050.00", "2026-03-04 09:30",
	}, rows[1])

	assert.Equal(t, "approved", rows[2][1])
	assert.Equal(t, "2026-03-04 11:30", rows[2][7])
}

func TestWriteWorkbook_Empty(t *testing.T) {
	data, err := WriteWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
