package order

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Orders"

var exportHeader = []any{
	"Order number", "Status", "Client name", "Client email", "Client phone",
	"Total", "Created at", "Approved at", "Paid at",
}

const exportTimeLayout = "2006-01-02 15:04"

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(exportTimeLayout)
}

// WriteWorkbook renders orders as an XLSX file with one header row and one row per order.
func WriteWorkbook(orders []*Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			o.OrderNumber,
			string(o.status),
			o.ClientName,
			o.ClientEmail,
			o.ClientPhone,
			o.Total,
			o.CreatedAt.UTC().Format(exportTimeLayout),
			formatOptionalTime(o.ApprovedAt),
			formatOptionalTime(o.PaidAt),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write order %s: %w", o.OrderNumber, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
