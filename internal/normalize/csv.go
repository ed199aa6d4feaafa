package normalize

import (
	"strings"

	"novareg/internal/model"
)

// ExportHeaders is the fixed header row for delimited exports.
var ExportHeaders = []string{"Vendor", "Customer", "Details", "Est#", "PO#", "Date Ordered", "Expected", "Status"}

// ParseCSV converts delimited text with a header row into canonical orders.
// Column membership resolves by case-insensitive substring match against the
// header names; a missing header yields an empty column for every row. Rows
// with fewer than 2 cells, or with both vendor and customer empty, drop.
func ParseCSV(text string, registrySize int) []model.Order {
	rows := splitRows(text)
	if len(rows) < 2 {
		return nil
	}
	headers := rows[0]
	for i := range headers {
		headers[i] = strings.ToLower(headers[i])
	}
	col := func(name string) int {
		for i, h := range headers {
			if strings.Contains(h, name) {
				return i
			}
		}
		return -1
	}
	idxVendor := col("vendor")
	idxCustomer := col("customer")
	idxDesc := col("detail")
	idxEst := col("est")
	idxPO := col("po")
	idxDate := col("date")
	idxExpect := col("expect")
	idxStatus := col("status")

	cell := func(row []string, idx int) Text {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return Text(row[idx])
	}

	nrm := NewNormalizer(registrySize, "csv")
	var orders []model.Order
	for _, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		o, ok := nrm.Clean(Record{
			VendorCode:       cell(row, idxVendor),
			CustomerName:     cell(row, idxCustomer),
			Description:      cell(row, idxDesc),
			EstNum:           cell(row, idxEst),
			OrderNum:         cell(row, idxPO),
			OrderDate:        cell(row, idxDate),
			ExpectedRecvDate: cell(row, idxExpect),
			Status:           cell(row, idxStatus),
		})
		if !ok {
			continue
		}
		orders = append(orders, o)
	}
	return orders
}

// splitRows splits on newlines and commas, trims cells and strips one layer
// of surrounding double quotes. Deliberately simple: the source format has
// no embedded commas.
func splitRows(text string) [][]string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		cells := strings.Split(strings.TrimRight(line, "\r"), ",")
		for i, c := range cells {
			c = strings.TrimSpace(c)
			c = strings.TrimPrefix(c, `"`)
			c = strings.TrimSuffix(c, `"`)
			cells[i] = strings.TrimSpace(c)
		}
		rows = append(rows, cells)
	}
	return rows
}

// ExportCSV renders the registry as delimited text: the fixed header row,
// then one row per order with every field quoted and inner quotes doubled.
// Orders appear in the sequence they are held.
func ExportCSV(orders []model.Order) string {
	var b strings.Builder
	writeRow(&b, ExportHeaders)
	for _, o := range orders {
		writeRow(&b, []string{
			o.VendorCode, o.CustomerName, o.Description, o.EstNum,
			o.OrderNum, o.OrderDate, o.ExpectedRecvDate, o.Status,
		})
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(c, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
