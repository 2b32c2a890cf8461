package medicine

import (
	"io"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/export"
)

var exportHeaders = []string{
	"Mã", "Tên thuốc", "Nhóm", "Đơn vị", "Giá", "Tồn kho", "Nhà sản xuất", "Hạn sử dụng", "Ghi chú",
}

var exportWidths = []float64{8, 30, 20, 10, 12, 10, 25, 14, 20}

// Export writes the catalogue as an xlsx workbook.
func Export(w io.Writer, items []Item) error {
	rows := make([][]interface{}, len(items))
	for i, it := range items {
		rows[i] = []interface{}{
			it.ID, it.Name, it.Category, it.Unit, it.Price, it.Stock,
			it.Manufacturer, it.ExpiryDate, note(it),
		}
	}
	return export.WriteXLSX(w, export.Sheet{
		Name:    "Thuốc",
		Headers: exportHeaders,
		Widths:  exportWidths,
		Rows:    rows,
	})
}

func note(it Item) string {
	switch {
	case it.Expired:
		return "Hết hạn"
	case it.ExpiringSoon:
		return "Sắp hết hạn"
	case it.LowStock:
		return "Sắp hết hàng"
	}
	return ""
}
