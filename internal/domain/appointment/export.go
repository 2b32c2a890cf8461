package appointment

import (
	"io"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/export"
)

var exportHeaders = []string{
	"Mã", "Họ tên", "Số điện thoại", "Email", "Khoa", "Ngày khám", "Khung giờ",
	"Bác sĩ", "Số thứ tự", "Trạng thái", "Thanh toán", "Phí khám",
}

var exportWidths = []float64{8, 25, 15, 25, 20, 12, 14, 25, 10, 20, 18, 12}

// Export writes records as an xlsx workbook in the order given.
func Export(w io.Writer, records []Record) error {
	rows := make([][]interface{}, len(records))
	for i, r := range records {
		var queue interface{}
		if r.QueueNumber != nil {
			queue = *r.QueueNumber
		}
		rows[i] = []interface{}{
			r.ID, r.PatientName, r.Phone, r.Email, r.Department, r.AppointmentDate,
			r.TimeSlot, r.DoctorName, queue, r.StatusLabel, r.PaymentLabel, r.Fee,
		}
	}
	return export.WriteXLSX(w, export.Sheet{
		Name:    "Lịch hẹn",
		Headers: exportHeaders,
		Widths:  exportWidths,
		Rows:    rows,
	})
}
