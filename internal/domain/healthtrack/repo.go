package healthtrack

import (
	"context"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
)

// RecordRepository is the slice of the clinic backend that stores health
// records. *backend.Client satisfies it.
type RecordRepository interface {
	HealthRecords(ctx context.Context, token string, patientID int64) ([]backend.HealthRecord, error)
	CreateHealthRecord(ctx context.Context, token string, rec backend.HealthRecord) (*backend.HealthRecord, error)
	HealthChart(ctx context.Context, token string, patientID int64) (*backend.HealthChart, error)
}
