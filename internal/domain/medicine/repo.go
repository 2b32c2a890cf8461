package medicine

import (
	"context"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
)

// Repository is the medicine catalogue of the clinic backend.
type Repository interface {
	ListMedicines(ctx context.Context, token string) ([]backend.Medicine, error)
	CreateMedicine(ctx context.Context, token string, m backend.Medicine) (*backend.Medicine, error)
	UpdateMedicine(ctx context.Context, token string, m backend.Medicine) (*backend.Medicine, error)
	DeleteMedicine(ctx context.Context, token string, id int64) error
}
