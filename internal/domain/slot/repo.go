package slot

import (
	"context"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
)

// Repository is the doctor slot surface of the clinic backend.
type Repository interface {
	ListSlots(ctx context.Context, token string, doctorID int64, date string) ([]backend.Slot, error)
	CreateSlot(ctx context.Context, token string, s backend.Slot) (*backend.Slot, error)
	DeleteSlot(ctx context.Context, token string, id int64) error
}
