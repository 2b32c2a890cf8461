package medicine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns the catalogue matching f, sorted by name.
func (s *Service) List(ctx context.Context, token string, f Filter) ([]Item, Summary, error) {
	ms, err := s.repo.ListMedicines(ctx, token)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("list medicines: %w", err)
	}
	now := s.now()
	all := make([]Item, len(ms))
	for i, m := range ms {
		all[i] = newItem(m, f.threshold(), now)
	}

	out := make([]Item, 0, len(all))
	for _, it := range all {
		if f.match(it) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, summarize(all), nil
}

func (s *Service) Create(ctx context.Context, token string, m Medicine) (*Item, error) {
	m.ID = 0
	if err := validate(&m); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateMedicine(ctx, token, m)
	if err != nil {
		return nil, fmt.Errorf("create medicine: %w", err)
	}
	it := newItem(*created, DefaultLowStock, s.now())
	return &it, nil
}

func (s *Service) Update(ctx context.Context, token string, id int64, m Medicine) (*Item, error) {
	m.ID = id
	if err := validate(&m); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateMedicine(ctx, token, m)
	if err != nil {
		return nil, fmt.Errorf("update medicine %d: %w", id, err)
	}
	it := newItem(*updated, DefaultLowStock, s.now())
	return &it, nil
}

func (s *Service) Delete(ctx context.Context, token string, id int64) error {
	if err := s.repo.DeleteMedicine(ctx, token, id); err != nil {
		return fmt.Errorf("delete medicine %d: %w", id, err)
	}
	return nil
}

// validate trims text fields in place and checks the form.
func validate(m *Medicine) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Category = strings.TrimSpace(m.Category)
	m.Unit = strings.TrimSpace(m.Unit)
	m.Manufacturer = strings.TrimSpace(m.Manufacturer)
	m.ExpiryDate = strings.TrimSpace(m.ExpiryDate)

	switch {
	case m.Name == "":
		return apperr.Validation("name", "Vui lòng nhập tên thuốc.")
	case m.Unit == "":
		return apperr.Validation("unit", "Vui lòng nhập đơn vị tính.")
	case m.Price < 0:
		return apperr.Validation("price", "Giá thuốc không được âm.")
	case m.Stock < 0:
		return apperr.Validation("stockQuantity", "Số lượng tồn kho không được âm.")
	}
	if m.ExpiryDate != "" {
		if _, err := time.Parse("2006-01-02", m.ExpiryDate); err != nil {
			return apperr.Validation("expiryDate", "Hạn sử dụng không hợp lệ (YYYY-MM-DD).")
		}
	}
	return nil
}
