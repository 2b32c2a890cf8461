package slot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/scheduling"
)

const (
	defaultFrom = "08:00"
	defaultTo   = "17:00"
)

type Service struct {
	repo   Repository
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, now: time.Now, logger: logger.With().Str("component", "slot").Logger()}
}

// List returns slots ordered by date then time. Zero doctorID or empty date
// means no narrowing on that field.
func (s *Service) List(ctx context.Context, token string, doctorID int64, date string) ([]View, error) {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, apperr.Validation("date", "Ngày không hợp lệ (YYYY-MM-DD).")
		}
	}
	slots, err := s.repo.ListSlots(ctx, token, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].TimeSlot < slots[j].TimeSlot
	})
	out := make([]View, len(slots))
	for i, sl := range slots {
		out[i] = newView(sl)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, token string, in Slot) (*View, error) {
	in.ID = 0
	in.CurrentPatients = 0
	in.TimeSlot = strings.ReplaceAll(in.TimeSlot, " ", "")
	if err := s.validate(in); err != nil {
		return nil, err
	}
	in.Available = true
	created, err := s.repo.CreateSlot(ctx, token, in)
	if err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}
	v := newView(*created)
	return &v, nil
}

func (s *Service) validate(in Slot) error {
	if in.DoctorID <= 0 {
		return apperr.Validation("doctorId", "Vui lòng chọn bác sĩ.")
	}
	d, err := time.ParseInLocation("2006-01-02", in.Date, time.Local)
	if err != nil {
		return apperr.Validation("date", "Ngày không hợp lệ (YYYY-MM-DD).")
	}
	if d.Before(startOfDay(s.now())) {
		return apperr.Validation("date", "Không thể tạo khung giờ cho ngày đã qua.")
	}
	if _, err := scheduling.ParseSlot(in.TimeSlot); err != nil {
		return apperr.Validation("timeSlot", "Khung giờ phải có dạng HH:MM-HH:MM.")
	}
	if in.MaxPatients <= 0 {
		return apperr.Validation("maxPatients", "Số bệnh nhân tối đa phải lớn hơn 0.")
	}
	return nil
}

// Delete removes a slot. The backend refuses slots with booked patients and
// that refusal reaches the caller unchanged.
func (s *Service) Delete(ctx context.Context, token string, id int64) error {
	if err := s.repo.DeleteSlot(ctx, token, id); err != nil {
		return fmt.Errorf("delete slot %d: %w", id, err)
	}
	return nil
}

// Generate drafts a day of consecutive slots for a doctor. Labels that
// overlap an existing slot are skipped. Weekends produce no drafts.
func (s *Service) Generate(ctx context.Context, token string, in GenerateInput) (*GenerateResult, error) {
	if in.From == "" {
		in.From = defaultFrom
	}
	if in.To == "" {
		in.To = defaultTo
	}
	step := scheduling.DefaultStep
	if in.StepMinutes > 0 {
		step = time.Duration(in.StepMinutes) * time.Minute
	}
	if in.MaxPatients == 0 {
		in.MaxPatients = 1
	}
	probe := Slot{DoctorID: in.DoctorID, Date: in.Date, TimeSlot: in.From + "-" + in.To, MaxPatients: in.MaxPatients}
	if err := s.validate(probe); err != nil {
		return nil, err
	}

	res := &GenerateResult{Date: in.Date, Drafts: []string{}, Skipped: []string{}, Created: []View{}}
	day, _ := time.ParseInLocation("2006-01-02", in.Date, time.Local)
	if !scheduling.IsWorkDay(day) {
		res.WeeklyOff = true
		return res, nil
	}

	ranges, err := scheduling.Generate(in.From, in.To, step)
	if err != nil {
		return nil, apperr.Validation("stepMinutes", "Độ dài khung giờ không hợp lệ.")
	}
	existing, err := s.repo.ListSlots(ctx, token, in.DoctorID, in.Date)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	taken := make([]scheduling.TimeRange, 0, len(existing))
	for _, ex := range existing {
		if r, err := scheduling.ParseSlot(ex.TimeSlot); err == nil {
			taken = append(taken, r)
		}
	}

	for _, r := range ranges {
		if overlapsAny(r, taken) {
			res.Skipped = append(res.Skipped, r.String())
			continue
		}
		res.Drafts = append(res.Drafts, r.String())
	}
	if !in.Commit {
		return res, nil
	}

	for _, label := range res.Drafts {
		created, err := s.repo.CreateSlot(ctx, token, Slot{
			DoctorID:    in.DoctorID,
			Date:        in.Date,
			TimeSlot:    label,
			MaxPatients: in.MaxPatients,
			Available:   true,
		})
		if err != nil {
			var berr *apperr.BusinessError
			if errors.As(err, &berr) {
				s.logger.Warn().Str("time_slot", label).Str("reason", berr.Message).Msg("slot refused")
				res.Skipped = append(res.Skipped, label)
				continue
			}
			return res, fmt.Errorf("create slot %s: %w", label, err)
		}
		res.Created = append(res.Created, newView(*created))
	}
	s.logger.Info().
		Int64("doctor_id", in.DoctorID).
		Str("date", in.Date).
		Int("created", len(res.Created)).
		Int("skipped", len(res.Skipped)).
		Msg("generated slots")
	return res, nil
}

func overlapsAny(r scheduling.TimeRange, taken []scheduling.TimeRange) bool {
	for _, t := range taken {
		if r.Overlaps(t) {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
