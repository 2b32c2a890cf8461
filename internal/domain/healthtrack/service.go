package healthtrack

import (
	"context"
	"fmt"
	"time"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
)

type Service struct {
	repo RecordRepository
	now  func() time.Time
}

func NewService(repo RecordRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Records lists the patient's stored records with color tokens derived from
// the backend's category strings.
func (s *Service) Records(ctx context.Context, token string, patientID int64) ([]Record, error) {
	recs, err := s.repo.HealthRecords(ctx, token, patientID)
	if err != nil {
		return nil, fmt.Errorf("list health records: %w", err)
	}
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = newRecord(r)
	}
	return out, nil
}

// NewRecordInput is the patient's health-record form.
type NewRecordInput struct {
	RecordDate string   `json:"recordDate"`
	Weight     *float64 `json:"weight"`
	Height     *float64 `json:"height"`
	Systolic   *float64 `json:"systolic"`
	Diastolic  *float64 `json:"diastolic"`
	BloodSugar *float64 `json:"bloodSugar"`
	SpO2       *float64 `json:"spo2"`
	Gender     string   `json:"gender"`
	Note       string   `json:"note"`
}

// AddRecord validates the form, fills in BMI and categories where they can
// be computed locally, then stores it.
func (s *Service) AddRecord(ctx context.Context, token string, patientID int64, in NewRecordInput) (*Record, error) {
	rec, err := s.prepare(patientID, in)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.CreateHealthRecord(ctx, token, rec)
	if err != nil {
		return nil, fmt.Errorf("create health record: %w", err)
	}
	out := newRecord(*saved)
	return &out, nil
}

func (s *Service) prepare(patientID int64, in NewRecordInput) (backend.HealthRecord, error) {
	if !entered(in.Weight) && !entered(in.Systolic) && !entered(in.Diastolic) &&
		!entered(in.BloodSugar) && !entered(in.SpO2) {
		return backend.HealthRecord{}, apperr.Validation("", "Vui lòng nhập ít nhất một chỉ số")
	}
	if entered(in.Weight) != entered(in.Height) {
		return backend.HealthRecord{}, apperr.Validation("height", "Cần nhập cả cân nặng và chiều cao để tính BMI")
	}
	if entered(in.Systolic) != entered(in.Diastolic) {
		return backend.HealthRecord{}, apperr.Validation("diastolic", "Cần nhập cả huyết áp tâm thu và tâm trương")
	}
	if entered(in.SpO2) && *in.SpO2 > 100 {
		return backend.HealthRecord{}, apperr.Validation("spo2", "SpO2 không được vượt quá 100%")
	}

	date := in.RecordDate
	if date == "" {
		date = s.now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return backend.HealthRecord{}, apperr.Validation("recordDate", "Ngày đo không hợp lệ")
	}

	rec := backend.HealthRecord{
		PatientID:  patientID,
		RecordDate: date,
		Weight:     in.Weight,
		Height:     in.Height,
		Systolic:   in.Systolic,
		Diastolic:  in.Diastolic,
		BloodSugar: in.BloodSugar,
		SpO2:       in.SpO2,
		Note:       in.Note,
	}
	if bmi, err := CalculateBMI(in.Weight, in.Height); err == nil {
		g, _ := ParseGender(in.Gender)
		rec.BMI = bmi
		rec.BMICategory = ClassifyBMI(*bmi, g)
	}
	if entered(in.Systolic) {
		rec.BloodPressureCategory = ClassifyBloodPressure(*in.Systolic, *in.Diastolic)
	}
	if entered(in.BloodSugar) {
		rec.BloodSugarCategory = ClassifyBloodSugar(*in.BloodSugar)
	}
	if entered(in.SpO2) {
		rec.SpO2Category = ClassifySpO2(*in.SpO2)
	}
	return rec, nil
}

// Chart fetches the patient's series and returns the transformed readings
// with their summary.
func (s *Service) Chart(ctx context.Context, token string, patientID int64) (*Chart, error) {
	series, err := s.repo.HealthChart(ctx, token, patientID)
	if err != nil {
		return nil, fmt.Errorf("health chart: %w", err)
	}
	if series == nil {
		series = &backend.HealthChart{}
	}
	points := Transform(*series)
	return &Chart{Points: points, Summary: Summarize(points)}, nil
}
