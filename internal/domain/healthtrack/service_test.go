package healthtrack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
)

type mockRecordRepo struct {
	records []backend.HealthRecord
	chart   *backend.HealthChart
	created []backend.HealthRecord
	err     error
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{}
}

func (m *mockRecordRepo) HealthRecords(_ context.Context, _ string, patientID int64) ([]backend.HealthRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []backend.HealthRecord
	for _, r := range m.records {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRecordRepo) CreateHealthRecord(_ context.Context, _ string, rec backend.HealthRecord) (*backend.HealthRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	rec.ID = int64(len(m.created) + 1)
	m.created = append(m.created, rec)
	return &rec, nil
}

func (m *mockRecordRepo) HealthChart(_ context.Context, _ string, _ int64) (*backend.HealthChart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.chart, nil
}

func newTestService(repo *mockRecordRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_Records_DerivesColors(t *testing.T) {
	repo := newMockRecordRepo()
	repo.records = []backend.HealthRecord{
		{ID: 1, PatientID: 5, BMICategory: BMINormal, SpO2Category: SpO2Low},
		{ID: 2, PatientID: 5, BMICategory: "Không rõ"},
		{ID: 3, PatientID: 9},
	}
	svc := newTestService(repo)

	recs, err := svc.Records(context.Background(), "tok", 5)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].BMIColor != "green" || recs[0].SpO2Color != "orange" {
		t.Errorf("unexpected colors %q/%q", recs[0].BMIColor, recs[0].SpO2Color)
	}
	if recs[1].BMIColor != NeutralColor {
		t.Errorf("expected neutral color for unknown category, got %q", recs[1].BMIColor)
	}
}

func TestService_AddRecord_ComputesBMI(t *testing.T) {
	repo := newMockRecordRepo()
	svc := newTestService(repo)

	rec, err := svc.AddRecord(context.Background(), "tok", 5, NewRecordInput{
		Weight: f(70),
		Height: f(175),
		Gender: "MALE",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.BMI == nil || *rec.BMI != 22.9 {
		t.Fatalf("expected BMI 22.9, got %v", rec.BMI)
	}
	if rec.BMICategory != BMINormal || rec.BMIColor != "green" {
		t.Errorf("unexpected category %q color %q", rec.BMICategory, rec.BMIColor)
	}
	if rec.RecordDate != "2024-03-07" {
		t.Errorf("expected default record date, got %q", rec.RecordDate)
	}
	if len(repo.created) != 1 || repo.created[0].PatientID != 5 {
		t.Errorf("expected record stored for patient 5, got %+v", repo.created)
	}
}

func TestService_AddRecord_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   NewRecordInput
	}{
		{"empty", NewRecordInput{}},
		{"weight without height", NewRecordInput{Weight: f(70)}},
		{"systolic without diastolic", NewRecordInput{Systolic: f(120)}},
		{"spo2 over 100", NewRecordInput{SpO2: f(101)}},
		{"bad date", NewRecordInput{SpO2: f(98), RecordDate: "07/03/2024"}},
		{"non-positive only", NewRecordInput{BloodSugar: f(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRecordRepo()
			svc := newTestService(repo)
			_, err := svc.AddRecord(context.Background(), "tok", 5, tt.in)
			var verr *apperr.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(repo.created) != 0 {
				t.Error("expected no backend call on validation failure")
			}
		})
	}
}

func TestService_AddRecord_BackendError(t *testing.T) {
	repo := newMockRecordRepo()
	repo.err = apperr.ErrUnavailable
	svc := newTestService(repo)

	_, err := svc.AddRecord(context.Background(), "tok", 5, NewRecordInput{SpO2: f(98)})
	if !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestService_Chart(t *testing.T) {
	repo := newMockRecordRepo()
	repo.chart = &backend.HealthChart{
		Dates:  []string{"2024-03-01", "2024-03-02", "2024-03-03"},
		BMI:    []*float64{nil, nil, f(22.5)},
		Weight: []*float64{f(60), f(61), f(62)},
	}
	svc := newTestService(repo)

	chart, err := svc.Chart(context.Background(), "tok", 5)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(chart.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(chart.Points))
	}
	if chart.Summary.Weight == nil || chart.Summary.Weight.Latest != 62 {
		t.Errorf("expected weight summary from kept point, got %+v", chart.Summary.Weight)
	}
}

func TestService_Chart_NilSeries(t *testing.T) {
	svc := newTestService(newMockRecordRepo())
	chart, err := svc.Chart(context.Background(), "tok", 5)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(chart.Points) != 0 {
		t.Errorf("expected no points, got %d", len(chart.Points))
	}
}

func TestCalculateBMI(t *testing.T) {
	bmi, err := CalculateBMI(f(60), f(170))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if *bmi != 20.8 {
		t.Errorf("expected 20.8, got %v", *bmi)
	}

	for _, in := range [][2]*float64{{nil, f(170)}, {f(60), nil}, {f(0), f(170)}, {f(60), f(-1)}} {
		if _, err := CalculateBMI(in[0], in[1]); !errors.Is(err, ErrMissingInput) {
			t.Errorf("expected ErrMissingInput, got %v", err)
		}
	}
}

func TestEvaluate(t *testing.T) {
	res, err := Evaluate(CalculatorInput{
		Gender:   "FEMALE",
		WeightKg: f(45),
		HeightCm: f(160),
		SpO2:     f(93),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.BMI == nil || res.BMI.Value != 17.6 || res.BMI.Category != BMIUnderweight {
		t.Errorf("unexpected BMI result %+v", res.BMI)
	}
	if res.SpO2 == nil || res.SpO2.ColorToken != "orange" {
		t.Errorf("unexpected SpO2 result %+v", res.SpO2)
	}
	if res.BloodPressure != nil || res.BloodSugar != nil {
		t.Error("expected only entered metrics to be classified")
	}

	if _, err := Evaluate(CalculatorInput{Systolic: f(120)}); !errors.Is(err, ErrMissingInput) {
		t.Errorf("expected ErrMissingInput for half a blood pressure, got %v", err)
	}
}
