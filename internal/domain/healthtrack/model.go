package healthtrack

import "github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"

// ClassificationResult is a derived category and its color token. It is
// recomputed on every input change and never stored.
type ClassificationResult struct {
	Category   string `json:"category"`
	ColorToken string `json:"color"`
}

// MetricReading is one chart point flattened out of the backend time series.
// At least one of BMI, Systolic, BloodSugar or SpO2 is always set.
type MetricReading struct {
	Date       string   `json:"date"`
	FullDate   string   `json:"fullDate"`
	BMI        *float64 `json:"bmi"`
	Systolic   *float64 `json:"systolic"`
	Diastolic  *float64 `json:"diastolic"`
	BloodSugar *float64 `json:"bloodSugar"`
	SpO2       *float64 `json:"spo2"`
	Weight     *float64 `json:"weight"`
}

// Series is the backend time-series payload of parallel arrays.
type Series = backend.HealthChart

// Record is a stored health record plus the colors the portal derives from
// the backend's category strings.
type Record struct {
	backend.HealthRecord
	BMIColor           string `json:"bmiColor"`
	BloodPressureColor string `json:"bloodPressureColor"`
	BloodSugarColor    string `json:"bloodSugarColor"`
	SpO2Color          string `json:"spo2Color"`
}

func newRecord(r backend.HealthRecord) Record {
	return Record{
		HealthRecord:       r,
		BMIColor:           ColorFor(KindBMI, r.BMICategory),
		BloodPressureColor: ColorFor(KindBloodPressure, r.BloodPressureCategory),
		BloodSugarColor:    ColorFor(KindBloodSugar, r.BloodSugarCategory),
		SpO2Color:          ColorFor(KindSpO2, r.SpO2Category),
	}
}

// Stat summarises one metric over a chart.
type Stat struct {
	Count      int     `json:"count"`
	Latest     float64 `json:"latest"`
	LatestDate string  `json:"latestDate"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Avg        float64 `json:"avg"`
}

// Summary holds per-metric stats; a nil field means no values were recorded.
type Summary struct {
	Readings   int   `json:"readings"`
	BMI        *Stat `json:"bmi,omitempty"`
	Weight     *Stat `json:"weight,omitempty"`
	Systolic   *Stat `json:"systolic,omitempty"`
	Diastolic  *Stat `json:"diastolic,omitempty"`
	BloodSugar *Stat `json:"bloodSugar,omitempty"`
	SpO2       *Stat `json:"spo2,omitempty"`
}

// Chart is the transformed series with its summary.
type Chart struct {
	Points  []MetricReading `json:"points"`
	Summary Summary         `json:"summary"`
}
