package healthtrack

import (
	"errors"
	"math"
)

// ErrMissingInput is returned when the calculator has nothing to classify.
var ErrMissingInput = errors.New("missing input")

// CalculatorInput is the live form state. Nil or non-positive fields are
// treated as not entered yet.
type CalculatorInput struct {
	Gender     string   `json:"gender"`
	WeightKg   *float64 `json:"weight"`
	HeightCm   *float64 `json:"height"`
	Systolic   *float64 `json:"systolic"`
	Diastolic  *float64 `json:"diastolic"`
	BloodSugar *float64 `json:"bloodSugar"`
	SpO2       *float64 `json:"spo2"`
}

// MetricResult is the feedback for one metric.
type MetricResult struct {
	Value float64 `json:"value"`
	ClassificationResult
}

// CalculatorResult holds feedback for whichever metrics were entered.
type CalculatorResult struct {
	BMI           *MetricResult `json:"bmi,omitempty"`
	BloodPressure *MetricResult `json:"bloodPressure,omitempty"`
	BloodSugar    *MetricResult `json:"bloodSugar,omitempty"`
	SpO2          *MetricResult `json:"spo2,omitempty"`
}

// CalculateBMI returns weight / height² rounded to one decimal. Height is in
// centimetres.
func CalculateBMI(weightKg, heightCm *float64) (*float64, error) {
	if !entered(weightKg) || !entered(heightCm) {
		return nil, ErrMissingInput
	}
	m := *heightCm / 100
	bmi := round1(*weightKg / (m * m))
	return &bmi, nil
}

// Evaluate classifies every metric present in the input. Blood pressure
// needs both systolic and diastolic. If nothing is present it returns
// ErrMissingInput.
func Evaluate(in CalculatorInput) (*CalculatorResult, error) {
	res := &CalculatorResult{}
	found := false

	if bmi, err := CalculateBMI(in.WeightKg, in.HeightCm); err == nil {
		g, _ := ParseGender(in.Gender)
		res.BMI = &MetricResult{Value: *bmi, ClassificationResult: Classify(KindBMI, ClassifyBMI(*bmi, g))}
		found = true
	}
	if entered(in.Systolic) && entered(in.Diastolic) {
		cat := ClassifyBloodPressure(*in.Systolic, *in.Diastolic)
		res.BloodPressure = &MetricResult{Value: *in.Systolic, ClassificationResult: Classify(KindBloodPressure, cat)}
		found = true
	}
	if entered(in.BloodSugar) {
		cat := ClassifyBloodSugar(*in.BloodSugar)
		res.BloodSugar = &MetricResult{Value: *in.BloodSugar, ClassificationResult: Classify(KindBloodSugar, cat)}
		found = true
	}
	if entered(in.SpO2) {
		cat := ClassifySpO2(*in.SpO2)
		res.SpO2 = &MetricResult{Value: *in.SpO2, ClassificationResult: Classify(KindSpO2, cat)}
		found = true
	}

	if !found {
		return nil, ErrMissingInput
	}
	return res, nil
}

func entered(v *float64) bool {
	return v != nil && *v > 0 && !math.IsInf(*v, 0) && !math.IsNaN(*v)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
