package healthtrack

import (
	"fmt"
	"strings"
)

// Gender selects the BMI table.
type Gender string

const (
	Male   Gender = "MALE"
	Female Gender = "FEMALE"
)

// ParseGender accepts the backend's MALE/FEMALE values in any case.
func ParseGender(s string) (Gender, error) {
	switch Gender(strings.ToUpper(strings.TrimSpace(s))) {
	case Male:
		return Male, nil
	case Female:
		return Female, nil
	}
	return "", fmt.Errorf("invalid gender: %q", s)
}

// MetricKind names one classified vital sign.
type MetricKind string

const (
	KindBMI           MetricKind = "bmi"
	KindBloodPressure MetricKind = "bloodPressure"
	KindBloodSugar    MetricKind = "bloodSugar"
	KindSpO2          MetricKind = "spo2"
)

// Band is one row of a threshold table: values strictly below Below fall in
// Category.
type Band struct {
	Below    float64
	Category string
}

// Table is an ordered ascending threshold scan. The first band whose cutoff
// is strictly greater than the value wins; Ceiling catches everything else,
// so every real input (NaN included) yields exactly one category.
type Table struct {
	Bands   []Band
	Ceiling string
}

// Stage returns the index of the matching band, len(Bands) for the ceiling.
func (t Table) Stage(v float64) int {
	for i, b := range t.Bands {
		if v < b.Below {
			return i
		}
	}
	return len(t.Bands)
}

// Classify returns the category for v.
func (t Table) Classify(v float64) string {
	return t.category(t.Stage(v))
}

func (t Table) category(stage int) string {
	if stage >= len(t.Bands) {
		return t.Ceiling
	}
	return t.Bands[stage].Category
}

// BMI categories.
const (
	BMIUnderweight = "Thiếu cân"
	BMINormal      = "Bình thường"
	BMIOverweight  = "Thừa cân"
	BMIPreObese    = "Tiền béo phì"
	BMIObese1      = "Béo phì độ I"
	BMIObese2      = "Béo phì độ II"
	BMIObese3      = "Béo phì độ III"
)

var maleBMI = Table{
	Bands: []Band{
		{18.5, BMIUnderweight},
		{23, BMINormal},
		{25, BMIOverweight},
		{30, BMIPreObese},
		{35, BMIObese1},
		{40, BMIObese2},
	},
	Ceiling: BMIObese3,
}

var femaleBMI = Table{
	Bands: []Band{
		{18, BMIUnderweight},
		{22, BMINormal},
		{24, BMIOverweight},
		{29, BMIPreObese},
		{34, BMIObese1},
		{39, BMIObese2},
	},
	Ceiling: BMIObese3,
}

// ClassifyBMI maps a BMI value to its weight-status band. Cutoffs belong to
// the upper band (male 18.5 is "Bình thường"). Anything other than Female
// uses the male table.
func ClassifyBMI(value float64, g Gender) string {
	if g == Female {
		return femaleBMI.Classify(value)
	}
	return maleBMI.Classify(value)
}

// Blood pressure categories.
const (
	BPLow      = "Huyết áp thấp"
	BPNormal   = "Bình thường"
	BPElevated = "Tiền tăng huyết áp"
	BPStage1   = "Tăng huyết áp độ 1"
	BPStage2   = "Tăng huyết áp độ 2"
	BPCrisis   = "Tăng huyết áp kịch phát"
)

var systolicTable = Table{
	Bands: []Band{
		{90, BPLow},
		{120, BPNormal},
		{140, BPElevated},
		{160, BPStage1},
		{180, BPStage2},
	},
	Ceiling: BPCrisis,
}

var diastolicTable = Table{
	Bands: []Band{
		{60, BPLow},
		{80, BPNormal},
		{90, BPElevated},
		{100, BPStage1},
		{110, BPStage2},
	},
	Ceiling: BPCrisis,
}

// ClassifyBloodPressure scans systolic and diastolic independently and
// reports the higher of the two stages.
func ClassifyBloodPressure(systolic, diastolic float64) string {
	stage := systolicTable.Stage(systolic)
	if d := diastolicTable.Stage(diastolic); d > stage {
		stage = d
	}
	return systolicTable.category(stage)
}

// Blood sugar categories (fasting, mg/dL).
const (
	SugarLow      = "Hạ đường huyết"
	SugarNormal   = "Bình thường"
	SugarPre      = "Tiền tiểu đường"
	SugarDiabetes = "Tiểu đường"
)

var bloodSugarTable = Table{
	Bands: []Band{
		{70, SugarLow},
		{100, SugarNormal},
		{126, SugarPre},
	},
	Ceiling: SugarDiabetes,
}

// ClassifyBloodSugar classifies a fasting glucose reading in mg/dL.
func ClassifyBloodSugar(mgdl float64) string {
	return bloodSugarTable.Classify(mgdl)
}

// SpO2 categories.
const (
	SpO2Danger = "Nguy hiểm"
	SpO2Low    = "Thấp"
	SpO2Normal = "Bình thường"
)

var spo2Table = Table{
	Bands: []Band{
		{90, SpO2Danger},
		{95, SpO2Low},
	},
	Ceiling: SpO2Normal,
}

// ClassifySpO2 classifies an oxygen saturation percentage.
func ClassifySpO2(percent float64) string {
	return spo2Table.Classify(percent)
}

// NeutralColor is returned for categories no table knows about.
const NeutralColor = "gray"

// Category strings are matched by exact equality, so these maps must be kept
// in sync with the constants above and with whatever text the backend sends.
var colorTables = map[MetricKind]map[string]string{
	KindBMI: {
		BMIUnderweight: "blue",
		BMINormal:      "green",
		BMIOverweight:  "yellow",
		BMIPreObese:    "orange",
		BMIObese1:      "red",
		BMIObese2:      "darkred",
		BMIObese3:      "purple",
	},
	KindBloodPressure: {
		BPLow:      "blue",
		BPNormal:   "green",
		BPElevated: "yellow",
		BPStage1:   "orange",
		BPStage2:   "red",
		BPCrisis:   "purple",
	},
	KindBloodSugar: {
		SugarLow:      "blue",
		SugarNormal:   "green",
		SugarPre:      "orange",
		SugarDiabetes: "red",
	},
	KindSpO2: {
		SpO2Danger: "red",
		SpO2Low:    "orange",
		SpO2Normal: "green",
	},
}

// ColorFor returns the severity color token for a category string.
func ColorFor(kind MetricKind, category string) string {
	if c, ok := colorTables[kind][category]; ok {
		return c
	}
	return NeutralColor
}

// Classify pairs a category with its color token.
func Classify(kind MetricKind, category string) ClassificationResult {
	return ClassificationResult{Category: category, ColorToken: ColorFor(kind, category)}
}
