package healthtrack

import (
	"math"
	"testing"
)

func TestClassifyBMI_Male(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{10, BMIUnderweight},
		{17, BMIUnderweight},
		{18.49, BMIUnderweight},
		{18.5, BMINormal},
		{22, BMINormal},
		{23, BMIOverweight},
		{25, BMIPreObese},
		{29.9, BMIPreObese},
		{30, BMIObese1},
		{35, BMIObese2},
		{40, BMIObese3},
		{41, BMIObese3},
	}
	for _, tt := range tests {
		if got := ClassifyBMI(tt.value, Male); got != tt.want {
			t.Errorf("ClassifyBMI(%v, MALE) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestClassifyBMI_Female(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{17.9, BMIUnderweight},
		{18, BMINormal},
		{21.9, BMINormal},
		{22, BMIOverweight},
		{24, BMIPreObese},
		{29, BMIObese1},
		{34, BMIObese2},
		{39, BMIObese3},
	}
	for _, tt := range tests {
		if got := ClassifyBMI(tt.value, Female); got != tt.want {
			t.Errorf("ClassifyBMI(%v, FEMALE) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestClassifyBMI_UnknownGenderUsesMaleTable(t *testing.T) {
	if got := ClassifyBMI(18.2, ""); got != BMIUnderweight {
		t.Errorf("expected male table for empty gender, got %q", got)
	}
}

func TestClassifyBMI_TotalOverReals(t *testing.T) {
	for _, v := range []float64{-5, 0, math.Inf(1), math.Inf(-1), math.NaN()} {
		if got := ClassifyBMI(v, Male); got == "" {
			t.Errorf("ClassifyBMI(%v) returned empty category", v)
		}
	}
	if got := ClassifyBMI(math.NaN(), Female); got != BMIObese3 {
		t.Errorf("expected NaN to fall through to ceiling, got %q", got)
	}
}

func TestClassifyBMI_Monotonic(t *testing.T) {
	order := map[string]int{
		BMIUnderweight: 0, BMINormal: 1, BMIOverweight: 2, BMIPreObese: 3,
		BMIObese1: 4, BMIObese2: 5, BMIObese3: 6,
	}
	for _, g := range []Gender{Male, Female} {
		prev := -1
		for v := 10.0; v <= 50; v += 0.1 {
			stage := order[ClassifyBMI(v, g)]
			if stage < prev {
				t.Fatalf("%s: category decreased at %v", g, v)
			}
			prev = stage
		}
	}
}

func TestClassifyBloodPressure(t *testing.T) {
	tests := []struct {
		sys, dia float64
		want     string
	}{
		{85, 55, BPLow},
		{110, 70, BPNormal},
		{125, 70, BPElevated},
		{110, 85, BPElevated},
		{145, 85, BPStage1},
		{130, 95, BPStage1},
		{165, 80, BPStage2},
		{185, 90, BPCrisis},
		{120, 115, BPCrisis},
	}
	for _, tt := range tests {
		if got := ClassifyBloodPressure(tt.sys, tt.dia); got != tt.want {
			t.Errorf("ClassifyBloodPressure(%v, %v) = %q, want %q", tt.sys, tt.dia, got, tt.want)
		}
	}
}

func TestClassifyBloodSugar(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{60, SugarLow},
		{70, SugarNormal},
		{99, SugarNormal},
		{100, SugarPre},
		{126, SugarDiabetes},
	}
	for _, tt := range tests {
		if got := ClassifyBloodSugar(tt.v); got != tt.want {
			t.Errorf("ClassifyBloodSugar(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestClassifySpO2(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{85, SpO2Danger},
		{90, SpO2Low},
		{94.9, SpO2Low},
		{95, SpO2Normal},
		{100, SpO2Normal},
	}
	for _, tt := range tests {
		if got := ClassifySpO2(tt.v); got != tt.want {
			t.Errorf("ClassifySpO2(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestColorFor(t *testing.T) {
	if got := ColorFor(KindBMI, BMINormal); got != "green" {
		t.Errorf("expected green, got %q", got)
	}
	if got := ColorFor(KindBloodPressure, BPCrisis); got != "purple" {
		t.Errorf("expected purple, got %q", got)
	}
	if got := ColorFor(KindBMI, "Béo phì"); got != NeutralColor {
		t.Errorf("expected neutral for unknown category, got %q", got)
	}
	if got := ColorFor(KindBMI, "bình thường"); got != NeutralColor {
		t.Errorf("expected exact string match, got %q", got)
	}
	if got := ColorFor("pulse", BMINormal); got != NeutralColor {
		t.Errorf("expected neutral for unknown kind, got %q", got)
	}
}

func TestParseGender(t *testing.T) {
	if g, err := ParseGender("female"); err != nil || g != Female {
		t.Errorf("expected FEMALE, got %q err=%v", g, err)
	}
	if _, err := ParseGender("other"); err == nil {
		t.Error("expected error for unknown gender")
	}
}
