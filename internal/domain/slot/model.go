package slot

import (
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
)

type Slot = backend.Slot

// View is a slot with its remaining capacity.
type View struct {
	Slot
	Remaining int  `json:"remaining"`
	Full      bool `json:"full"`
}

func newView(s Slot) View {
	rem := s.MaxPatients - s.CurrentPatients
	if rem < 0 {
		rem = 0
	}
	return View{Slot: s, Remaining: rem, Full: rem == 0}
}

// GenerateInput asks for a day of slots for one doctor.
type GenerateInput struct {
	DoctorID    int64  `json:"doctorId"`
	Date        string `json:"date"`
	From        string `json:"from"`
	To          string `json:"to"`
	StepMinutes int    `json:"stepMinutes"`
	MaxPatients int    `json:"maxPatients"`
	// Commit creates the drafted slots; otherwise only the labels are returned.
	Commit bool `json:"commit"`
}

// GenerateResult lists drafted labels and, when committed, what was created.
type GenerateResult struct {
	Date      string   `json:"date"`
	WeeklyOff bool     `json:"weeklyOff"`
	Drafts    []string `json:"drafts"`
	Skipped   []string `json:"skipped"`
	Created   []View   `json:"created"`
}
