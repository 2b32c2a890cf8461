// Package dashboard builds the landing view for each role from the
// appointment and health services.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/domain/appointment"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/domain/healthtrack"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
)

const (
	maxUpcoming = 5
	maxPending  = 10
)

type AppointmentSource interface {
	ListAll(ctx context.Context, token string, f appointment.Filter) ([]appointment.Record, error)
	ListForPatient(ctx context.Context, token string, patientID int64) ([]appointment.Record, error)
	ListForDoctor(ctx context.Context, token string, doctorID int64, f appointment.Filter) ([]appointment.Record, error)
}

type HealthSource interface {
	Chart(ctx context.Context, token string, patientID int64) (*healthtrack.Chart, error)
}

// View is the role-dispatched dashboard. Exactly one of Patient, Doctor and
// Admin is set, matching Role.
type View struct {
	Role      auth.Role    `json:"role"`
	RoleLabel string       `json:"roleLabel"`
	Greeting  string       `json:"greeting"`
	Patient   *PatientView `json:"patient,omitempty"`
	Doctor    *DoctorView  `json:"doctor,omitempty"`
	Admin     *AdminView   `json:"admin,omitempty"`
}

type PatientView struct {
	Upcoming []appointment.Record `json:"upcoming"`
	Unpaid   int                  `json:"unpaid"`
	Health   healthtrack.Summary  `json:"health"`
}

type DoctorView struct {
	Today     []appointment.Record `json:"today"`
	Remaining int                  `json:"remaining"`
	Completed int                  `json:"completed"`
}

type AdminView struct {
	Stats   appointment.Stats    `json:"stats"`
	Pending []appointment.Record `json:"pending"`
}

type Service struct {
	appts  AppointmentSource
	health HealthSource
	now    func() time.Time
}

func NewService(appts AppointmentSource, health HealthSource) *Service {
	return &Service{appts: appts, health: health, now: time.Now}
}

// Build returns the dashboard for the session's role.
func (s *Service) Build(ctx context.Context, sess *auth.Session) (*View, error) {
	v := &View{
		Role:      sess.User.Role,
		RoleLabel: sess.User.Role.Label(),
		Greeting:  greeting(s.now(), sess.User),
	}
	var err error
	switch sess.User.Role {
	case auth.RolePatient:
		v.Patient, err = s.patient(ctx, sess)
	case auth.RoleDoctor:
		v.Doctor, err = s.doctor(ctx, sess)
	case auth.RoleAdmin:
		v.Admin, err = s.admin(ctx, sess)
	default:
		return nil, fmt.Errorf("dashboard: unsupported role %q", sess.User.Role)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) patient(ctx context.Context, sess *auth.Session) (*PatientView, error) {
	var recs []appointment.Record
	var chart *healthtrack.Chart

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recs, err = s.appts.ListForPatient(gctx, sess.Token, sess.User.ID)
		return err
	})
	g.Go(func() error {
		var err error
		chart, err = s.health.Chart(gctx, sess.Token, sess.User.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	today := s.today()
	v := &PatientView{Upcoming: []appointment.Record{}}
	if chart != nil {
		v.Health = chart.Summary
	}
	for _, r := range recs {
		if r.PaymentStatus != appointment.PaymentPaid && r.Status.Cancellable() {
			v.Unpaid++
		}
		if r.AppointmentDate >= today && active(r.Status) {
			v.Upcoming = append(v.Upcoming, r)
		}
	}
	sortByDate(v.Upcoming)
	if len(v.Upcoming) > maxUpcoming {
		v.Upcoming = v.Upcoming[:maxUpcoming]
	}
	return v, nil
}

func (s *Service) doctor(ctx context.Context, sess *auth.Session) (*DoctorView, error) {
	recs, err := s.appts.ListForDoctor(ctx, sess.Token, sess.User.ID, appointment.Filter{Date: s.today()})
	if err != nil {
		return nil, err
	}
	v := &DoctorView{Today: recs}
	if v.Today == nil {
		v.Today = []appointment.Record{}
	}
	for _, r := range recs {
		switch {
		case r.Status == appointment.StatusCompleted:
			v.Completed++
		case r.Status.Completable():
			v.Remaining++
		}
	}
	sortByDate(v.Today)
	return v, nil
}

func (s *Service) admin(ctx context.Context, sess *auth.Session) (*AdminView, error) {
	recs, err := s.appts.ListAll(ctx, sess.Token, appointment.Filter{})
	if err != nil {
		return nil, err
	}
	v := &AdminView{Stats: appointment.ComputeStats(recs), Pending: []appointment.Record{}}
	for _, r := range recs {
		if r.Status.Assignable() {
			v.Pending = append(v.Pending, r)
		}
	}
	sortByDate(v.Pending)
	if len(v.Pending) > maxPending {
		v.Pending = v.Pending[:maxPending]
	}
	return v, nil
}

func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}

// active reports whether the appointment still needs the patient to show up.
func active(st appointment.Status) bool {
	switch st {
	case appointment.StatusPending, appointment.StatusNeedsManualReview,
		appointment.StatusApproved, appointment.StatusWaiting, appointment.StatusInProgress:
		return true
	}
	return false
}

// sortByDate orders by date then time slot; ISO dates and HH:MM slots sort
// lexically.
func sortByDate(recs []appointment.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].AppointmentDate != recs[j].AppointmentDate {
			return recs[i].AppointmentDate < recs[j].AppointmentDate
		}
		return recs[i].TimeSlot < recs[j].TimeSlot
	})
}

func greeting(now time.Time, u auth.User) string {
	name := u.FullName
	if name == "" {
		name = u.Username
	}
	switch h := now.Hour(); {
	case h < 11:
		return "Chào buổi sáng, " + name
	case h < 18:
		return "Chào buổi chiều, " + name
	default:
		return "Chào buổi tối, " + name
	}
}
