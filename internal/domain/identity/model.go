package identity

import (
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
)

// NavLink is one entry of the role-specific header menu.
type NavLink struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Navigation returns the menu a role may reach. Each role has its own
// disjoint set of protected views.
func Navigation(role auth.Role) []NavLink {
	switch role {
	case auth.RolePatient:
		return []NavLink{
			{"Trang chủ", "/patient/dashboard"},
			{"Đặt lịch khám", "/patient/book"},
			{"Lịch hẹn của tôi", "/patient/appointments"},
			{"Chỉ số sức khỏe", "/patient/health"},
			{"Tính BMI", "/patient/bmi"},
		}
	case auth.RoleDoctor:
		return []NavLink{
			{"Trang chủ", "/doctor/dashboard"},
			{"Lịch khám", "/doctor/appointments"},
			{"Hồ sơ bệnh nhân", "/doctor/patients"},
		}
	case auth.RoleAdmin:
		return []NavLink{
			{"Tổng quan", "/admin/dashboard"},
			{"Duyệt lịch hẹn", "/admin/appointments"},
			{"Khung giờ bác sĩ", "/admin/slots"},
			{"Quản lý thuốc", "/admin/medicines"},
		}
	}
	return []NavLink{{"Đăng nhập", "/login"}}
}

// Provider is a federated identity provider accepted by social login.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderFirebase Provider = "firebase"
)

func ParseProvider(s string) (Provider, bool) {
	switch p := Provider(s); p {
	case ProviderGoogle, ProviderFacebook, ProviderFirebase:
		return p, true
	}
	return "", false
}

// EventType names a session lifecycle change.
type EventType string

const (
	EventLogin  EventType = "login"
	EventLogout EventType = "logout"
)

// SessionEvent is broadcast so every tab of the same session can refresh its
// header state.
type SessionEvent struct {
	Type      EventType  `json:"type"`
	SessionID string     `json:"sessionId"`
	User      *auth.User `json:"user,omitempty"`
}
