package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of portal roles issued by the clinic backend.
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole accepts the backend spelling in any case. The backend sometimes
// prefixes roles with "ROLE_".
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "ROLE_"))
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

// Label is the Vietnamese display name used in the navigation header.
func (r Role) Label() string {
	switch r {
	case RolePatient:
		return "Bệnh nhân"
	case RoleDoctor:
		return "Bác sĩ"
	case RoleAdmin:
		return "Quản trị viên"
	}
	return string(r)
}
