package websocket

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
)

// TopicAppointments carries the admin appointment list refreshes.
const TopicAppointments = "appointments"

// SessionTopic is shared by every tab of one portal session. Login, logout
// and poll results for the session are delivered here.
func SessionTopic(id uuid.UUID) string {
	return "session:" + id.String()
}

func PatientTopic(id int64) string {
	return "patient:" + strconv.FormatInt(id, 10)
}

func DoctorTopic(id int64) string {
	return "doctor:" + strconv.FormatInt(id, 10)
}

// DefaultTopics are subscribed on connect.
func DefaultTopics(sess *auth.Session) []string {
	topics := []string{SessionTopic(sess.ID)}
	switch sess.User.Role {
	case auth.RoleAdmin:
		topics = append(topics, TopicAppointments)
	case auth.RolePatient:
		topics = append(topics, PatientTopic(sess.User.ID))
	case auth.RoleDoctor:
		topics = append(topics, DoctorTopic(sess.User.ID))
	}
	return topics
}

// CanSubscribe reports whether sess may listen on topic. A session may join
// its own topics only; admins may also follow any patient or doctor.
func CanSubscribe(sess *auth.Session, topic string) bool {
	if sess == nil {
		return false
	}
	for _, t := range DefaultTopics(sess) {
		if t == topic {
			return true
		}
	}
	if sess.User.Role == auth.RoleAdmin {
		return strings.HasPrefix(topic, "patient:") || strings.HasPrefix(topic, "doctor:")
	}
	return false
}
