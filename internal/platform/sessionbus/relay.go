package sessionbus

import (
	"context"

	"github.com/google/uuid"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/domain/identity"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/websocket"
)

// ToHub forwards every event to the session's websocket topic so all tabs of
// that session refresh their header. On logout the tabs are disconnected
// after the event is queued.
func ToHub(hub *websocket.Hub) Handler {
	return func(ctx context.Context, ev identity.SessionEvent) {
		id, err := uuid.Parse(ev.SessionID)
		if err != nil {
			return
		}
		topic := websocket.SessionTopic(id)
		hub.Broadcast(topic, websocket.NewEvent(string(ev.Type), topic, ev))
		if ev.Type == identity.EventLogout {
			hub.DisconnectTopic(topic)
		}
	}
}

// OnLogout runs fn with the id of every session that logs out.
func OnLogout(fn func(id uuid.UUID)) Handler {
	return func(_ context.Context, ev identity.SessionEvent) {
		if ev.Type != identity.EventLogout {
			return
		}
		if id, err := uuid.Parse(ev.SessionID); err == nil {
			fn(id)
		}
	}
}
