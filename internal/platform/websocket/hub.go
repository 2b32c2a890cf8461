// Package websocket pushes session and poll events to browser tabs. Clients
// subscribe to topics and receive the events broadcast to those topics.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
)

// Event is one message delivered to subscribed tabs.
type Event struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals data into an event. A value that cannot be encoded is
// dropped and the event is sent without payload.
func NewEvent(typ, topic string, data any) Event {
	ev := Event{Type: typ, Topic: topic, Timestamp: time.Now().UTC()}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			ev.Data = raw
		}
	}
	return ev
}

// ClientMessage is an inbound subscribe or unsubscribe request.
type ClientMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

// SessionListener is told when the first tab of a session connects and when
// the last one goes away. Callbacks must not call Register or Unregister.
type SessionListener interface {
	SessionConnected(sess *auth.Session)
	SessionDisconnected(id uuid.UUID)
}

// Client is a single WebSocket connection owned by a portal session.
type Client struct {
	ID      string
	Session *auth.Session
	Topics  []string
	Send    chan []byte
	hub     *Hub
}

// sessionChange is a first-tab or last-tab transition waiting for delivery.
type sessionChange struct {
	sess      *auth.Session
	connected bool
}

// Hub tracks clients and their topic subscriptions. All operations are
// guarded by mu.
//
// Session transitions are queued under mu in the order the tab counts
// change and delivered by whichever goroutine holds listenMu, so listeners
// never see a session's disconnect after its following connect.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*Client]struct{} // topic -> clients
	all      map[*Client]struct{}
	sessions map[uuid.UUID]int // open tabs per session
	pending  []sessionChange

	listenMu  sync.Mutex
	listeners []SessionListener
	logger    zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:  make(map[string]map[*Client]struct{}),
		all:      make(map[*Client]struct{}),
		sessions: make(map[uuid.UUID]int),
		logger:   logger.With().Str("component", "websocket").Logger(),
	}
}

// OnSession adds a listener. Call before serving connections.
func (h *Hub) OnSession(l SessionListener) {
	h.mu.Lock()
	h.listeners = append(h.listeners, l)
	h.mu.Unlock()
}

// Register adds a client and subscribes it to its initial topics.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.all[client] = struct{}{}
	h.subscribe(client, client.Topics)

	if client.Session != nil {
		h.sessions[client.Session.ID]++
		if h.sessions[client.Session.ID] == 1 {
			h.pending = append(h.pending, sessionChange{sess: client.Session, connected: true})
		}
	}
	h.mu.Unlock()

	h.deliver()
}

// Unregister removes a client from every topic and closes its Send channel.
// Unregistering twice is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.all[client]; !ok {
		h.mu.Unlock()
		return
	}
	h.unsubscribe(client, client.Topics)
	delete(h.all, client)
	close(client.Send)

	if client.Session != nil {
		id := client.Session.ID
		h.sessions[id]--
		if h.sessions[id] <= 0 {
			delete(h.sessions, id)
			h.pending = append(h.pending, sessionChange{sess: client.Session})
		}
	}
	h.mu.Unlock()

	h.deliver()
}

// deliver runs queued session transitions in order. When it returns, every
// transition queued before the call has been delivered.
func (h *Hub) deliver() {
	h.listenMu.Lock()
	defer h.listenMu.Unlock()
	for {
		h.mu.Lock()
		if len(h.pending) == 0 {
			h.mu.Unlock()
			return
		}
		ch := h.pending[0]
		h.pending = h.pending[1:]
		listeners := h.listeners
		h.mu.Unlock()

		for _, l := range listeners {
			if ch.connected {
				l.SessionConnected(ch.sess)
			} else {
				l.SessionDisconnected(ch.sess.ID)
			}
		}
	}
}

// Subscribe adds topics to a registered client. Topics the client's session
// may not read are returned and left out.
func (h *Hub) Subscribe(client *Client, topics []string) (denied []string) {
	allowed := make([]string, 0, len(topics))
	for _, t := range topics {
		if client.Session != nil && !CanSubscribe(client.Session, t) {
			denied = append(denied, t)
			continue
		}
		allowed = append(allowed, t)
	}

	h.mu.Lock()
	h.subscribe(client, allowed)
	h.mu.Unlock()
	return denied
}

func (h *Hub) Unsubscribe(client *Client, topics []string) {
	h.mu.Lock()
	h.unsubscribe(client, topics)
	h.mu.Unlock()
}

// subscribe must be called with mu held.
func (h *Hub) subscribe(client *Client, topics []string) {
	have := make(map[string]struct{}, len(client.Topics))
	for _, t := range client.Topics {
		have[t] = struct{}{}
	}
	for _, topic := range topics {
		if h.clients[topic] == nil {
			h.clients[topic] = make(map[*Client]struct{})
		}
		h.clients[topic][client] = struct{}{}
		if _, ok := have[topic]; !ok {
			client.Topics = append(client.Topics, topic)
			have[topic] = struct{}{}
		}
	}
}

// unsubscribe must be called with mu held.
func (h *Hub) unsubscribe(client *Client, topics []string) {
	removeSet := make(map[string]struct{}, len(topics))
	for _, topic := range topics {
		removeSet[topic] = struct{}{}
		if subscribers, ok := h.clients[topic]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.clients, topic)
			}
		}
	}

	remaining := make([]string, 0, len(client.Topics))
	for _, t := range client.Topics {
		if _, rm := removeSet[t]; !rm {
			remaining = append(remaining, t)
		}
	}
	client.Topics = remaining
}

// ProcessMessage dispatches an inbound message and returns the topics that
// were refused.
func (h *Hub) ProcessMessage(client *Client, msg ClientMessage) []string {
	switch msg.Action {
	case "subscribe":
		return h.Subscribe(client, msg.Topics)
	case "unsubscribe":
		h.Unsubscribe(client, msg.Topics)
	}
	return nil
}

// Broadcast sends an event to every client on topic. Sends never block; a
// client whose buffer is full misses the event.
func (h *Hub) Broadcast(topic string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("topic", topic).Msg("marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[topic] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn().Str("client_id", client.ID).Str("topic", topic).Msg("client buffer full, event dropped")
		}
	}
}

func (h *Hub) BroadcastAll(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.all {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// SendTo delivers an event to one client if it is still registered.
func (h *Hub) SendTo(client *Client, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.all[client]; !ok {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

// Publish broadcasts event to its own topic.
func (h *Hub) Publish(_ context.Context, event Event) error {
	h.Broadcast(event.Topic, event)
	return nil
}

// DisconnectTopic unregisters every client on topic, which ends their
// connections. Used when a session logs out.
func (h *Hub) DisconnectTopic(topic string) int {
	h.mu.RLock()
	victims := make([]*Client, 0, len(h.clients[topic]))
	for c := range h.clients[topic] {
		victims = append(victims, c)
	}
	h.mu.RUnlock()

	for _, c := range victims {
		h.Unregister(c)
	}
	return len(victims)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// SessionCount returns the number of sessions with at least one open tab.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
