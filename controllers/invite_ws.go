package controller

import (
	"sync"

	"teamnest/models"

	"github.com/gofiber/websocket/v2"
)

// InviteEvent is pushed to an invitee's open connections when
// something happens to their pending invites.
type InviteEvent struct {
	Type   string              `json:"type"`
	Invite *models.InviteToken `json:"invite,omitempty"`
}

// InviteHub fans invite events out to websocket subscribers, keyed by
// the invitee email each connection authenticated as.
type InviteHub struct {
	mu          sync.Mutex
	subscribers map[string]map[*websocket.Conn]struct{}
}

func NewInviteHub() *InviteHub {
	return &InviteHub{
		subscribers: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (h *InviteHub) subscribe(email string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[email] == nil {
		h.subscribers[email] = make(map[*websocket.Conn]struct{})
	}
	h.subscribers[email][conn] = struct{}{}
}

func (h *InviteHub) unsubscribe(email string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.subscribers[email]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.subscribers, email)
		}
	}
}

// Publish sends the event to every connection subscribed for the
// email. Connections that fail to write are dropped.
func (h *InviteHub) Publish(email string, event InviteEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.subscribers[email] {
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(h.subscribers[email], conn)
		}
	}
}

// HandleInviteEvents keeps a websocket open for the session user and
// streams invite events until the client goes away. The route runs
// behind the session middleware, so the user is already on Locals.
func (ic *InviteController) HandleInviteEvents(c *websocket.Conn) {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		c.Close()
		return
	}

	ic.Hub.subscribe(user.Email, c)
	defer func() {
		ic.Hub.unsubscribe(user.Email, c)
		c.Close()
	}()

	// Drain client frames; the stream is server-push only.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
