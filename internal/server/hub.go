package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"clockin/internal/domain"
	"clockin/internal/errors"
)

const (
	subscriberBuffer = 16
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
)

// Hub fans newly created entries out to the websocket subscribers of their owner.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	send chan *domain.TimeEntry
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

func (h *Hub) register(owner string) (*subscriber, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}

	sub := &subscriber{send: make(chan *domain.TimeEntry, subscriberBuffer)}
	if h.subs[owner] == nil {
		h.subs[owner] = make(map[*subscriber]struct{})
	}
	h.subs[owner][sub] = struct{}{}
	return sub, true
}

func (h *Hub) unregister(owner string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[owner]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, owner)
		}
	}
	sub.close()
}

// Subscribers counts the open feeds for owner.
func (h *Hub) Subscribers(owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[owner])
}

// Broadcast delivers entry to its owner's subscribers. A subscriber whose
// buffer is full misses the entry.
func (h *Hub) Broadcast(entry *domain.TimeEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[entry.Owner] {
		select {
		case sub.send <- entry:
		default:
		}
	}
}

// CloseAll ends every feed and refuses new ones.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for owner, set := range h.subs {
		for sub := range set {
			sub.close()
		}
		delete(h.subs, owner)
	}
}

func (s *Server) upgrader() *websocket.Upgrader {
	allowed := newOriginSet(s.allowedOrigins)
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// non-browser clients send no Origin
			return origin == "" || allowed.permits(origin)
		},
	}
}

func (s *Server) streamTimeEntries(w http.ResponseWriter, r *http.Request) {
	owner := strings.TrimSpace(r.URL.Query().Get("email"))
	if err := s.validator.ValidateOwner(owner); err != nil {
		writeError(w, http.StatusBadRequest, errors.GetUserMessage(err))
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	sub, ok := s.hub.register(owner)
	if !ok {
		conn.Close()
		return
	}
	defer s.hub.unregister(owner, sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		readPump(conn)
	}()
	writePump(conn, sub, done)
}

// readPump only drains control frames; a read error closes the connection.
func readPump(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *subscriber, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case entry, ok := <-sub.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(entry); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
