// Package ingest accepts pose keypoints streamed from browsers over WebSocket
// and answers each frame with the angles computed from it.
package ingest

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/teslashibe/go-urdfpose/internal/log"
	"github.com/teslashibe/go-urdfpose/pkg/protocol"
)

// PoseHandler turns one pose frame into a reply. A nil reply sends nothing.
type PoseHandler func(sourceID string, data *protocol.PoseData) (*protocol.Message, error)

// Session is one connected pose source.
type Session struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time

	mu       sync.Mutex
	lastSeen time.Time
	frames   uint64
}

// Send writes a message to the source.
func (s *Session) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) touch(frame bool) {
	s.mu.Lock()
	s.lastSeen = time.Now()
	if frame {
		s.frames++
	}
	s.mu.Unlock()
}

// Hub tracks pose sources.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	onPose   PoseHandler

	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	posesReceived    atomic.Uint64
	rejected         atomic.Uint64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*Session)}
}

// OnPose sets the callback for incoming pose frames.
func (h *Hub) OnPose(fn PoseHandler) {
	h.mu.Lock()
	h.onPose = fn
	h.mu.Unlock()
}

// RegisterRoutes mounts the ingest endpoint at /ws/pose and /ws/pose/:id.
func (h *Hub) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/pose", upgradeOnly, websocket.New(h.handle))
	r.Get("/ws/pose/:id", upgradeOnly, websocket.New(h.handle))
}

func upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *Hub) handle(c *websocket.Conn) {
	id := c.Params("id")
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now()
	s := &Session{ID: id, Conn: c, Connected: now, lastSeen: now}

	h.mu.Lock()
	if old, ok := h.sessions[id]; ok {
		// a reconnect under the same id replaces the stale session
		old.Conn.Close()
	}
	h.sessions[id] = s
	count := len(h.sessions)
	h.mu.Unlock()

	log.Info("pose source connected", "id", id, "total", count)

	defer func() {
		h.mu.Lock()
		if h.sessions[id] == s {
			delete(h.sessions, id)
		}
		count := len(h.sessions)
		h.mu.Unlock()
		log.Info("pose source disconnected", "id", id, "total", count)
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			log.Debug("pose source read ended", "id", id, "error", err)
			return
		}
		h.messagesReceived.Add(1)

		if reply := h.handleMessage(s, data); reply != nil {
			if err := s.Send(reply); err != nil {
				log.Warn("pose reply failed", "id", id, "error", err)
				return
			}
			h.messagesSent.Add(1)
		}
	}
}

func (h *Hub) handleMessage(s *Session, data []byte) *protocol.Message {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		h.rejected.Add(1)
		return errorReply(err)
	}

	switch msg.Type {
	case protocol.TypePose:
		s.touch(true)
		h.posesReceived.Add(1)

		h.mu.RLock()
		fn := h.onPose
		h.mu.RUnlock()
		if fn == nil {
			return nil
		}

		pd, err := msg.GetPoseData()
		if err != nil {
			h.rejected.Add(1)
			return errorReply(err)
		}
		reply, err := fn(s.ID, pd)
		if err != nil {
			h.rejected.Add(1)
			return errorReply(err)
		}
		return reply

	case protocol.TypePing:
		s.touch(false)
		ping, err := msg.GetPingData()
		if err != nil {
			return errorReply(err)
		}
		pong, err := protocol.NewPongMessage(*ping)
		if err != nil {
			return nil
		}
		return pong

	default:
		s.touch(false)
		log.Debug("ignoring message", "id", s.ID, "type", msg.Type)
		return nil
	}
}

func errorReply(err error) *protocol.Message {
	msg, merr := protocol.NewErrorMessage(err)
	if merr != nil {
		return nil
	}
	return msg
}

// Session returns a connected source by ID, or nil.
func (h *Hub) Session(id string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[id]
}

// Count returns the number of connected sources.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Broadcast sends msg to every connected source.
func (h *Hub) Broadcast(msg *protocol.Message) {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		if err := s.Send(msg); err != nil {
			log.Debug("broadcast to pose source failed", "id", s.ID, "error", err)
			continue
		}
		h.messagesSent.Add(1)
	}
}

// Stats contains ingest counters.
type Stats struct {
	Sources          int    `json:"sources"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	PosesReceived    uint64 `json:"poses_received"`
	Rejected         uint64 `json:"rejected"`
}

// Stats returns the hub's counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Sources:          h.Count(),
		MessagesReceived: h.messagesReceived.Load(),
		MessagesSent:     h.messagesSent.Load(),
		PosesReceived:    h.posesReceived.Load(),
		Rejected:         h.rejected.Load(),
	}
}

// SourceInfo describes a connected source.
type SourceInfo struct {
	ID        string    `json:"id"`
	Connected time.Time `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
	Poses     uint64    `json:"poses"`
}

// Sources lists connected sources.
func (h *Hub) Sources() []SourceInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	infos := make([]SourceInfo, 0, len(h.sessions))
	for _, s := range h.sessions {
		s.mu.Lock()
		infos = append(infos, SourceInfo{
			ID:        s.ID,
			Connected: s.Connected,
			LastSeen:  s.lastSeen,
			Poses:     s.frames,
		})
		s.mu.Unlock()
	}
	return infos
}

// RegisterAPIRoutes mounts /sources and /sources/stats on api.
func (h *Hub) RegisterAPIRoutes(api fiber.Router) {
	sources := api.Group("/sources")

	sources.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"sources": h.Sources(),
			"count":   h.Count(),
		})
	})

	sources.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.Stats())
	})
}
