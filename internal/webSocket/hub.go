package webSocket

import (
	"net/http"
	"sync"
	"time"

	"swapboard/internal/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	readLimit       = 512
	DefaultPongWait = 60 * time.Second
	writeWait       = 5 * time.Second
	deadBacklog     = 1024
)

// Client is one subscribed browser. Writes to Conn go through Send.
type Client struct {
	Conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *Client) Send(msg []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(websocket.TextMessage, msg)
}

func (c *Client) Ping() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Hub fans rendered widget fragments out to subscribers, keyed by topic
// (the widget variant).
type Hub struct {
	Upgrader websocket.Upgrader
	// PongWait is how long a silent client is kept. Pings go out at 9/10 of it.
	PongWait time.Duration

	Mu     sync.Mutex
	Subs   map[string]map[*Client]struct{}
	DeadCh chan *Client

	log *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		PongWait: DefaultPongWait,
		Subs:     make(map[string]map[*Client]struct{}),
		DeadCh:   make(chan *Client, deadBacklog),
		log:      logger,
	}
}

func (h *Hub) Subscribe(topic string, c *Client) {
	h.Mu.Lock()
	set := h.Subs[topic]
	if set == nil {
		set = make(map[*Client]struct{})
		h.Subs[topic] = set
	}
	set[c] = struct{}{}
	h.Mu.Unlock()
	metrics.WSSubscribers.Inc()
}

// Count is the number of subscribers on topic.
func (h *Hub) Count(topic string) int {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	return len(h.Subs[topic])
}

// Broadcast sends msg to every subscriber of topic. Failed clients are handed
// to the reaper.
func (h *Hub) Broadcast(topic string, msg []byte) {
	h.Mu.Lock()
	clients := make([]*Client, 0, len(h.Subs[topic]))
	for c := range h.Subs[topic] {
		clients = append(clients, c)
	}
	h.Mu.Unlock()
	if len(clients) == 0 {
		return
	}

	metrics.WSBroadcasts.WithLabelValues(topic).Inc()
	for _, c := range clients {
		if err := c.Send(msg); err != nil {
			h.log.Debug("broadcast write failed", zap.String("topic", topic), zap.Error(err))
			h.markDead(c)
		}
	}
}

func (h *Hub) markDead(c *Client) {
	select {
	case h.DeadCh <- c:
	default:
		h.log.Warn("dead client backlog full")
	}
}

// ReapDead removes and closes dead clients until DeadCh is closed.
func (h *Hub) ReapDead() {
	for c := range h.DeadCh {
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	removed := false
	h.Mu.Lock()
	for _, set := range h.Subs {
		if _, ok := set[c]; ok {
			delete(set, c)
			removed = true
		}
	}
	h.Mu.Unlock()
	if removed {
		metrics.WSSubscribers.Dec()
	}
	_ = c.Conn.Close()
}

// ServeWS upgrades the request, sends the current fragment from snapshot and
// keeps the client subscribed to topic until it goes away.
func (h *Hub) ServeWS(topic string, snapshot func() ([]byte, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := &Client{Conn: conn}
		h.Subscribe(topic, c)

		// initial snapshot
		if msg, err := snapshot(); err != nil {
			h.log.Error("initial snapshot failed", zap.String("topic", topic), zap.Error(err))
		} else if err := c.Send(msg); err != nil {
			h.markDead(c)
			return
		}

		pongWait := h.PongWait
		if pongWait <= 0 {
			pongWait = DefaultPongWait
		}
		done := make(chan struct{})

		// reader to detect close
		go func() {
			defer h.markDead(c)
			defer close(done)
			conn.SetReadLimit(readLimit)
			if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
				h.log.Error("failed to set read deadline", zap.Error(err))
				return
			}
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(pongWait))
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		// keepalive
		go func() {
			t := time.NewTicker(pongWait * 9 / 10)
			defer t.Stop()
			for {
				select {
				case <-done:
					return
				case <-t.C:
					if err := c.Ping(); err != nil {
						h.log.Debug("ping failed", zap.String("topic", topic), zap.Error(err))
						return
					}
				}
			}
		}()
	})
}
