package controllers

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"food_routing_admin/internal/console"
	"food_routing_admin/internal/middleware"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// upgrader configures the WebSocket connection. Origins follow the CORS list.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || middleware.OriginAllowed(origin)
	},
}

type viewClient struct {
	conn   *websocket.Conn
	frames chan console.Frame
}

// offer queues f, replacing an undelivered older frame.
func (vc *viewClient) offer(f console.Frame) {
	offerLatest(vc.frames, f)
}

// offerLatest sends f without blocking. When ch is full its oldest frame is
// dropped; every frame carries the whole view, so only the newest matters.
// It reports whether a queued frame was dropped.
func offerLatest(ch chan console.Frame, f console.Frame) (dropped bool) {
	select {
	case ch <- f:
		return false
	default:
	}
	select {
	case <-ch:
		dropped = true
	default:
	}
	select {
	case ch <- f:
	default:
	}
	return dropped
}

// RenderHub is a console renderer that fans frames out to WebSocket clients.
type RenderHub struct {
	mu        sync.RWMutex
	clients   map[*viewClient]struct{}
	broadcast chan console.Frame
	stopChan  chan struct{}
}

// NewRenderHub creates a hub; Start runs its fan-out loop.
func NewRenderHub() *RenderHub {
	return &RenderHub{
		clients:   make(map[*viewClient]struct{}),
		broadcast: make(chan console.Frame, 64),
		stopChan:  make(chan struct{}),
	}
}

func (h *RenderHub) Start() {
	go h.run()
}

// Stop ends the fan-out loop and every open stream.
func (h *RenderHub) Stop() {
	select {
	case <-h.stopChan:
	default:
		close(h.stopChan)
	}
}

// Render implements console.Renderer. A full queue loses its oldest frame.
func (h *RenderHub) Render(f console.Frame) {
	if offerLatest(h.broadcast, f) {
		logrus.Debug("render hub broadcast channel full, dropped oldest frame")
	}
}

func (h *RenderHub) run() {
	for {
		select {
		case <-h.stopChan:
			return
		case f := <-h.broadcast:
			h.mu.RLock()
			for vc := range h.clients {
				vc.offer(f)
			}
			h.mu.RUnlock()
		}
	}
}

// attach registers vc and then queues the current frame, so no change
// published in between is missed.
func (h *RenderHub) attach(vc *viewClient, current func() console.Frame) {
	h.register(vc)
	vc.offer(current())
}

func (h *RenderHub) register(vc *viewClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[vc] = struct{}{}
	logrus.WithFields(logrus.Fields{
		"conn_ptr": fmt.Sprintf("%p", vc.conn),
		"clients":  len(h.clients),
	}).Info("View client registered with RenderHub.")
}

func (h *RenderHub) unregister(vc *viewClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, vc)
	logrus.WithFields(logrus.Fields{
		"conn_ptr": fmt.Sprintf("%p", vc.conn),
		"clients":  len(h.clients),
	}).Info("View client unregistered from RenderHub.")
}

// Clients counts open streams.
func (h *RenderHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleViewWebSocket streams a frame on connect and after every change.
// Messages from the client are ignored; intents go through the REST routes.
func HandleViewWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}
	defer conn.Close()

	vc := &viewClient{conn: conn, frames: make(chan console.Frame, 1)}
	hub.attach(vc, app.Render)
	defer hub.unregister(vc)

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case <-hub.stopChan:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case f := <-vc.frames:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(f); err != nil {
				logrus.WithError(err).WithField("conn_ptr", fmt.Sprintf("%p", conn)).Warn("Failed to send frame to view client.")
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readUntilClosed(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.Debug("View WebSocket closed by client.")
			} else {
				logrus.WithError(err).Debug("View WebSocket read ended.")
			}
			return
		}
		logrus.Debug("View client sent unexpected message. Ignoring.")
	}
}
