package widget

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jaki95/mixplayer/internal/playback"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

var ErrSendBufferFull = errors.New("widget send buffer full")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The widget page is served from the player's own origin or a dev server.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Command is sent to the page hosting the widget.
type Command struct {
	Command  string   `json:"command"`
	URL      string   `json:"url,omitempty"`
	Position *float64 `json:"position,omitempty"`
	Volume   *float64 `json:"volume,omitempty"`
}

type client struct {
	id   string
	ws   *websocket.Conn
	send chan Command
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// Bridge drives the embedded widget over a WebSocket. Only the most recent
// connection is live; a new one closes its predecessor.
type Bridge struct {
	mu        sync.Mutex
	active    *client
	handler   func(playback.Event)
	onConnect func()
}

func NewBridge() *Bridge {
	return &Bridge{}
}

// SetHandler sets where incoming widget events go.
func (b *Bridge) SetHandler(fn func(playback.Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = fn
}

// OnConnect sets a hook run after each new connection is registered.
func (b *Bridge) OnConnect(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onConnect = fn
}

// Connected reports whether a widget page is attached.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active != nil
}

func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Widget websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan Command, sendBuffer),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	prev := b.active
	b.active = c
	hook := b.onConnect
	b.mu.Unlock()

	if prev != nil {
		slog.Info("Replacing widget connection", "old", prev.id, "new", c.id)
		prev.close()
	}
	slog.Info("Widget connected", "connection", c.id, "remote", r.RemoteAddr)

	go b.writePump(c)
	if hook != nil {
		hook()
	}
	b.readPump(c)
}

func (b *Bridge) readPump(c *client) {
	defer func() {
		b.mu.Lock()
		if b.active == c {
			b.active = nil
		}
		b.mu.Unlock()
		c.close()
		slog.Info("Widget disconnected", "connection", c.id)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var ev playback.Event
		if err := c.ws.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Widget read failed", "connection", c.id, "error", err)
			}
			return
		}
		if !ev.Type.Valid() {
			slog.Debug("Ignoring unknown widget event", "connection", c.id, "event", ev.Type)
			continue
		}

		b.mu.Lock()
		live := b.active == c
		handler := b.handler
		b.mu.Unlock()

		if live && handler != nil {
			handler(ev)
		}
	}
}

func (b *Bridge) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case cmd := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(cmd); err != nil {
				slog.Warn("Widget write failed", "connection", c.id, "command", cmd.Command, "error", err)
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

func (b *Bridge) send(cmd Command) error {
	b.mu.Lock()
	c := b.active
	b.mu.Unlock()

	if c == nil {
		return playback.ErrWidgetNotReady
	}
	select {
	case <-c.done:
		return playback.ErrWidgetNotReady
	case c.send <- cmd:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (b *Bridge) Load(url string) error {
	return b.send(Command{Command: "load", URL: url})
}

func (b *Bridge) Play() error {
	return b.send(Command{Command: "play"})
}

func (b *Bridge) Pause() error {
	return b.send(Command{Command: "pause"})
}

func (b *Bridge) Seek(position float64) error {
	return b.send(Command{Command: "seek", Position: &position})
}

func (b *Bridge) SetVolume(volume float64) error {
	return b.send(Command{Command: "volume", Volume: &volume})
}

// Close drops the active connection.
func (b *Bridge) Close() error {
	b.mu.Lock()
	c := b.active
	b.active = nil
	b.mu.Unlock()

	if c != nil {
		c.close()
	}
	return nil
}
