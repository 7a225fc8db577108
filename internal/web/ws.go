package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{ //nolint:gochecknoglobals
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// readPump discards client messages and reports when the peer goes away.
func readPump(conn *websocket.Conn) <-chan struct{} {
	done := make(chan struct{})

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		defer close(done)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return done
}

func writeMessage(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

	return conn.WriteJSON(v) //nolint:wrapcheck
}

// websocketHandler sends the current snapshot, then every new packet.
func websocketHandler(emitter eventEmitter, s stats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.DebugContext(r.Context(), "websocket upgrade", "error", err)

			return
		}

		defer conn.Close()

		ch := emitter.Subscribe()
		defer emitter.Unsubscribe(ch)

		closed := readPump(conn)

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		if err := writeMessage(conn, s.EventResponse()); err != nil {
			return
		}

		for {
			select {
			case p, ok := <-ch:
				if !ok {
					return
				}

				if err := writeMessage(conn, p); err != nil {
					slog.DebugContext(r.Context(), "websocket write", "error", err)

					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-closed:
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}
