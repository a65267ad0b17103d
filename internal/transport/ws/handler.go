package ws

import (
	"net/http"
	"net/url"

	"github.com/vedran77/campusconnect/internal/transport/http/middleware"
	"github.com/vedran77/campusconnect/pkg/logger"
	"nhooyr.io/websocket"
)

// ServeWS returns an HTTP handler that upgrades to WebSocket.
// Auth is done via ?token=xxx query param (WebSocket can't send headers).
func ServeWS(hub *Hub, threads ThreadReader, jwtSecret, allowedOrigin string, log logger.Logger) http.HandlerFunc {
	opts := &websocket.AcceptOptions{}
	if allowedOrigin == "*" {
		opts.InsecureSkipVerify = true
	} else if u, err := url.Parse(allowedOrigin); err == nil && u.Host != "" {
		opts.OriginPatterns = []string{u.Host}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		accountID, err := middleware.ParseToken(tokenStr, jwtSecret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, opts)
		if err != nil {
			log.Warn(r.Context(), "websocket accept failed", logger.Err(err))
			return
		}

		client := NewClient(hub, conn, accountID, threads, log)
		if !hub.Register(client) {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		go client.WritePump(r.Context())
		client.ReadPump(r.Context())
	}
}
