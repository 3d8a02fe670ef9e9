package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rohan4324/Furever-App-sub000/internal/signaling"
)

const socketBufferSize = 64 * 1024

// ServeWs returns an http.HandlerFunc that upgrades consultation clients to
// websockets and hands them to the hub.
func ServeWs(hub *signaling.Hub, allowedOrigins []string, logger *zap.Logger) http.HandlerFunc {
	checkOrigin := OriginChecker(allowedOrigins)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  socketBufferSize,
		WriteBufferSize: socketBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return checkOrigin(r.Header.Get("Origin"))
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		// The id is issued server side, never taken from the client.
		client := signaling.NewClient(hub, conn, uuid.NewString(), logger)

		client.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}

// HealthHandler reports liveness plus the current room count.
func HealthHandler(hub *signaling.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok rooms=%d\n", hub.RoomCount())
	}
}
