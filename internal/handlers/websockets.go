package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"roomcompare/internal/dto"
	"roomcompare/internal/logger"
	"roomcompare/internal/service"

	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewWebsocketHandler streams state snapshots of the session to the page and
// applies the select, clear, geometry and compare events it sends back.
// An open page keeps its session alive through the pong replies.
func ViewWebsocketHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(manager, w, r)
		if !ok {
			return
		}
		sessionID := s.ID()

		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		connection.SetReadLimit(4096)
		connection.SetReadDeadline(time.Now().Add(pongWait))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(pongWait))
			manager.Touch(sessionID)
			return nil
		})
		defer connection.Close()

		hub := manager.GetWebsocketService()
		hub.Register(connection, sessionID)
		defer hub.Unregister(connection)

		done := make(chan struct{})
		defer close(done)
		go keepAlive(connection, done)

		if payload, err := service.EncodeSnapshot(s.Snapshot()); err == nil {
			hub.SendTo(connection, payload)
		}

		for {
			_, data, err := connection.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warning("Viewer disconnected: %v", err)
				}
				break
			}
			connection.SetReadDeadline(time.Now().Add(pongWait))

			var msg dto.ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				hub.SendTo(connection, service.EncodeError(err))
				continue
			}
			if err := manager.HandleClientMessage(sessionID, msg); err != nil {
				hub.SendTo(connection, service.EncodeError(err))
			}
		}
	}
}

// keepAlive pings the browser so idle connections survive the read deadline.
// WriteControl may run concurrently with the hub's writes.
func keepAlive(connection *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := connection.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}
