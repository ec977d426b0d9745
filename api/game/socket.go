package gameapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/beka-birhanu/geoduel-api/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are already filtered by the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// socket pushes the room's events to a websocket client as EventFrame
// messages. Anything the client sends is discarded.
func (rc *RoomController) socket(ctx *gin.Context) {
	room := ctx.Param("roomID")
	if _, err := rc.gameSessionManager.State(room, ""); err != nil {
		abortWithError(ctx, err)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		rc.logger.Warning(fmt.Sprintf("room %s: websocket upgrade failed: %s", room, err))
		return
	}
	defer conn.Close()

	events, cancel := rc.notifier.Subscribe(service.RoomTopic(room))
	defer cancel()

	closed := make(chan struct{})
	go readPump(conn, closed)
	writePump(conn, room, events, closed)
}

func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, room string, events <-chan string, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(EventFrame{Room: room, Event: ev}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
