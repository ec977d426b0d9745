package gameapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	defaultKeepAlive = 15 * time.Second
	sseEventName     = "message"
)

// streamEvents relays events as server-sent events until the client
// disconnects or stop reports true for a relayed event. tick, when set, runs
// on every keep-alive and ends the stream if it fails.
func streamEvents(ctx *gin.Context, events <-chan string, keepAlive time.Duration, stop func(string) bool, tick func() error) {
	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")
	ctx.Status(http.StatusOK)
	ctx.Writer.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Request.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			ctx.SSEvent(sseEventName, ev)
			ctx.Writer.Flush()
			if stop != nil && stop(ev) {
				return
			}
		case <-ticker.C:
			if tick != nil {
				if err := tick(); err != nil {
					ctx.SSEvent("error", err.Error())
					ctx.Writer.Flush()
					return
				}
			}
			ctx.SSEvent("ping", "")
			ctx.Writer.Flush()
		}
	}
}
