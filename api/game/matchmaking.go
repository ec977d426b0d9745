package gameapi

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beka-birhanu/geoduel-api/service"
	"github.com/beka-birhanu/geoduel-api/service/i"
	"github.com/gin-gonic/gin"
)

const defaultChannelKeepAlive = time.Second

// MatchMakingController manages matchmaking operations.
type MatchMakingController struct {
	matchingService i.Matchmaker
	notifier        i.Notifier
	joinLimiter     gin.HandlerFunc
	keepAlive       time.Duration
}

// NewMatchMakingController initializes a MatchMakingController. joinLimiter
// guards the join route and may be nil.
func NewMatchMakingController(ms i.Matchmaker, n i.Notifier, joinLimiter gin.HandlerFunc) (*MatchMakingController, error) {
	if ms == nil || n == nil {
		return nil, errors.New("matchmaking controller: missing dependency")
	}
	if joinLimiter == nil {
		joinLimiter = func(ctx *gin.Context) { ctx.Next() }
	}
	return &MatchMakingController{
		matchingService: ms,
		notifier:        n,
		joinLimiter:     joinLimiter,
		keepAlive:       defaultChannelKeepAlive,
	}, nil
}

// RegisterPublic registers public routes.
func (mkc *MatchMakingController) RegisterPublic(route *gin.RouterGroup) {
	matchMaking := route.Group("/match")
	{
		matchMaking.POST("", mkc.joinLimiter, mkc.match)
		matchMaking.POST("/:channel/ping", mkc.ping)
		matchMaking.GET("/:channel", mkc.poll)
		matchMaking.GET("/:channel/events", mkc.events)
	}
}

// RegisterProtected registers protected routes.
func (mkc *MatchMakingController) RegisterProtected(route *gin.RouterGroup) {}

// match joins the global pool, or the named room's pool. A completed pair
// answers 200 with the match; a waiting caller gets 202 and its channel.
func (mkc *MatchMakingController) match(ctx *gin.Context) {
	var request JoinRequest
	if err := ctx.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := mkc.matchingService.Join(ctx.Request.Context(), strings.TrimSpace(request.Room))
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	if !result.Matched {
		ctx.JSON(http.StatusAccepted, result)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (mkc *MatchMakingController) ping(ctx *gin.Context) {
	if err := mkc.matchingService.Ping(ctx.Param("channel")); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (mkc *MatchMakingController) poll(ctx *gin.Context) {
	result, err := mkc.matchingService.Poll(ctx.Param("channel"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// events waits for the match of a channel over SSE, pinging the channel
// while the client stays connected. The stream ends with the matched event.
func (mkc *MatchMakingController) events(ctx *gin.Context) {
	channel := ctx.Param("channel")

	events, cancel := mkc.notifier.Subscribe(service.ChannelTopic(channel))
	defer cancel()

	result, err := mkc.matchingService.Poll(channel)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	if result.Matched {
		relay := make(chan string, 1)
		relay <- service.MatchedEvent(result.Room, result.Team)
		close(relay)
		streamEvents(ctx, relay, mkc.keepAlive, nil, nil)
		return
	}

	isMatched := func(ev string) bool { return strings.HasPrefix(ev, service.MatchedPrefix) }
	keepWaiting := func() error { return mkc.matchingService.Ping(channel) }
	streamEvents(ctx, events, mkc.keepAlive, isMatched, keepWaiting)
}
