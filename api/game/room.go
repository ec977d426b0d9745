package gameapi

import (
	"net/http"
	"time"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
	"github.com/beka-birhanu/geoduel-api/game"
	"github.com/beka-birhanu/geoduel-api/service"
	"github.com/beka-birhanu/geoduel-api/service/i"
	"github.com/gin-gonic/gin"
)

// RoomController serves the per-room game operations and event streams.
type RoomController struct {
	gameSessionManager i.GameSessionManager
	notifier           i.Notifier
	logger             i.Logger
	keepAlive          time.Duration
}

// NewRoomController initializes a RoomController.
func NewRoomController(gsm i.GameSessionManager, n i.Notifier, logger i.Logger) *RoomController {
	return &RoomController{
		gameSessionManager: gsm,
		notifier:           n,
		logger:             logger,
		keepAlive:          defaultKeepAlive,
	}
}

// RegisterPublic registers public routes.
func (rc *RoomController) RegisterPublic(route *gin.RouterGroup) {
	rooms := route.Group("/rooms/:roomID")
	{
		rooms.GET("/state", rc.state)
		rooms.POST("/init", rc.initRoom)
		rooms.POST("/guess", rc.placeGuess)
		rooms.POST("/submit", rc.teamAction(rc.gameSessionManager.SubmitGuess))
		rooms.POST("/advance", rc.teamAction(rc.gameSessionManager.AdvanceRound))
		rooms.POST("/next", rc.roomAction(rc.gameSessionManager.NextRound))
		rooms.POST("/prev", rc.roomAction(rc.gameSessionManager.PrevRound))
		rooms.GET("/events", rc.events)
		rooms.GET("/ws", rc.socket)
	}
}

// RegisterProtected registers debug-only routes.
func (rc *RoomController) RegisterProtected(route *gin.RouterGroup) {
	route.POST("/rooms/:roomID/reveal", rc.roomAction(rc.gameSessionManager.RevealNow))
}

// state returns the view of the room for the team in the query, or the
// spectator view when none is given.
func (rc *RoomController) state(ctx *gin.Context) {
	var viewer dmn.Team
	if raw := ctx.Query("team"); raw != "" {
		team, err := dmn.ParseTeam(raw)
		if err != nil {
			abortWithError(ctx, err)
			return
		}
		viewer = team
	}

	st, err := rc.gameSessionManager.State(ctx.Param("roomID"), viewer)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, st)
}

func (rc *RoomController) initRoom(ctx *gin.Context) {
	st, err := rc.gameSessionManager.InitRoom(ctx.Param("roomID"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, st)
}

func (rc *RoomController) placeGuess(ctx *gin.Context) {
	var request GuessRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	team, err := dmn.ParseTeam(request.Team)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	c := dmn.Coord{Lat: *request.Lat, Lon: *request.Lon}
	st, err := rc.gameSessionManager.PlaceGuess(ctx.Param("roomID"), team, c)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, st)
}

// teamAction adapts an operation taking the acting team from the body.
func (rc *RoomController) teamAction(op func(room string, team dmn.Team) (game.State, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var request TeamRequest
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		team, err := dmn.ParseTeam(request.Team)
		if err != nil {
			abortWithError(ctx, err)
			return
		}

		st, err := op(ctx.Param("roomID"), team)
		if err != nil {
			abortWithError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, st)
	}
}

func (rc *RoomController) roomAction(op func(room string) (game.State, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		st, err := op(ctx.Param("roomID"))
		if err != nil {
			abortWithError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, st)
	}
}

// events streams the room's reveal and next_round tags as SSE.
func (rc *RoomController) events(ctx *gin.Context) {
	room := ctx.Param("roomID")
	if _, err := rc.gameSessionManager.State(room, ""); err != nil {
		abortWithError(ctx, err)
		return
	}

	events, cancel := rc.notifier.Subscribe(service.RoomTopic(room))
	defer cancel()
	streamEvents(ctx, events, rc.keepAlive, nil, nil)
}
