package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/beka-birhanu/geoduel-api/api"
	gameapi "github.com/beka-birhanu/geoduel-api/api/game"
	api_i "github.com/beka-birhanu/geoduel-api/api/i"
	"github.com/beka-birhanu/geoduel-api/config"
	"github.com/beka-birhanu/geoduel-api/game"
	"github.com/beka-birhanu/geoduel-api/infrastruture/catalogue"
	logger "github.com/beka-birhanu/geoduel-api/infrastruture/log"
	"github.com/beka-birhanu/geoduel-api/infrastruture/sortedstorage"
	"github.com/beka-birhanu/geoduel-api/service"
	"github.com/beka-birhanu/geoduel-api/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Global variables for dependencies
var (
	debugMode             bool
	questionCatalogue     *catalogue.Catalogue
	rules                 game.Rules
	redisClient           *redis.Client
	sortedQueue           i.SortedQueue
	notifier              *service.Notifier
	roomRegistry          *service.RoomRegistry
	matchmaker            *service.Matchmaker
	gameSessionManager    i.GameSessionManager
	janitor               *service.Janitor
	roomController        api_i.Controller
	matchmakingController api_i.Controller
	router                *api.Router
	appLogger             i.Logger
)

func newLogger(prefix, color string) i.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	return l
}

func initCatalogue() {
	var err error
	questionCatalogue, err = catalogue.Load(catalogue.Options{
		LocationsPath: config.Envs.CatalogueLocations,
		QuestionsPath: config.Envs.CatalogueQuestions,
		ImageDir:      config.Envs.ImageDir,
		Logger:        newLogger("CATALOGUE", config.ColorYellow),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Loading catalogue: %v", err))
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("Catalogue loaded with %d questions", questionCatalogue.Len()))
}

func initRules() {
	rules = game.Rules{
		MaxRounds:     config.Envs.MaxRounds,
		MaxHealth:     config.Envs.MaxHealth,
		DistanceScale: config.Envs.DistanceScale,
		GuessTimeout:  config.Envs.GuessTimeout,
		ReadyTimeout:  config.Envs.ReadyTimeout,
		DrawEpsilon:   config.Envs.DrawEpsilon,
		Categories:    config.Envs.RoundCategories,
		Multipliers:   game.DefaultMultiplierSchedule(config.Envs.MaxRounds),
		Debug:         debugMode,
	}
	if len(config.Envs.DamageMultipliers) > 0 {
		rules.Multipliers = game.MultiplierSchedule{
			Steps: config.Envs.DamageMultipliers,
			Tail:  config.Envs.DamageMultiplierTail,
		}
	}
	if err := rules.Validate(); err != nil {
		appLogger.Error(fmt.Sprintf("Invalid game rules: %v", err))
		os.Exit(1)
	}
	if err := game.ValidateStrategies(rules, questionCatalogue); err != nil {
		appLogger.Error(fmt.Sprintf("Question catalogue cannot fill a match: %v", err))
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("Game rules: %d rounds, %.0f hp, debug=%v", rules.MaxRounds, rules.MaxHealth, rules.Debug))
}

func initRoomRegistry() {
	strategies := game.DefaultStrategies(rules, questionCatalogue)
	roomRegistry = service.NewRoomRegistry(&service.RegistryConfig{
		Factory: func(id string) (*game.Room, error) {
			return game.NewRoom(id, game.RoomConfig{
				Rules:      rules,
				Catalogue:  questionCatalogue,
				Strategies: strategies,
			})
		},
		Logger: newLogger("ROOMS", config.ColorBlue),
	})
	appLogger.Info("Room registry initialized")
}

func initNotifier() {
	notifier = service.NewNotifier(newLogger("NOTIFIER", config.ColorMagenta), 0)
	appLogger.Info("Notifier initialized")
}

func initSortedQueue(ctx context.Context) {
	if config.Envs.RedisAddr == "" {
		sortedQueue = sortedstorage.NewMemorySortedQueue()
		appLogger.Info("Matchmaking pools kept in memory")
		return
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
		DB:       config.Envs.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}

	var err error
	sortedQueue, err = sortedstorage.NewRedisSortedQueue(redisClient)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating redis sorted queue: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Matchmaking pools kept in Redis")
}

func initMatchmaker() {
	var err error
	matchmaker, err = service.NewMatchmaker(sortedQueue, roomRegistry, notifier, newLogger("MATCH-MAKER", config.ColorMagenta), &service.Options{
		WaiterTimeout: config.Envs.WaiterTimeout,
		ResultTTL:     config.Envs.MatchResultTTL,
		EndedRoomTTL:  config.Envs.EndedRoomTTL,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating matchmaker: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Matchmaker initialized")
}

func initSessionManager() {
	var err error
	gameSessionManager, err = service.NewGameSessionManager(&service.Config{
		Registry: roomRegistry,
		Notifier: notifier,
		Logger:   newLogger("GAME", config.ColorCyan),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating game session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initJanitor() {
	var err error
	janitor, err = service.NewJanitor(&service.JanitorConfig{
		Matchmaker:          matchmaker,
		Registry:            roomRegistry,
		WaiterPruneInterval: config.Envs.WaiterPruneInterval,
		RoomSweepInterval:   config.Envs.RoomSweepInterval,
		EndedRoomTTL:        config.Envs.EndedRoomTTL,
		Logger:              newLogger("JANITOR", config.ColorYellow),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating janitor: %v", err))
		os.Exit(1)
	}
	janitor.Start()
}

func initControllers() {
	roomController = gameapi.NewRoomController(gameSessionManager, notifier, newLogger("ROOM-API", config.ColorCyan))

	var err error
	joinLimiter := api.RateLimitByIP(rate.Limit(config.Envs.JoinRate), config.Envs.JoinBurst)
	matchmakingController, err = gameapi.NewMatchMakingController(matchmaker, notifier, joinLimiter)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating matchmaking controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Controllers initialized")
}

func initRouter() {
	router = api.NewRouter(api.Config{
		Addr:            fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:         "/api",
		Controllers:     []api_i.Controller{roomController, matchmakingController},
		DebugMiddleware: api.DebugOnly(debugMode),
		AllowedOrigins:  config.Envs.AllowedOrigins,
	})
	appLogger.Info("Router initialized")
}

func main() {
	debugFlag := flag.Bool("debug", false, "expose answers before reveal and enable the reveal route")
	flag.Parse()
	debugMode = config.Envs.Debug || *debugFlag

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)
	gin.SetMode(config.Envs.GinMode)

	initCatalogue()
	initRules()
	initRoomRegistry()
	initNotifier()
	initSortedQueue(ctx)
	if redisClient != nil {
		defer redisClient.Close()
	}
	initMatchmaker()
	initSessionManager()
	initJanitor()
	defer func() {
		_ = janitor.Stop()
	}()
	initControllers()
	initRouter()

	// Run HTTP server
	if err := router.Run(); err != nil {
		appLogger.Error(fmt.Sprintf("Starting server: %v", err))
		os.Exit(1)
	}
}
