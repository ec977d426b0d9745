package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP   string // Host IP for the server
	RESTPort int    // Port for the REST API
	GinMode  string // Mode for the Gin framework (e.g., release, debug, test)
	Debug    bool   // Exposes answers before reveal and the reveal endpoint

	CatalogueLocations string // CSV of loc,lat,lon
	CatalogueQuestions string // CSV of id,image,loc,category[,comment]
	ImageDir           string // Prefix joined to every question image

	MaxRounds            int
	MaxHealth            float64
	DistanceScale        float64
	GuessTimeout         time.Duration
	ReadyTimeout         time.Duration
	DrawEpsilon          float64
	RoundCategories      []string  // Per-round category schedule, empty for random questions
	DamageMultipliers    []float64 // Per-round multipliers, empty for the default schedule
	DamageMultiplierTail float64   // Multiplier past the end of DamageMultipliers

	WaiterTimeout       time.Duration // Waiters silent for longer are dropped
	MatchResultTTL      time.Duration // Unclaimed match results expire after this
	WaiterPruneInterval time.Duration
	RoomSweepInterval   time.Duration
	EndedRoomTTL        time.Duration // Ended rooms are kept this long for late viewers

	RedisAddr     string // Shared matchmaking pools live in Redis when set
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string
	JoinRate       float64 // Join requests per second allowed per client IP
	JoinBurst      int
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file. Every value has a default
// so the service starts with an empty environment.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Config{
		HostIP:   getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort: getEnvAsInt("REST_PORT", 8080),
		GinMode:  getEnvWithDefault("GIN_MODE", "release"),
		Debug:    getEnvAsBool("DEBUG", false),

		CatalogueLocations: getEnvWithDefault("CATALOGUE_LOCATIONS", "data/locations.csv"),
		CatalogueQuestions: getEnvWithDefault("CATALOGUE_QUESTIONS", "data/questions.csv"),
		ImageDir:           getEnvWithDefault("IMAGE_DIR", "/static/images"),

		MaxRounds:            getEnvAsInt("MAX_ROUNDS", 16),
		MaxHealth:            getEnvAsFloat("MAX_HEALTH", 100),
		DistanceScale:        getEnvAsFloat("DISTANCE_SCALE", 100),
		GuessTimeout:         getEnvAsDuration("GUESS_TIMEOUT", 30*time.Second),
		ReadyTimeout:         getEnvAsDuration("READY_TIMEOUT", 10*time.Second),
		DrawEpsilon:          getEnvAsFloat("DRAW_EPSILON", 1e-6),
		RoundCategories:      getEnvAsList("ROUND_CATEGORIES"),
		DamageMultipliers:    getEnvAsFloats("DAMAGE_MULTIPLIERS"),
		DamageMultiplierTail: getEnvAsFloat("DAMAGE_MULTIPLIER_TAIL", 4),

		WaiterTimeout:       getEnvAsDuration("WAITER_TIMEOUT", 2*time.Second),
		MatchResultTTL:      getEnvAsDuration("MATCH_RESULT_TTL", 30*time.Second),
		WaiterPruneInterval: getEnvAsDuration("WAITER_PRUNE_INTERVAL", time.Second),
		RoomSweepInterval:   getEnvAsDuration("ROOM_SWEEP_INTERVAL", 5*time.Second),
		EndedRoomTTL:        getEnvAsDuration("ENDED_ROOM_TTL", 10*time.Second),

		RedisAddr:     getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword: getEnvWithDefault("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		AllowedOrigins: getEnvAsListWithDefault("ALLOWED_ORIGINS", []string{"*"}),
		JoinRate:       getEnvAsFloat("JOIN_RATE", 2),
		JoinBurst:      getEnvAsInt("JOIN_BURST", 5),
	}
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt parses an integer variable, falling back to defaultValue when it is unset or malformed.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		log.Printf("[APP] [WARNING] Environment variable %s must be an integer, using %d: %v", key, defaultValue, err)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil {
		log.Printf("[APP] [WARNING] Environment variable %s must be a number, using %v: %v", key, defaultValue, err)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
	if err != nil {
		log.Printf("[APP] [WARNING] Environment variable %s must be a boolean, using %v: %v", key, defaultValue, err)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("30s") or plain seconds ("30").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueStr = strings.TrimSpace(valueStr)
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	log.Printf("[APP] [WARNING] Environment variable %s must be a duration, using %s", key, defaultValue)
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blank items.
func getEnvAsList(key string) []string {
	return getEnvAsListWithDefault(key, nil)
}

func getEnvAsListWithDefault(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsFloats(key string) []float64 {
	items := getEnvAsList(key)
	out := make([]float64, 0, len(items))
	for _, item := range items {
		value, err := strconv.ParseFloat(item, 64)
		if err != nil {
			log.Printf("[APP] [WARNING] Environment variable %s has a non numeric item %q, ignoring it", key, item)
			return nil
		}
		out = append(out, value)
	}
	return out
}
