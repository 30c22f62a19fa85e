package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSAllowOrigins  string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Document store.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
	StoreBackend string `mapstructure:"STORE_BACKEND"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Google Maps geocoding.
	GoogleMapsAPIKey      string `mapstructure:"GOOGLE_MAPS_API_KEY"`
	GeocodeBaseURL        string `mapstructure:"GEOCODE_BASE_URL"`
	GeocodeTimeoutSeconds int    `mapstructure:"GEOCODE_TIMEOUT_SECONDS"`

	// Identity.
	AuthProvider            string `mapstructure:"AUTH_PROVIDER"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	JWTSecret               string `mapstructure:"JWT_SECRET"`

	// Query and popularity knobs.
	DefaultQueryLimit         int `mapstructure:"DEFAULT_QUERY_LIMIT"`
	MaxQueryLimit             int `mapstructure:"MAX_QUERY_LIMIT"`
	PopularityCacheTTLSeconds int `mapstructure:"POPULARITY_CACHE_TTL_SECONDS"`
}

var AppConfig Config

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "harvestmap")
	viper.SetDefault("STORE_BACKEND", "mongo")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("GOOGLE_MAPS_API_KEY", "")
	viper.SetDefault("GEOCODE_BASE_URL", "https://maps.googleapis.com/maps/api/geocode/json")
	viper.SetDefault("GEOCODE_TIMEOUT_SECONDS", 10)
	viper.SetDefault("AUTH_PROVIDER", "firebase")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "config/firebase-adminsdk.json")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("DEFAULT_QUERY_LIMIT", 20)
	viper.SetDefault("MAX_QUERY_LIMIT", 100)
	viper.SetDefault("POPULARITY_CACHE_TTL_SECONDS", 300)
}

func LoadConfig() {
	// A local .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// GeocodeTimeout bounds each outbound geocoding call made on behalf of a request.
func (c Config) GeocodeTimeout() time.Duration {
	if c.GeocodeTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.GeocodeTimeoutSeconds) * time.Second
}

func (c Config) PopularityCacheTTL() time.Duration {
	if c.PopularityCacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.PopularityCacheTTLSeconds) * time.Second
}
