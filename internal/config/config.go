package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Cache    CacheConfig
	Feed     FeedConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// EngineConfig holds all tuning constants for the purchasing decision engine.
// It is loaded once at startup and treated as read-only for the process
// lifetime; retuning requires a restart.
type EngineConfig struct {
	DefaultLeadTimeDays int
	SafetyFactor        float64
	TargetCoverDays     int
	MaxLimit            int

	// Priority scorer weights, must sum to 1.0.
	WeightStockUrgency  float64
	WeightVelocity      float64
	WeightMargin        float64
	WeightCompetition   float64
	VelocityCeiling     float64
	PriceGapCeilingPct  float64
	HealthyMarginPct    float64
	SevereMarginPct     float64
	HighScoreThreshold  float64
	MediumScoreThreshold float64
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	DecisionTTLSeconds int
}

// FeedConfig configures the competitor price feed sources.
type FeedConfig struct {
	DriveCredentialsJSON string
	DriveFolderPath      string
	DownloadDir          string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3UseSSL    bool
	S3Prefix    string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "petzzops")
		viper.SetDefault("DB_SSLMODE", "disable")

		viper.SetDefault("ENGINE_DEFAULT_LEAD_TIME_DAYS", 7)
		viper.SetDefault("ENGINE_SAFETY_FACTOR", 0.2)
		viper.SetDefault("ENGINE_TARGET_COVER_DAYS", 30)
		viper.SetDefault("ENGINE_MAX_LIMIT", 1000)
		viper.SetDefault("ENGINE_WEIGHT_STOCK_URGENCY", 0.40)
		viper.SetDefault("ENGINE_WEIGHT_VELOCITY", 0.25)
		viper.SetDefault("ENGINE_WEIGHT_MARGIN", 0.20)
		viper.SetDefault("ENGINE_WEIGHT_COMPETITION", 0.15)
		viper.SetDefault("ENGINE_VELOCITY_CEILING", 10.0)
		viper.SetDefault("ENGINE_PRICE_GAP_CEILING_PCT", 30.0)
		viper.SetDefault("ENGINE_HEALTHY_MARGIN_PCT", 20.0)
		viper.SetDefault("ENGINE_SEVERE_MARGIN_PCT", -5.0)
		viper.SetDefault("ENGINE_HIGH_SCORE_THRESHOLD", 70.0)
		viper.SetDefault("ENGINE_MEDIUM_SCORE_THRESHOLD", 25.0)

		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_DECISION_TTL_SECONDS", 60)

		viper.SetDefault("FEED_DRIVE_FOLDER_PATH", "competitor-feeds")
		viper.SetDefault("FEED_DOWNLOAD_DIR", "./data/feeds")
		viper.SetDefault("FEED_S3_REGION", "us-east-1")
		viper.SetDefault("FEED_S3_USE_SSL", true)
		viper.SetDefault("FEED_S3_PREFIX", "competitor-prices/")

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Engine: EngineConfig{
				DefaultLeadTimeDays:  viper.GetInt("ENGINE_DEFAULT_LEAD_TIME_DAYS"),
				SafetyFactor:         viper.GetFloat64("ENGINE_SAFETY_FACTOR"),
				TargetCoverDays:      viper.GetInt("ENGINE_TARGET_COVER_DAYS"),
				MaxLimit:             viper.GetInt("ENGINE_MAX_LIMIT"),
				WeightStockUrgency:   viper.GetFloat64("ENGINE_WEIGHT_STOCK_URGENCY"),
				WeightVelocity:       viper.GetFloat64("ENGINE_WEIGHT_VELOCITY"),
				WeightMargin:         viper.GetFloat64("ENGINE_WEIGHT_MARGIN"),
				WeightCompetition:    viper.GetFloat64("ENGINE_WEIGHT_COMPETITION"),
				VelocityCeiling:      viper.GetFloat64("ENGINE_VELOCITY_CEILING"),
				PriceGapCeilingPct:   viper.GetFloat64("ENGINE_PRICE_GAP_CEILING_PCT"),
				HealthyMarginPct:     viper.GetFloat64("ENGINE_HEALTHY_MARGIN_PCT"),
				SevereMarginPct:      viper.GetFloat64("ENGINE_SEVERE_MARGIN_PCT"),
				HighScoreThreshold:   viper.GetFloat64("ENGINE_HIGH_SCORE_THRESHOLD"),
				MediumScoreThreshold: viper.GetFloat64("ENGINE_MEDIUM_SCORE_THRESHOLD"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				DecisionTTLSeconds: viper.GetInt("CACHE_DECISION_TTL_SECONDS"),
			},
			Feed: FeedConfig{
				DriveCredentialsJSON: viper.GetString("FEED_DRIVE_CREDENTIALS_JSON"),
				DriveFolderPath:      viper.GetString("FEED_DRIVE_FOLDER_PATH"),
				DownloadDir:          viper.GetString("FEED_DOWNLOAD_DIR"),
				S3Endpoint:           viper.GetString("FEED_S3_ENDPOINT"),
				S3AccessKey:          viper.GetString("FEED_S3_ACCESS_KEY"),
				S3SecretKey:          viper.GetString("FEED_S3_SECRET_KEY"),
				S3Bucket:             viper.GetString("FEED_S3_BUCKET"),
				S3Region:             viper.GetString("FEED_S3_REGION"),
				S3UseSSL:             viper.GetBool("FEED_S3_USE_SSL"),
				S3Prefix:             viper.GetString("FEED_S3_PREFIX"),
			},
		}
	})

	return instance
}
