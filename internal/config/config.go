package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/intu-mobility/service-ride/internal/platform/database"
)

// GeocodingConfig configures the place-search client.
type GeocodingConfig struct {
	BaseURL      string
	CountryCodes string
	ResultLimit  int
	// ViewboxDelta is the half-width in degrees of the bias box drawn around
	// the rider's location.
	ViewboxDelta float64
	Debounce     time.Duration
	CacheTTL     time.Duration
}

// RoutingConfig configures the driving-route client.
type RoutingConfig struct {
	BaseURL string
}

// MapConfig configures the viewport controller defaults.
type MapConfig struct {
	DefaultCenterLat   float64
	DefaultCenterLng   float64
	DefaultZoom        float64
	FitAnimation       time.Duration
	EdgePadding        int
	LocateHighAccuracy bool
	LocateTimeout      time.Duration
	LocateMaxAge       time.Duration
}

// FlowConfig configures the destination flow timings. None of these are
// load-bearing; tests override them with small values.
type FlowConfig struct {
	ConfirmLatency time.Duration
	PhraseInterval time.Duration
}

// KafkaConfig configures the event producer and consumers.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// ServiceConfig holds all configuration for the ride service.
type ServiceConfig struct {
	Port      string
	AppEnv    string
	DB        database.PostgresConfig
	RedisAddr string
	Kafka     KafkaConfig
	JWTSecret string
	Geocoding GeocodingConfig
	Routing   RoutingConfig
	Map       MapConfig
	Flow      FlowConfig
}

// Load reads configuration from RIDE_-prefixed environment variables with
// defaults for local development.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service_port", ":8080")
	v.SetDefault("app_env", "development")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "intu_rides")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.group_prefix", "intu.")

	v.SetDefault("jwt.secret", "dev-secret-do-not-use")

	v.SetDefault("geocoding.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoding.country_codes", "us")
	v.SetDefault("geocoding.result_limit", 5)
	v.SetDefault("geocoding.viewbox_delta", 0.1)
	v.SetDefault("geocoding.debounce_ms", 300)
	v.SetDefault("geocoding.cache_ttl_s", 600)

	v.SetDefault("routing.base_url", "https://router.project-osrm.org")

	// Boston, matching the client's hardcoded fallback center.
	v.SetDefault("map.default_center_lat", 42.3601)
	v.SetDefault("map.default_center_lng", -71.0589)
	v.SetDefault("map.default_zoom", 12.0)
	v.SetDefault("map.fit_animation_ms", 700)
	v.SetDefault("map.edge_padding", 24)
	v.SetDefault("map.locate_high_accuracy", true)
	v.SetDefault("map.locate_timeout_ms", 10000)
	v.SetDefault("map.locate_max_age_s", 60)

	v.SetDefault("flow.confirm_latency_ms", 800)
	v.SetDefault("flow.phrase_interval_ms", 3000)

	cfg := &ServiceConfig{
		Port:   v.GetString("service_port"),
		AppEnv: v.GetString("app_env"),
		DB: database.PostgresConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		RedisAddr: v.GetString("redis.addr"),
		Kafka: KafkaConfig{
			Brokers:     strings.Split(v.GetString("kafka.brokers"), ","),
			GroupPrefix: v.GetString("kafka.group_prefix"),
		},
		JWTSecret: v.GetString("jwt.secret"),
		Geocoding: GeocodingConfig{
			BaseURL:      v.GetString("geocoding.base_url"),
			CountryCodes: v.GetString("geocoding.country_codes"),
			ResultLimit:  v.GetInt("geocoding.result_limit"),
			ViewboxDelta: v.GetFloat64("geocoding.viewbox_delta"),
			Debounce:     time.Duration(v.GetInt("geocoding.debounce_ms")) * time.Millisecond,
			CacheTTL:     time.Duration(v.GetInt("geocoding.cache_ttl_s")) * time.Second,
		},
		Routing: RoutingConfig{
			BaseURL: v.GetString("routing.base_url"),
		},
		Map: MapConfig{
			DefaultCenterLat:   v.GetFloat64("map.default_center_lat"),
			DefaultCenterLng:   v.GetFloat64("map.default_center_lng"),
			DefaultZoom:        v.GetFloat64("map.default_zoom"),
			FitAnimation:       time.Duration(v.GetInt("map.fit_animation_ms")) * time.Millisecond,
			EdgePadding:        v.GetInt("map.edge_padding"),
			LocateHighAccuracy: v.GetBool("map.locate_high_accuracy"),
			LocateTimeout:      time.Duration(v.GetInt("map.locate_timeout_ms")) * time.Millisecond,
			LocateMaxAge:       time.Duration(v.GetInt("map.locate_max_age_s")) * time.Second,
		},
		Flow: FlowConfig{
			ConfirmLatency: time.Duration(v.GetInt("flow.confirm_latency_ms")) * time.Millisecond,
			PhraseInterval: time.Duration(v.GetInt("flow.phrase_interval_ms")) * time.Millisecond,
		},
	}
	return cfg, nil
}
