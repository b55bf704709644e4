// Package config loads the service configuration from an env/YAML file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        string        `mapstructure:"server_port"`
	ClientOrigin      string        `mapstructure:"client_origin"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	DatabaseURL       string        `mapstructure:"database_url"`
	ChefLookupTimeout time.Duration `mapstructure:"chef_lookup_timeout"`

	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Log       LogConfig       `mapstructure:"log"`
}

type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	GeocodeTTL time.Duration `mapstructure:"geocode_ttl"`
}

type KafkaConfig struct {
	Brokers    []string `mapstructure:"brokers"`
	OrderTopic string   `mapstructure:"order_topic"`
}

// GeocodingConfig points at a Google-Geocoding-compatible API. When TokenURL is
// set the provider is called with an OAuth2 client-credentials token instead of
// an API key.
type GeocodingConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Region       string        `mapstructure:"region"`
	Timeout      time.Duration `mapstructure:"timeout"`
	TokenURL     string        `mapstructure:"token_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
}

type CheckoutConfig struct {
	WalletMaxUsagePerOrder float64 `mapstructure:"wallet_max_usage_per_order"`
	WalletMinOrderAmount   float64 `mapstructure:"wallet_min_order_amount"`
	BonusMinOrderAmount    float64 `mapstructure:"bonus_min_order_amount"`
	ReferralReward         float64 `mapstructure:"referral_reward"`
	ReferralSignupBonus    float64 `mapstructure:"referral_signup_bonus"`
	RotiCategory           string  `mapstructure:"roti_category"`
	RotiCutoffHour         int     `mapstructure:"roti_cutoff_hour"`
	Timezone               string  `mapstructure:"timezone"`
}

// Location returns the configured business timezone, falling back to UTC.
func (c CheckoutConfig) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

type PaymentConfig struct {
	UPIVPA    string `mapstructure:"upi_vpa"`
	PayeeName string `mapstructure:"payee_name"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// LoadConfig reads app.env from path (if present) and lets environment variables
// override every key. Nested keys map to env names with "_", e.g. REDIS_ADDR.
func LoadConfig(path string) (*Config, error) {
	// .env is optional; values already in the environment win.
	_ = godotenv.Load(filepath.Join(path, ".env"))

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("client_origin", "http://localhost:5173")
	v.SetDefault("jwt_secret", "change-me")
	v.SetDefault("database_url", "")
	v.SetDefault("chef_lookup_timeout", 10*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.session_ttl", 2*time.Hour)
	v.SetDefault("redis.geocode_ttl", 24*time.Hour)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.order_topic", "orders.placed")

	v.SetDefault("geocoding.base_url", "https://maps.googleapis.com/maps/api")
	v.SetDefault("geocoding.api_key", "")
	v.SetDefault("geocoding.region", "IN")
	v.SetDefault("geocoding.timeout", 15*time.Second)
	v.SetDefault("geocoding.token_url", "")
	v.SetDefault("geocoding.client_id", "")
	v.SetDefault("geocoding.client_secret", "")

	v.SetDefault("checkout.wallet_max_usage_per_order", 50.0)
	v.SetDefault("checkout.wallet_min_order_amount", 100.0)
	v.SetDefault("checkout.bonus_min_order_amount", 150.0)
	v.SetDefault("checkout.referral_reward", 50.0)
	v.SetDefault("checkout.referral_signup_bonus", 50.0)
	v.SetDefault("checkout.roti_category", "Roti")
	v.SetDefault("checkout.roti_cutoff_hour", 20)
	v.SetDefault("checkout.timezone", "Asia/Kolkata")

	v.SetDefault("payment.upi_vpa", "")
	v.SetDefault("payment.payee_name", "HomeChef")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
}
