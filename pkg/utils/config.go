package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
	Kafka    KafkaConfig
	Channel  ChannelConfig
	Payment  PaymentConfig
	Omise    OmiseConfig
	Admin    AdminConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	SettingsTTL time.Duration
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type KafkaConfig struct {
	Brokers   []string
	SyncTopic string
	GroupID   string
}

// ChannelConfig holds the shared secret used to verify external platform webhooks.
type ChannelConfig struct {
	WebhookSecret string
}

type PaymentConfig struct {
	WebhookSecret   string
	Epsilon         float64
	DefaultCurrency string
	AutoConfirm     bool
}

type OmiseConfig struct {
	PublicKey string
	SecretKey string
}

type AdminConfig struct {
	TokenHash string
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "resort-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SETTINGS_CACHE_TTL", "5m")
	viper.SetDefault("AMQP_EXCHANGE", "booking.events")
	viper.SetDefault("KAFKA_SYNC_TOPIC", "channel.bookings")
	viper.SetDefault("KAFKA_GROUP_ID", "resort-booking-sync")
	viper.SetDefault("PAYMENT_EPSILON", 0.005)
	viper.SetDefault("DEFAULT_CURRENCY", "IDR")
	viper.SetDefault("AUTO_CONFIRM_ON_FULL_PAYMENT", true)
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")

	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:        viper.GetString("REDIS_ADDR"),
			Password:    viper.GetString("REDIS_PASSWORD"),
			DB:          viper.GetInt("REDIS_DB"),
			SettingsTTL: viper.GetDuration("SETTINGS_CACHE_TTL"),
		},
		AMQP: AMQPConfig{
			URL:      viper.GetString("AMQP_URL"),
			Exchange: viper.GetString("AMQP_EXCHANGE"),
		},
		Kafka: KafkaConfig{
			Brokers:   splitList(viper.GetString("KAFKA_BROKERS")),
			SyncTopic: viper.GetString("KAFKA_SYNC_TOPIC"),
			GroupID:   viper.GetString("KAFKA_GROUP_ID"),
		},
		Channel: ChannelConfig{
			WebhookSecret: viper.GetString("CHANNEL_WEBHOOK_SECRET"),
		},
		Payment: PaymentConfig{
			WebhookSecret:   viper.GetString("PAYMENT_WEBHOOK_SECRET"),
			Epsilon:         viper.GetFloat64("PAYMENT_EPSILON"),
			DefaultCurrency: viper.GetString("DEFAULT_CURRENCY"),
			AutoConfirm:     viper.GetBool("AUTO_CONFIRM_ON_FULL_PAYMENT"),
		},
		Omise: OmiseConfig{
			PublicKey: viper.GetString("OMISE_PUBLIC_KEY"),
			SecretKey: viper.GetString("OMISE_SECRET_KEY"),
		},
		Admin: AdminConfig{
			TokenHash: viper.GetString("ADMIN_TOKEN_HASH"),
		},
		Tracing: TracingConfig{
			Enabled:  viper.GetBool("TRACING_ENABLED"),
			Endpoint: viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
	}

	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
