package params

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Kafka struct {
	Brokers []string
	// FeedTopic carries the best-effort live trade feed, EventTopic the
	// at-least-once outbox replay. They are separate streams on purpose.
	FeedTopic         string
	EventTopic        string
	OutboxDir         string
	BroadcastInterval time.Duration
}

type Config struct {
	LogLevel string
	// TradeLog is the append-only human-readable trade log.
	TradeLog string
	// DemoFeed submits the fixed demonstration order sequence at startup.
	DemoFeed bool
	Kafka    Kafka
}

func Default() Config {
	return Config{
		LogLevel: "info",
		TradeLog: "trade_log.txt",
		DemoFeed: true,
		Kafka: Kafka{
			FeedTopic:         "trades.feed",
			EventTopic:        "trades.events",
			OutboxDir:         "./outbox",
			BroadcastInterval: 250 * time.Millisecond,
		},
	}
}

// KafkaEnabled reports whether the Kafka delivery paths should start.
// With no brokers configured the engine runs with the file log only.
func (c Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	cfg.LogLevel = envString("FENRIR_LOG_LEVEL", cfg.LogLevel)
	cfg.TradeLog = envString("FENRIR_TRADE_LOG", cfg.TradeLog)
	cfg.DemoFeed = envBool("FENRIR_DEMO_FEED", cfg.DemoFeed)
	cfg.Kafka.Brokers = envList("FENRIR_KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.FeedTopic = envString("FENRIR_KAFKA_FEED_TOPIC", cfg.Kafka.FeedTopic)
	cfg.Kafka.EventTopic = envString("FENRIR_KAFKA_EVENT_TOPIC", cfg.Kafka.EventTopic)
	cfg.Kafka.OutboxDir = envString("FENRIR_OUTBOX_DIR", cfg.Kafka.OutboxDir)
	cfg.Kafka.BroadcastInterval = envDuration("FENRIR_BROADCAST_INTERVAL", cfg.Kafka.BroadcastInterval)

	return cfg
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
