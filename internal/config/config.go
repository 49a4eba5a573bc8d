package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config configures the decision-trail service that surrounds the engine.
type Config struct {
	Addr        string
	DatabaseURL string

	KafkaBrokers []string
	KafkaTopic   string

	S3Bucket string
	S3Prefix string

	JWTSecret string
	AuthOff   bool
}

const (
	defaultAddr       = ":8071"
	defaultKafkaTopic = "negotiator.decisions"
)

// Load reads the service configuration from the environment. The database is
// optional; without it the trail runs on the in-memory store. Kafka and S3
// sinks are only enabled when configured.
func Load() (Config, error) {
	cfg := Config{
		Addr:         getEnv("DECISION_TRAIL_ADDR", defaultAddr),
		DatabaseURL:  firstNonEmpty(os.Getenv("DECISION_TRAIL_DATABASE_URL"), os.Getenv("DATABASE_URL")),
		KafkaBrokers: parseCSV(os.Getenv("DECISION_TRAIL_KAFKA_BROKERS")),
		KafkaTopic:   getEnv("DECISION_TRAIL_KAFKA_TOPIC", defaultKafkaTopic),
		S3Bucket:     os.Getenv("DECISION_TRAIL_S3_BUCKET"),
		S3Prefix:     os.Getenv("DECISION_TRAIL_S3_PREFIX"),
		JWTSecret:    os.Getenv("DECISION_TRAIL_JWT_SECRET"),
		AuthOff:      getBool("DECISION_TRAIL_AUTH_OFF", false),
	}
	if !cfg.AuthOff && cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("DECISION_TRAIL_JWT_SECRET required unless DECISION_TRAIL_AUTH_OFF=true")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
