package main

import (
	"log"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var logLevels = map[uint8]slog.Level{
	0: slog.LevelDebug,
	1: slog.LevelInfo,
	2: slog.LevelWarn,
	3: slog.LevelError,
}

type System struct {
	Port     string `env:"SYSTEM_PORT" envDefault:"8080"`
	LogLevel uint8  `env:"SYSTEM_LOG_LEVEL" envDefault:"1"` // 0 - debug, 1 - info, 2 - warn, 3 - error
}

type Admin struct {
	Username string `env:"ADMIN_USER,required"`
	Password string `env:"ADMIN_PASS,required"`
}

type Webhook struct {
	// Absence of the webhook URL is a deployment error, not a runtime one.
	URL            string `env:"DISCORD_WEBHOOK_URL,required"`
	TimeoutSeconds uint   `env:"DISCORD_WEBHOOK_TIMEOUT_SECONDS" envDefault:"10"`
}

type RateLimit struct {
	// Policy: "cooldown" (fixed wait between accepted submissions) or
	// "window" (sliding-window counter).
	Policy          string `env:"RATE_LIMIT_POLICY" envDefault:"cooldown"`
	CooldownSeconds uint   `env:"RATE_LIMIT_COOLDOWN_SECONDS" envDefault:"600"`
	MaxRequests     int    `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"5"`
	WindowSeconds   uint   `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
}

type Metrics struct {
	Namespace        string `env:"NAMESPACE" envDefault:"report_intake"`
	ServerSubsystem  string `env:"SERVER_SUBSYSTEM" envDefault:"server"`
	StoreSubsystem   string `env:"STORE_SUBSYSTEM" envDefault:"store"`
	WorkersSubsystem string `env:"WORKERS_SUBSYSTEM" envDefault:"workers"`
}

type Config struct {
	System    System
	Admin     Admin
	Webhook   Webhook
	RateLimit RateLimit
	Metrics   Metrics
}

func loadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(&cfg.System); err != nil {
		log.Fatalf("Failed to parse system config: %v", err)
	}
	if err := env.Parse(&cfg.Admin); err != nil {
		log.Fatalf("Failed to parse admin config: %v", err)
	}
	if err := env.Parse(&cfg.Webhook); err != nil {
		log.Fatalf("Failed to parse webhook config: %v", err)
	}
	if err := env.Parse(&cfg.RateLimit); err != nil {
		log.Fatalf("Failed to parse rate limit config: %v", err)
	}
	if err := env.Parse(&cfg.Metrics); err != nil {
		log.Fatalf("Failed to parse metrics config: %v", err)
	}

	return cfg
}
