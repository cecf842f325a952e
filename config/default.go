package config

import (
	"log/slog"
	"time"
)

// NewDefaultConfig creates a new Config with sensible defaults. The allowed
// domain and SMTP credentials have no usable default and must come from the
// config file.
func NewDefaultConfig() *Config {
	return &Config{
		DBFile: "gatekeeper.db",
		Verification: Verification{
			AllowedDomain:   "",
			CodeLength:      6,
			CodeTTL:         Duration{Duration: 15 * time.Minute},
			SessionTTL:      Duration{Duration: 30 * 24 * time.Hour},
			ResendCooldown:  Duration{Duration: 1 * time.Hour},
			DeliveryTimeout: Duration{Duration: 10 * time.Second},
		},
		Admins: nil,
		Smtp: Smtp{
			Enabled:     false,
			Host:        "smtp.gmail.com",
			Port:        587,
			FromName:    "Gitinsky Support Bot",
			FromAddress: "",
			LocalName:   "",
			AuthMethod:  "plain",
			UseTLS:      false,
			UseStartTLS: true,
		},
		Server: Server{
			Addr:                    ":8080",
			ShutdownGracefulTimeout: Duration{Duration: 15 * time.Second},
			ReadTimeout:             Duration{Duration: 2 * time.Second},
			ReadHeaderTimeout:       Duration{Duration: 2 * time.Second},
			WriteTimeout:            Duration{Duration: 3 * time.Second},
			IdleTimeout:             Duration{Duration: 1 * time.Minute},
		},
		Log: Log{
			Batch: BatchLogger{
				Activated:     false,
				FlushSize:     100,
				ChanSize:      1000,
				FlushInterval: Duration{Duration: 5 * time.Second},
				Level:         LogLevel{Level: slog.LevelInfo},
				DbPath:        "logs.db",
			},
		},
		Notifier: Notifier{
			Discord: Discord{
				Activated:    false,
				WebhookURL:   "",
				APIRateLimit: Duration{Duration: 2 * time.Second},
				APIBurst:     1,
				SendTimeout:  Duration{Duration: 10 * time.Second},
			},
		},
		Janitor: Janitor{
			Interval:             Duration{Duration: 1 * time.Hour},
			InteractionRetention: Duration{Duration: 90 * 24 * time.Hour},
		},
	}
}
