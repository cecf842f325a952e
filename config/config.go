package config

import (
	"fmt"
	"log/slog"
	"time"
)

// Config is the whole application configuration, loaded from a single TOML
// file. Source keeps the file path for reloads and is never serialized.
type Config struct {
	Source string `toml:"-"`

	DBFile string `toml:"db_file"`

	Verification Verification `toml:"verification"`
	Admins       []string     `toml:"admins"`
	Smtp         Smtp         `toml:"smtp"`
	Server       Server       `toml:"server"`
	Log          Log          `toml:"log"`
	Notifier     Notifier     `toml:"notifier"`
	Janitor      Janitor      `toml:"janitor"`
}

// Verification configures the identity verification core: the accepted email
// domain, one-time code shape and the session lifetime.
type Verification struct {
	// AllowedDomain is the single email domain accepted as proof of
	// organizational membership, without the leading "@".
	AllowedDomain string `toml:"allowed_domain"`

	CodeLength int      `toml:"code_length"`
	CodeTTL    Duration `toml:"code_ttl"`

	// SessionTTL is the maximum gap between authenticated activities before
	// re-verification is required.
	SessionTTL Duration `toml:"session_ttl"`

	// ResendCooldown suppresses code regeneration for an email that was
	// successfully sent a code within the window. Zero disables it.
	ResendCooldown Duration `toml:"resend_cooldown"`

	// DeliveryTimeout bounds the post-commit delivery attempt.
	DeliveryTimeout Duration `toml:"delivery_timeout"`
}

type Smtp struct {
	Enabled     bool   `toml:"enabled"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	FromName    string `toml:"from_name"`
	FromAddress string `toml:"from_address"`
	LocalName   string `toml:"local_name"`
	AuthMethod  string `toml:"auth_method"`
	UseTLS      bool   `toml:"use_tls"`
	UseStartTLS bool   `toml:"use_start_tls"`
}

type Server struct {
	Addr                    string   `toml:"addr"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`
}

type Log struct {
	Batch BatchLogger `toml:"batch"`
}

type BatchLogger struct {
	Activated     bool     `toml:"activated"`
	FlushSize     int      `toml:"flush_size"`
	ChanSize      int      `toml:"chan_size"`
	FlushInterval Duration `toml:"flush_interval"`
	Level         LogLevel `toml:"level"`
	DbPath        string   `toml:"db_path"`
}

type Notifier struct {
	Discord Discord `toml:"discord"`
}

type Discord struct {
	Activated    bool     `toml:"activated"`
	WebhookURL   string   `toml:"webhook_url"`
	APIRateLimit Duration `toml:"api_rate_limit"`
	APIBurst     int      `toml:"api_burst"`
	SendTimeout  Duration `toml:"send_timeout"`
}

type Janitor struct {
	Interval Duration `toml:"interval"`

	// InteractionRetention is how long interaction log rows are kept.
	InteractionRetention Duration `toml:"interaction_retention"`
}

// Duration wraps time.Duration for TOML "1h30m" notation.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LogLevel wraps slog.Level, which already speaks encoding.TextMarshaler.
type LogLevel struct {
	slog.Level
}
