package config

import (
	"fmt"
	"strings"
)

// Validate checks a configuration for values the application cannot run
// with. It returns the first problem found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.DBFile == "" {
		return fmt.Errorf("db_file must be set")
	}

	v := cfg.Verification
	if v.AllowedDomain == "" {
		return fmt.Errorf("verification.allowed_domain must be set")
	}
	if strings.HasPrefix(v.AllowedDomain, "@") {
		return fmt.Errorf("verification.allowed_domain must not include the leading @")
	}
	if v.CodeLength < 4 || v.CodeLength > 10 {
		return fmt.Errorf("verification.code_length must be between 4 and 10, got %d", v.CodeLength)
	}
	if v.CodeTTL.Duration <= 0 {
		return fmt.Errorf("verification.code_ttl must be positive")
	}
	if v.SessionTTL.Duration <= 0 {
		return fmt.Errorf("verification.session_ttl must be positive")
	}
	if v.ResendCooldown.Duration < 0 {
		return fmt.Errorf("verification.resend_cooldown must not be negative")
	}
	if v.DeliveryTimeout.Duration <= 0 {
		return fmt.Errorf("verification.delivery_timeout must be positive")
	}

	if cfg.Smtp.Enabled {
		if cfg.Smtp.Host == "" {
			return fmt.Errorf("smtp.host must be set when smtp is enabled")
		}
		if cfg.Smtp.Port <= 0 || cfg.Smtp.Port > 65535 {
			return fmt.Errorf("smtp.port must be a valid port, got %d", cfg.Smtp.Port)
		}
		if cfg.Smtp.FromAddress == "" {
			return fmt.Errorf("smtp.from_address must be set when smtp is enabled")
		}
	}

	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must be set")
	}

	if cfg.Log.Batch.Activated {
		if cfg.Log.Batch.FlushSize <= 0 {
			return fmt.Errorf("log.batch.flush_size must be positive")
		}
		if cfg.Log.Batch.ChanSize < cfg.Log.Batch.FlushSize {
			return fmt.Errorf("log.batch.chan_size must be at least flush_size")
		}
		if cfg.Log.Batch.FlushInterval.Duration <= 0 {
			return fmt.Errorf("log.batch.flush_interval must be positive")
		}
		if cfg.Log.Batch.DbPath == "" {
			return fmt.Errorf("log.batch.db_path must be set")
		}
	}

	if cfg.Notifier.Discord.Activated && cfg.Notifier.Discord.WebhookURL == "" {
		return fmt.Errorf("notifier.discord.webhook_url must be set when activated")
	}

	if cfg.Janitor.Interval.Duration <= 0 {
		return fmt.Errorf("janitor.interval must be positive")
	}

	return nil
}
