package config

import (
	"fmt"
	"log/slog"
)

// Reload re-reads the provider's source file and swaps the active config in
// one step. The running config is untouched when the new one fails to load
// or validate.
func Reload(provider *Provider, logger *slog.Logger) error {
	source := provider.Get().Source
	if source == "" {
		return fmt.Errorf("config: no source file recorded, cannot reload")
	}

	newCfg, err := Load(source)
	if err != nil {
		logger.Error("config reload failed, keeping current configuration", "source", source, "error", err)
		return err
	}

	provider.Update(newCfg)
	logger.Info("configuration reloaded", "source", source)
	return nil
}
