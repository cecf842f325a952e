package config

import "sync/atomic"

// Provider hands out the currently active configuration. Get is safe from
// any goroutine; Update swaps the whole config atomically so readers never
// observe a partially reloaded state.
type Provider struct {
	cfg atomic.Pointer[Config]
}

func NewProvider(cfg *Config) *Provider {
	p := &Provider{}
	p.cfg.Store(cfg)
	return p
}

func (p *Provider) Get() *Config {
	return p.cfg.Load()
}

func (p *Provider) Update(cfg *Config) {
	p.cfg.Store(cfg)
}
