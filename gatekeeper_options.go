package gatekeeper

import (
	"log/slog"
	"os"

	phuslog "github.com/phuslu/log"

	"github.com/gitinsky/gatekeeper/core"
	"github.com/gitinsky/gatekeeper/router/httprouter"
	"github.com/gitinsky/gatekeeper/router/servemux"
)

// DefaultLoggerOptions provides default settings for slog handlers.
var DefaultLoggerOptions = &slog.HandlerOptions{
	Level: slog.LevelInfo,
}

// NewPhusLogger builds an slog.Logger on phuslu/log's JSON handler. Uses
// DefaultLoggerOptions if opts is nil.
func NewPhusLogger(opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	return slog.New(phuslog.SlogNewJSONHandler(os.Stderr, opts))
}

// WithPhusLogger configures slog with phuslu/log's JSON handler.
func WithPhusLogger(opts *slog.HandlerOptions) core.Option {
	return core.WithLogger(NewPhusLogger(opts))
}

// WithTextLogger configures slog with the standard library's text handler.
func WithTextLogger(opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	return core.WithLogger(slog.New(slog.NewTextHandler(os.Stdout, opts)))
}

// WithRouterServeMux selects the net/http ServeMux router.
func WithRouterServeMux() core.Option {
	return core.WithRouter(servemux.New())
}

// WithRouterHttprouter selects the httprouter-backed router.
func WithRouterHttprouter() core.Option {
	return core.WithRouter(httprouter.New())
}
