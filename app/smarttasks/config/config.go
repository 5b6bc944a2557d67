// Package config holds what the smarttasks server hands to its HTTP layer.
package config

import (
	"context"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/core/suggestions"
	"github.com/jrazmi/smarttasks/infrastructure/web"
	"github.com/jrazmi/smarttasks/infrastructure/workers"
	"github.com/jrazmi/smarttasks/sdk/logger"
	"github.com/jrazmi/smarttasks/sdk/telemetry"
)

// site wide globals.
const (
	ProxyRoute = "/api"
)

// Options is the server configuration that is not owned by a package.
type Options struct {
	SuggestionQueueSize int `env:"SUGGESTION_QUEUE_SIZE" default:"64"`
	// SuggestionMaxErrors stops a suggestion worker after this many failed
	// jobs in a row. Zero keeps workers running through any failure.
	SuggestionMaxErrors int `env:"SUGGESTION_WORKER_MAX_ERRORS" default:"0"`
}

// Repositories holds the stores this instance serves.
type Repositories struct {
	Tasks *tasksrepo.Repository
}

// SmartTasks is the overall configuration for the HTTP handler.
type SmartTasks struct {
	Build     string
	Logger    *logger.Logger
	Telemetry telemetry.Telemetry
	Web       web.ServerConfig

	Repositories Repositories
	// StoreCheck reports whether the task store is reachable, for /readiness.
	StoreCheck func(ctx context.Context) error

	// Generator backs the /api/gemini proxy. Nil when no API key is set.
	Generator suggestions.Generator
	// SuggestionQueue feeds the background suggestion workers.
	SuggestionQueue *suggestions.Queue
	// WorkerMetrics reports the suggestion worker pool at /debug/workers.
	WorkerMetrics func() workers.MetricsSnapshot
}
