// Package suggestionsbridge serves the subtask proxy endpoint. Browsers post
// a task here so the generative API key never leaves the server.
package suggestionsbridge

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrazmi/smarttasks/bridge/scaffolding/metrics"
	"github.com/jrazmi/smarttasks/core/suggestions"
	"github.com/jrazmi/smarttasks/infrastructure/web"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

// FailureMessage is the only error text clients ever receive.
const FailureMessage = "Failed to generate subtasks"

var errNoGenerator = errors.New("no generator configured, set GEMINI_API_KEY")

// Config holds configuration for the proxy bridge.
type Config struct {
	Log        *logger.Logger
	Generator  suggestions.Generator
	Middleware []web.Middleware
}

type bridge struct {
	log *logger.Logger
	gen suggestions.Generator
}

// AddHttpRoutes registers POST /gemini on group.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := &bridge{log: cfg.Log, gen: cfg.Generator}
	group.POST("/gemini", b.httpGenerate, cfg.Middleware...)
}

func (b *bridge) httpGenerate(ctx context.Context, r *http.Request) web.Encoder {
	metrics.AddSuggestions(ctx)

	var req suggestions.ProxyRequest
	if err := web.Decode(r, &req); err != nil {
		return b.fail(ctx, err)
	}
	if b.gen == nil {
		return b.fail(ctx, errNoGenerator)
	}

	text, err := b.gen.GenerateText(ctx, suggestions.BuildPrompt(req.TaskTitle, req.TaskDescription))
	if err != nil {
		return b.fail(ctx, err)
	}

	return web.NewJSONResponse(suggestions.ProxyResponse{Subtasks: text})
}

func (b *bridge) fail(ctx context.Context, err error) web.Encoder {
	b.log.ErrorContext(ctx, "generating subtasks", "error", err)
	return web.NewJSONResponseWithStatus(suggestions.ProxyResponse{Error: FailureMessage}, http.StatusInternalServerError)
}
