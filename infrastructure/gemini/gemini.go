// Package gemini calls the Gemini generateContent API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jrazmi/smarttasks/sdk/environment"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	TransportREST = "rest"
	TransportGRPC = "grpc"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("gemini api key is not set")

// Generator turns a prompt into generated text.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Options is the exportable client configuration. The variables carry no
// application prefix.
type Options struct {
	APIKey    string        `env:"GEMINI_API_KEY"`
	Model     string        `env:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	BaseURL   string        `env:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	Transport string        `env:"GEMINI_TRANSPORT" default:"rest"`
	Timeout   time.Duration `env:"GEMINI_TIMEOUT" default:"0s"`
}

// OptionsFromEnv reads the GEMINI_* variables.
func OptionsFromEnv() (Options, error) {
	var cfg Options
	if err := environment.ParseEnvTags("", &cfg); err != nil {
		return Options{}, fmt.Errorf("parsing gemini config: %w", err)
	}
	return cfg, nil
}

// New builds the Generator for cfg.Transport. The returned close function
// releases the gRPC connection, if any.
func New(ctx context.Context, log *logger.Logger, cfg Options) (Generator, func() error, error) {
	if cfg.APIKey == "" {
		return nil, nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	switch strings.ToLower(cfg.Transport) {
	case TransportREST, "":
		return NewRESTClient(log, cfg), func() error { return nil }, nil
	case TransportGRPC:
		c, err := NewGRPCClient(ctx, log, cfg)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown gemini transport %q", cfg.Transport)
	}
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
