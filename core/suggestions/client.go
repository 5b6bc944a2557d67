package suggestions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jrazmi/smarttasks/sdk/environment"
	"github.com/jrazmi/smarttasks/sdk/logger"
)

// ProxyRequest is the body accepted by the suggestion proxy.
type ProxyRequest struct {
	TaskTitle       string `json:"taskTitle"`
	TaskDescription string `json:"taskDescription"`
}

// ProxyResponse is the body returned by the suggestion proxy. Subtasks holds
// the raw comma separated text.
type ProxyResponse struct {
	Subtasks string `json:"subtasks,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Options is the exportable client configuration.
type Options struct {
	ProxyURL string        `env:"SUGGESTION_PROXY_URL"`
	Timeout  time.Duration `env:"SUGGESTION_TIMEOUT" default:"0s"`
}

// OptionsFromEnv reads PREFIX_SUGGESTION_* variables.
func OptionsFromEnv(prefix string) (Options, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return Options{}, fmt.Errorf("parsing suggestion config: %w", err)
	}
	return cfg, nil
}

// Client requests subtasks from a suggestion proxy over HTTP.
type Client struct {
	log  *logger.Logger
	url  string
	http *http.Client
}

func NewClient(log *logger.Logger, cfg Options) *Client {
	return &Client{
		log:  log,
		url:  cfg.ProxyURL,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Suggest posts the task to the proxy and parses the reply. Every failure is
// reported as ErrSuggestionFailed with the cause attached.
func (c *Client) Suggest(ctx context.Context, title, description string) ([]string, error) {
	raw, err := c.fetch(ctx, title, description)
	if err != nil {
		return nil, failed(err)
	}
	subtasks, err := ParseSubtasks(raw)
	if err != nil {
		return nil, failed(err)
	}
	return subtasks, nil
}

func (c *Client) fetch(ctx context.Context, title, description string) (string, error) {
	if c.url == "" {
		return "", errors.New("no suggestion proxy url configured")
	}

	body, err := json.Marshal(ProxyRequest{TaskTitle: title, TaskDescription: description})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling proxy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return "", fmt.Errorf("proxy returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out ProxyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding proxy response: %w", err)
	}

	c.log.DebugContext(ctx, "proxy replied", "url", c.url, "bytes", len(out.Subtasks))
	return out.Subtasks, nil
}
