package gemini

import (
	"context"
	"fmt"
	"strings"

	generativelanguage "cloud.google.com/go/ai/generativelanguage/apiv1beta"
	"cloud.google.com/go/ai/generativelanguage/apiv1beta/generativelanguagepb"
	"google.golang.org/api/option"

	"github.com/jrazmi/smarttasks/sdk/logger"
)

// GRPCClient calls generateContent through the generativelanguage gRPC API.
type GRPCClient struct {
	log    *logger.Logger
	cfg    Options
	client *generativelanguage.GenerativeClient
}

func NewGRPCClient(ctx context.Context, log *logger.Logger, cfg Options) (*GRPCClient, error) {
	client, err := generativelanguage.NewGenerativeClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating generative client: %w", err)
	}
	return &GRPCClient{
		log:    log,
		cfg:    cfg,
		client: client,
	}, nil
}

func (c *GRPCClient) Close() error {
	return c.client.Close()
}

func (c *GRPCClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	model := c.cfg.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}

	resp, err := c.client.GenerateContent(ctx, &generativelanguagepb.GenerateContentRequest{
		Model: model,
		Contents: []*generativelanguagepb.Content{
			{
				Parts: []*generativelanguagepb.Part{
					{Data: &generativelanguagepb.Part_Text{Text: prompt}},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini api error: %w", err)
	}

	c.log.DebugContext(ctx, "gemini generated", "model", model, "candidates", len(resp.GetCandidates()))

	candidates := resp.GetCandidates()
	if len(candidates) == 0 {
		return "", nil
	}
	parts := candidates[0].GetContent().GetParts()
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0].GetText(), nil
}
