package suggestions

import (
	"context"

	"github.com/jrazmi/smarttasks/sdk/logger"
)

// Generator turns a prompt into generated text.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Direct asks a Generator in-process instead of going through the proxy.
type Direct struct {
	log *logger.Logger
	gen Generator
}

func NewDirect(log *logger.Logger, gen Generator) *Direct {
	return &Direct{log: log, gen: gen}
}

func (d *Direct) Suggest(ctx context.Context, title, description string) ([]string, error) {
	raw, err := d.gen.GenerateText(ctx, BuildPrompt(title, description))
	if err != nil {
		return nil, failed(err)
	}
	subtasks, err := ParseSubtasks(raw)
	if err != nil {
		return nil, failed(err)
	}
	return subtasks, nil
}
