// Package llm wraps the Genkit model and embedder behind the small
// surfaces the rest of the service consumes: text completion for the
// composed payload and query embedding for semantic retrieval.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/tsuyoshi-3110/concierge/internal/compose"
	"github.com/tsuyoshi-3110/concierge/internal/config"
	"github.com/tsuyoshi-3110/concierge/internal/log"
)

// ErrEmptyCompletion reports a model response with no text. Callers
// treat it the same as a transport failure.
var ErrEmptyCompletion = errors.New("model returned empty completion")

// Client holds the initialized Genkit instance plus the configured
// model and embedder references.
type Client struct {
	g         *genkit.Genkit
	modelName string
	embedder  ai.Embedder
	logger    log.Logger
}

// New initializes Genkit with the Google AI plugin and resolves the
// configured embedder. The GEMINI_API_KEY environment variable must be
// set; the plugin reads it during Init.
func New(ctx context.Context, cfg *config.Config, logger log.Logger) (*Client, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with googleai plugin")
	}

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not registered", cfg.EmbedderModel)
	}

	logger.Info("initialized genkit",
		"model", cfg.ModelName,
		"embedder", cfg.EmbedderModel)

	return &Client{
		g:         g,
		modelName: cfg.ModelName,
		embedder:  embedder,
		logger:    logger,
	}, nil
}

// Complete dispatches the composed payload: the instruction segments
// become the system prompt, the question the user prompt.
func (c *Client) Complete(ctx context.Context, payload compose.Payload) (string, error) {
	system := strings.Join(payload.Instructions(), "\n\n")

	response, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.modelName),
		ai.WithSystem(system),
		ai.WithPrompt(payload.Question()),
	)
	if err != nil {
		return "", fmt.Errorf("generating completion: %w", err)
	}

	answer := strings.TrimSpace(response.Text())
	if answer == "" {
		return "", ErrEmptyCompletion
	}
	return answer, nil
}

// Embed returns the embedding vector for one query text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(text, nil)},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, errors.New("embedder returned no embeddings")
	}
	return resp.Embeddings[0].Embedding, nil
}
