package enhance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const modelName = "gemini-2.0-flash-001"

type GeminiRewriter struct {
	model *genai.GenerativeModel
}

func NewGeminiRewriter(ctx context.Context, apiKey string) (*GeminiRewriter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiRewriter{model: client.GenerativeModel(modelName)}, nil
}

func (g *GeminiRewriter) Rewrite(ctx context.Context, name, description string) (string, error) {
	prompt := fmt.Sprintf(
		"Rewrite the following marketplace listing description to be clear, "+
			"appealing and truthful. Reply with the description only, no preamble.\n\n"+
			"Product: %s\nDescription: %s",
		name, description,
	)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty model response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("model returned no text")
	}
	return out, nil
}
