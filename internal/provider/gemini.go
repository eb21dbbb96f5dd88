package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/garagem-ai/garagem/internal/config"
)

// GeminiProvider generates text through the Google Gemini API.
type GeminiProvider struct {
	client   *genai.Client
	model    string
	priority int
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(ctx context.Context, cfg config.ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiProvider{
		client:   client,
		model:    cfg.Model,
		priority: cfg.Priority,
	}, nil
}

func (p *GeminiProvider) Name() string  { return "gemini" }
func (p *GeminiProvider) Priority() int { return p.priority }

// Generate sends the chat history to Gemini. System messages become the
// system instruction; user/assistant turns map to user/model contents.
func (p *GeminiProvider) Generate(ctx context.Context, msgs []Message, opts Options) (string, error) {
	var contents []*genai.Content
	genCfg := &genai.GenerateContentConfig{}

	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			genCfg.SystemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	if opts.Temperature > 0 {
		genCfg.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.JSONOutput {
		genCfg.ResponseMIMEType = "application/json"
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text candidates")
	}
	return text, nil
}
