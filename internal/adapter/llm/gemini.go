package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// Generation defaults for the Gemini backend.
const (
	DefaultGeminiModel = "gemini-1.5-flash"

	geminiTemperature = 0.8
	geminiTopP        = 0.9
	geminiTopK        = 40
	geminiMaxTokens   = 1200
)

// GeminiClient generates replies through the Google GenAI SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini API client. baseURL may be empty.
func NewGeminiClient(ctx context.Context, apiKey, model, baseURL string) (*GeminiClient, error) {
	config := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Name implements Generator.
func (g *GeminiClient) Name() string {
	return "gemini"
}

// Remote implements Generator.
func (g *GeminiClient) Remote() bool {
	return true
}

// Generate implements Generator.
func (g *GeminiClient) Generate(ctx context.Context, req *GenerationRequest) (*Generation, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(geminiTemperature)),
		TopP:            genai.Ptr(float32(geminiTopP)),
		TopK:            genai.Ptr(float32(geminiTopK)),
		MaxOutputTokens: geminiMaxTokens,
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.MaxTokens != nil {
		config.MaxOutputTokens = int32(*req.MaxTokens)
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), config)
	if err != nil {
		if isQuotaError(err) {
			return nil, fmt.Errorf("gemini generate: %v: %w", err, ErrProviderQuota)
		}
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	gen := &Generation{Text: resp.Text(), Model: model}
	if resp.ModelVersion != "" {
		gen.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		gen.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		gen.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return gen, nil
}

func isQuotaError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests
	}
	return false
}
