package ai

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	appcfg "github.com/studyaid/core/internal/config"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// ErrProviderNotConfigured is returned when no API key is available for the
// configured provider.
var ErrProviderNotConfigured = errors.New("AI provider not configured")

var errEmptyResponse = errors.New("empty response from AI")

// CompletionRequest is a single system+user chat turn.
type CompletionRequest struct {
	SystemPrompt string
	Prompt       string
	Temperature  float64
	MaxTokens    int
}

// Completer sends one chat turn to a language model and returns the raw text
// of the first choice.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// NewCompleter builds the client for cfg.Provider.
func NewCompleter(cfg appcfg.AIConfig) (Completer, error) {
	if !cfg.Configured() {
		return nil, ErrProviderNotConfigured
	}

	switch cfg.Provider {
	case appcfg.ProviderAnthropic:
		return newAnthropicCompleter(cfg), nil
	case appcfg.ProviderGroq, appcfg.ProviderOpenAI, appcfg.ProviderOpenAICompatible:
		return newOpenAICompleter(cfg), nil
	}
	return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
}

// openAICompleter talks to any OpenAI-style chat completions API; Groq is
// reached through its OpenAI-compatible endpoint.
type openAICompleter struct {
	client openaiclient.Client
	model  string
}

func newOpenAICompleter(cfg appcfg.AIConfig) *openAICompleter {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(cfg.APIKey),
		openaioption.WithMaxRetries(0),
	}
	if base := openAIBaseURL(cfg.Provider, cfg.Endpoint); base != "" {
		opts = append(opts, openaioption.WithBaseURL(base))
	}
	return &openAICompleter{
		client: openaiclient.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (c *openAICompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	params := openaiclient.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: buildChatMessages(req.SystemPrompt, req.Prompt),
	}
	if req.Temperature > 0 {
		params.Temperature = openaiclient.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openaiclient.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func buildChatMessages(systemPrompt, prompt string) []openaiclient.ChatCompletionMessageParamUnion {
	messages := make([]openaiclient.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openaiclient.SystemMessage(systemPrompt))
	}
	return append(messages, openaiclient.UserMessage(prompt))
}

type anthropicCompleter struct {
	model jetapi.LanguageModel
}

func newAnthropicCompleter(cfg appcfg.AIConfig) *anthropicCompleter {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(cfg.APIKey),
		anthropicoption.WithMaxRetries(0),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(cfg.Endpoint, "/")))
	}
	client := anthropicclient.NewClient(opts...)
	return &anthropicCompleter{
		model: jetanthropic.NewLanguageModel(cfg.Model, jetanthropic.WithClient(client)),
	}
}

// Complete ignores req.Temperature; the Messages API default is used.
func (c *anthropicCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	resp, err := jetai.GenerateText(
		ctx,
		buildAIPromptMessages(req.SystemPrompt, req.Prompt),
		jetai.WithModel(c.model),
		jetai.WithMaxOutputTokens(maxTokens),
	)
	if err != nil {
		return "", err
	}
	return extractTextFromAIResponse(resp)
}

func buildAIPromptMessages(systemPrompt, prompt string) []jetapi.Message {
	messages := make([]jetapi.Message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, &jetapi.SystemMessage{Content: systemPrompt})
	}
	messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)})
	return messages
}

func extractTextFromAIResponse(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", errEmptyResponse
	}

	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}

	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

// openAIBaseURL returns the base URL override for the client, or "" for the
// SDK default.
func openAIBaseURL(provider, endpoint string) string {
	if endpoint == "" {
		if provider == appcfg.ProviderGroq {
			return groqBaseURL
		}
		return ""
	}
	return normalizeOpenAIBaseURL(endpoint)
}

// normalizeOpenAIBaseURL appends /v1 to bare host URLs.
func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		if path == "" {
			path = "/v1"
		} else {
			path += "/v1"
		}
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
