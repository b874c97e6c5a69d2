package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"aivaidya-be/pkg/llm"

	openai "github.com/sashabaranov/go-openai"
)

type Config struct {
	APIKey      string
	BaseURL     string // empty keeps the public endpoint
	Temperature float64
	MaxTokens   int
}

// Provider calls the OpenAI chat completion API. Images travel as data URLs.
type Provider struct {
	cfg    Config
	client *openai.Client
}

func NewProvider(cfg Config) *Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Provider{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) CheckConfig() error {
	if p.cfg.APIKey == "" {
		return llm.NewError(llm.KindConfiguration, http.StatusInternalServerError, "Server missing OPENAI_API_KEY")
	}
	return nil
}

func (p *Provider) Probe(ctx context.Context, model string) error {
	_, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: 1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "ping"},
		},
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func (p *Provider) Generate(ctx context.Context, model string, parts []llm.Part, options ...llm.Option) (string, error) {
	opts := llm.ApplyOptions(append([]llm.Option{
		llm.WithTemperature(p.cfg.Temperature),
		llm.WithMaxTokens(p.cfg.MaxTokens),
	}, options...)...)

	content := make([]openai.ChatMessagePart, 0, len(parts))
	for _, part := range parts {
		if part.InlineData != nil {
			content = append(content, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    fmt.Sprintf("data:%s;base64,%s", part.InlineData.MIMEType, part.InlineData.Data),
					Detail: openai.ImageURLDetailAuto,
				},
			})
			continue
		}
		content = append(content, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: part.Text,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: content},
		},
	}
	if opts.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.NewError(llm.KindUpstream, http.StatusBadGateway, "model returned no choices")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", llm.SafetyBlocked(string(choice.FinishReason))
	}
	return choice.Message.Content, nil
}

func classify(err error) *llm.Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := strings.ToLower(fmt.Sprint(apiErr.Code))
		if apiErr.HTTPStatusCode == http.StatusNotFound || code == "model_not_found" {
			return llm.NewError(llm.KindModelNotFound, http.StatusNotFound, apiErr.Message)
		}
		return llm.NewError(llm.KindUpstream, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusNotFound {
			return llm.Wrap(llm.KindModelNotFound, http.StatusNotFound, err)
		}
		return llm.Wrap(llm.KindUpstream, reqErr.HTTPStatusCode, err)
	}

	return llm.Wrap(llm.KindUpstream, 0, err)
}
