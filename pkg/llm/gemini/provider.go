package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aivaidya-be/pkg/llm"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	probePrompt = "ping"
)

type Config struct {
	APIKey          string
	BaseURL         string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
	SafetySettings  []GeminiSafetySetting
}

// Provider talks to the generateContent REST endpoint. It holds only
// read-only configuration, so one value serves concurrent requests.
type Provider struct {
	cfg    Config
	client *http.Client
}

func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SafetySettings == nil {
		cfg.SafetySettings = DefaultSafetySettings()
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) CheckConfig() error {
	if p.cfg.APIKey == "" {
		return llm.NewError(llm.KindConfiguration, http.StatusInternalServerError, "Server missing GOOGLE_API_KEY")
	}
	return nil
}

func (p *Provider) Probe(ctx context.Context, model string) error {
	payload := &GeminiChatRequest{
		Contents: []*GeminiChatContent{
			{
				Parts: []*GeminiChatParts{{Text: probePrompt}},
				Role:  ChatMessageRoleUser,
			},
		},
		GenerationConfig: &GeminiGenerationConfig{MaxOutputTokens: 1},
	}
	_, err := p.generateContent(ctx, model, payload)
	return err
}

func (p *Provider) Generate(ctx context.Context, model string, parts []llm.Part, options ...llm.Option) (string, error) {
	opts := llm.ApplyOptions(append([]llm.Option{
		llm.WithTemperature(p.cfg.Temperature),
		llm.WithMaxTokens(p.cfg.MaxOutputTokens),
	}, options...)...)

	geminiParts := make([]*GeminiChatParts, 0, len(parts))
	for _, part := range parts {
		if part.InlineData != nil {
			geminiParts = append(geminiParts, &GeminiChatParts{
				InlineData: &GeminiInlineData{
					MimeType: part.InlineData.MIMEType,
					Data:     part.InlineData.Data,
				},
			})
			continue
		}
		geminiParts = append(geminiParts, &GeminiChatParts{Text: part.Text})
	}

	temperature := opts.Temperature
	genConfig := &GeminiGenerationConfig{
		Temperature:     &temperature,
		MaxOutputTokens: opts.MaxTokens,
	}
	if opts.JSON {
		genConfig.ResponseMimeType = "application/json"
	}

	payload := &GeminiChatRequest{
		Contents: []*GeminiChatContent{
			{Parts: geminiParts, Role: ChatMessageRoleUser},
		},
		GenerationConfig: genConfig,
		SafetySettings:   p.cfg.SafetySettings,
	}

	geminiRes, err := p.generateContent(ctx, model, payload)
	if err != nil {
		return "", err
	}
	return extractText(geminiRes)
}

func (p *Provider) generateContent(ctx context.Context, model string, payload *GeminiChatRequest) (*GeminiChatResponse, error) {
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, llm.Wrap(llm.KindUpstream, 0, err)
	}

	endpoint := fmt.Sprintf(
		"%s/models/%s:generateContent",
		strings.TrimRight(p.cfg.BaseURL, "/"),
		url.PathEscape(model),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, llm.Wrap(llm.KindUpstream, 0, err)
	}

	req.Header.Set("x-goog-api-key", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, llm.Wrap(llm.KindUpstream, 0, err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, llm.Wrap(llm.KindUpstream, res.StatusCode, err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, classifyStatus(res.StatusCode, resBody)
	}

	var geminiRes GeminiChatResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return nil, llm.Wrap(llm.KindUpstream, res.StatusCode, fmt.Errorf("decode gemini response: %w", err))
	}
	return &geminiRes, nil
}

// classifyStatus is the single place non-2xx answers become typed errors.
func classifyStatus(status int, body []byte) *llm.Error {
	var apiErr GeminiErrorResponse
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}
	if message == "" {
		message = http.StatusText(status)
	}

	if status == http.StatusNotFound || apiErr.Error.Status == "NOT_FOUND" {
		return llm.NewError(llm.KindModelNotFound, http.StatusNotFound, message)
	}
	return llm.NewError(llm.KindUpstream, status, message)
}

func extractText(res *GeminiChatResponse) (string, error) {
	if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
		return "", llm.SafetyBlocked(res.PromptFeedback.BlockReason)
	}
	if len(res.Candidates) == 0 || res.Candidates[0] == nil {
		return "", llm.NewError(llm.KindUpstream, http.StatusBadGateway, "model returned no candidates")
	}

	candidate := res.Candidates[0]
	if blockedFinishReasons[candidate.FinishReason] {
		return "", llm.SafetyBlocked(candidate.FinishReason)
	}
	if candidate.Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
