package llm

import (
	"context"
)

// InlineData is a base64 payload with its MIME type, sent inline with the prompt.
type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Part is one fragment of a user message: either text or inline binary data.
type Part struct {
	Text       string
	InlineData *InlineData
}

func TextPart(text string) Part {
	return Part{Text: text}
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	JSON        bool // ask the model for a JSON document
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithJSONResponse(enabled bool) Option {
	return func(o *Options) {
		o.JSON = enabled
	}
}

func ApplyOptions(options ...Option) Options {
	o := Options{}
	for _, opt := range options {
		opt(&o)
	}
	return o
}

// LLMProvider defines the contract for any generative backend.
// Implementations must be safe for concurrent use and keep no per-request state;
// the model id is passed on every call.
type LLMProvider interface {
	Name() string

	// CheckConfig reports a ConfigurationError when credentials are missing.
	CheckConfig() error

	// Probe issues a minimal one-token request to verify the model id resolves.
	Probe(ctx context.Context, model string) error

	// Generate sends a single user-role message made of parts and returns the text answer.
	Generate(ctx context.Context, model string, parts []Part, options ...Option) (string, error)
}

// Invoke resolves a usable model through the policy and then issues the real call.
// It returns the model that answered.
func Invoke(ctx context.Context, provider LLMProvider, policy FallbackPolicy, parts []Part, options ...Option) (string, string, error) {
	model, err := policy.Resolve(ctx, provider.Probe)
	if err != nil {
		return "", "", AsError(err)
	}

	text, err := provider.Generate(ctx, model, parts, options...)
	if err != nil {
		return "", model, AsError(err)
	}
	return text, model, nil
}
