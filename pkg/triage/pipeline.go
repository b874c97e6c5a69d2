package triage

import (
	"context"
	"net/http"
	"strings"

	"aivaidya-be/pkg/llm"
)

const (
	MsgDescribeSymptoms = "Please describe your symptoms."

	selfTestPrompt = "Reply with the single word OK."
)

// Request is one user submission.
type Request struct {
	Symptoms string
	Images   []Image
}

// Diagnosis is the outcome of a successful request.
type Diagnosis struct {
	Result Result
	Model  string
	Images int // images actually forwarded
}

type Diagnoser struct {
	provider  llm.LLMProvider
	policy    llm.FallbackPolicy
	maxImages int
	options   []llm.Option
}

func NewDiagnoser(provider llm.LLMProvider, policy llm.FallbackPolicy, maxImages int, options ...llm.Option) *Diagnoser {
	if maxImages <= 0 {
		maxImages = MaxImages
	}
	return &Diagnoser{
		provider:  provider,
		policy:    policy,
		maxImages: maxImages,
		options:   options,
	}
}

func (d *Diagnoser) ProviderName() string {
	return d.provider.Name()
}

// Diagnose yields exactly one Diagnosis or one *llm.Error. Blank symptoms and
// missing credentials fail before any upstream call.
func (d *Diagnoser) Diagnose(ctx context.Context, req Request) (*Diagnosis, error) {
	if strings.TrimSpace(req.Symptoms) == "" {
		return nil, llm.NewError(llm.KindValidation, http.StatusBadRequest, MsgDescribeSymptoms)
	}
	if err := d.provider.CheckConfig(); err != nil {
		return nil, llm.AsError(err)
	}

	imageParts := EncodeImages(req.Images, d.maxImages)
	parts := make([]llm.Part, 0, len(imageParts)+1)
	parts = append(parts, llm.TextPart(BuildPrompt(req.Symptoms)))
	parts = append(parts, imageParts...)

	options := append([]llm.Option{llm.WithJSONResponse(true)}, d.options...)
	text, model, err := llm.Invoke(ctx, d.provider, d.policy, parts, options...)
	if err != nil {
		return nil, err
	}

	return &Diagnosis{
		Result: Interpret(text),
		Model:  model,
		Images: len(imageParts),
	}, nil
}

// SelfTest checks configuration and reachability, returning the model's echo.
func (d *Diagnoser) SelfTest(ctx context.Context) (string, string, error) {
	if err := d.provider.CheckConfig(); err != nil {
		return "", "", llm.AsError(err)
	}

	options := append(append([]llm.Option{}, d.options...), llm.WithJSONResponse(false), llm.WithMaxTokens(8))
	text, model, err := llm.Invoke(ctx, d.provider, d.policy, []llm.Part{llm.TextPart(selfTestPrompt)}, options...)
	if err != nil {
		return "", model, err
	}
	return strings.TrimSpace(text), model, nil
}
