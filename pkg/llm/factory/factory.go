package factory

import (
	"fmt"

	"aivaidya-be/pkg/llm"
	"aivaidya-be/pkg/llm/gemini"
	"aivaidya-be/pkg/llm/openai"
)

// Settings carries what every supported backend may need. Only the block for
// the selected provider is read.
type Settings struct {
	Provider     string
	Gemini       gemini.Config
	GeminiPolicy llm.FallbackPolicy
	OpenAI       openai.Config
	OpenAIPolicy llm.FallbackPolicy
}

func NewLLMProvider(s Settings) (llm.LLMProvider, llm.FallbackPolicy, error) {
	switch s.Provider {
	case "", "gemini":
		return gemini.NewProvider(s.Gemini), s.GeminiPolicy, nil
	case "openai":
		return openai.NewProvider(s.OpenAI), s.OpenAIPolicy, nil
	default:
		return nil, llm.FallbackPolicy{}, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
