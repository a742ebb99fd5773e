// Package textservice is the upstream capability paid calls are forwarded
// to: a prompt goes in, generated text comes out.
package textservice

import (
	"context"
	"fmt"
)

// Service processes a single prompt.
type Service interface {
	// Available reports whether the upstream is configured. Callers check it
	// before charging for a call.
	Available() bool
	Process(ctx context.Context, p Prompt) (string, error)
}

// Prompt is a single-turn request to the upstream model.
type Prompt struct {
	Text      string
	MaxTokens int64
}

const (
	summarizeTokens = 500
	defaultTokens   = 1000
)

// DefaultAnalysisType is used when an analyze request omits its type.
const DefaultAnalysisType = "general"

func SummarizePrompt(text string) Prompt {
	return Prompt{
		Text:      "Summarize this text concisely:\n\n" + text,
		MaxTokens: summarizeTokens,
	}
}

func TranslatePrompt(text, targetLanguage string) Prompt {
	return Prompt{
		Text:      fmt.Sprintf("Translate this text to %s. Only output the translation, nothing else:\n\n%s", targetLanguage, text),
		MaxTokens: defaultTokens,
	}
}

// AnalyzePrompt asks for a JSON document. analysisType is echoed back to
// the caller but does not change the prompt.
func AnalyzePrompt(text string) Prompt {
	return Prompt{
		Text: "Analyze this text. Provide: sentiment (positive/negative/neutral), key topics, " +
			"main entities, and a brief summary. Format as JSON.\n\nText:\n" + text,
		MaxTokens: defaultTokens,
	}
}

func SearchPrompt(query string) Prompt {
	return Prompt{
		Text: "Provide information about: " + query +
			"\n\nFormat your response as a helpful search result with key facts and relevant details.",
		MaxTokens: defaultTokens,
	}
}
