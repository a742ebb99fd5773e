package server

import (
	"github.com/bytedance/sonic"

	"github.com/asterpay/x402/textservice"
	"github.com/asterpay/x402/types"
)

const (
	processingFailed = "AI processing failed"
	searchNote       = "Demo mode - using AI knowledge base"
)

type SummarizeRequest struct {
	Text string `json:"text" validate:"required"`
}

type TranslateRequest struct {
	Text           string `json:"text" validate:"required"`
	TargetLanguage string `json:"targetLanguage" validate:"required"`
}

type AnalyzeRequest struct {
	Text         string `json:"text" validate:"required"`
	AnalysisType string `json:"analysisType"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}

var summarize = operation[SummarizeRequest]{
	op:      types.OperationSummarize,
	missing: "Missing text parameter",
	failure: processingFailed,
	prompt: func(r SummarizeRequest) textservice.Prompt {
		return textservice.SummarizePrompt(r.Text)
	},
	result: func(_ SummarizeRequest, out string) map[string]any {
		return map[string]any{"summary": out}
	},
}

var translate = operation[TranslateRequest]{
	op:      types.OperationTranslate,
	missing: "Missing text or targetLanguage parameter",
	failure: processingFailed,
	prompt: func(r TranslateRequest) textservice.Prompt {
		return textservice.TranslatePrompt(r.Text, r.TargetLanguage)
	},
	result: func(r TranslateRequest, out string) map[string]any {
		return map[string]any{"translation": out, "targetLanguage": r.TargetLanguage}
	},
}

var analyze = operation[AnalyzeRequest]{
	op:      types.OperationAnalyze,
	missing: "Missing text parameter",
	failure: processingFailed,
	prompt: func(r AnalyzeRequest) textservice.Prompt {
		return textservice.AnalyzePrompt(r.Text)
	},
	result: func(r AnalyzeRequest, out string) map[string]any {
		kind := r.AnalysisType
		if kind == "" {
			kind = textservice.DefaultAnalysisType
		}
		return map[string]any{"analysis": parseAnalysis(out), "analysisType": kind}
	},
}

var search = operation[SearchRequest]{
	op:      types.OperationSearch,
	missing: "Missing query parameter",
	failure: "Search failed",
	prompt: func(r SearchRequest) textservice.Prompt {
		return textservice.SearchPrompt(r.Query)
	},
	result: func(r SearchRequest, out string) map[string]any {
		return map[string]any{"query": r.Query, "result": out, "note": searchNote}
	},
}

// parseAnalysis returns the model output as JSON when it is JSON, and
// wraps it as {"raw": out} otherwise.
func parseAnalysis(out string) any {
	var parsed any
	if err := sonic.UnmarshalString(out, &parsed); err != nil {
		return map[string]any{"raw": out}
	}
	return parsed
}
