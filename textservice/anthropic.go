package textservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/asterpay/x402/logger"
	"github.com/asterpay/x402/metrics"
	"github.com/asterpay/x402/types"
)

const DefaultModel = "claude-3-haiku-20240307"

// ErrUnavailable is returned by Process when no API key was configured.
var ErrUnavailable = errors.New("text service unavailable")

type messagesAPI interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type Option func(*AnthropicService)

func WithLogger(l logger.Logger) Option {
	return func(s *AnthropicService) {
		s.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *AnthropicService) {
		s.metrics = r
	}
}

var _ Service = (*AnthropicService)(nil)

// AnthropicService calls the Anthropic Messages API.
type AnthropicService struct {
	messages messagesAPI
	model    string

	logger  logger.Logger
	metrics metrics.Recorder
}

// NewAnthropicService returns a service for model. An empty apiKey yields
// a service that reports itself unavailable.
func NewAnthropicService(apiKey, model string, opts ...Option) *AnthropicService {
	s := newService(nil, model, opts...)
	if apiKey != "" {
		client := anthropic.NewClient(option.WithAPIKey(apiKey))
		s.messages = &client.Messages
	}
	return s
}

func newService(api messagesAPI, model string, opts ...Option) *AnthropicService {
	if model == "" {
		model = DefaultModel
	}
	s := &AnthropicService{
		messages: api,
		model:    model,
		logger:   logger.NoopLogger{},
		metrics:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AnthropicService) Available() bool {
	return s.messages != nil
}

// Process sends p as a single user message and returns the text of the
// first content block, or "" when that block is not text.
func (s *AnthropicService) Process(ctx context.Context, p Prompt) (string, error) {
	if !s.Available() {
		return "", ErrUnavailable
	}

	labels := map[string]string{"operation": "messages"}
	start := time.Now()
	msg, err := s.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: p.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.Text)),
		},
	})
	s.metrics.ObserveLatency(metrics.UpstreamCall, time.Since(start), labels)
	if err != nil {
		s.metrics.IncCounter(metrics.UpstreamError, labels)
		s.logger.Error("upstream call failed", map[string]any{"model": s.model, "error": err})
		return "", &types.X402Error{
			Code:    types.ErrUpstreamFailure,
			Message: fmt.Sprintf("upstream call failed: %v", err),
		}
	}

	if len(msg.Content) == 0 || msg.Content[0].Type != "text" {
		return "", nil
	}
	return msg.Content[0].Text, nil
}
