package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mithun-AM/Exam-allocation-system/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// ChatCompleter is the chat-completion surface the response generator and
// the query analyzer depend on.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// LLMService wraps the GigaChat client. A fresh generative model is built
// per call so concurrent requests never share a mutable SystemInstruction.
type LLMService struct {
	client *gigago.Client
	cfg    *config.GigaChatConfig
	logger *zap.Logger
}

func NewLLMService(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	return &LLMService{client: client, cfg: cfg, logger: logger}, nil
}

func (s *LLMService) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	model := s.client.GenerativeModel(s.cfg.Model)
	model.SystemInstruction = systemPrompt
	model.Temperature = 0.3

	resp, err := model.Generate(ctx, []gigago.Message{
		{Role: gigago.RoleUser, Content: userMessage},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (s *LLMService) Close() {
	s.client.Close()
}
