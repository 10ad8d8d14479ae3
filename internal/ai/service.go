// Package ai orchestrates the chat assistant: context-bundle grounding,
// provider dispatch, and inference timeouts.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/zylker/failwatch/internal/diagnose"
	"github.com/zylker/failwatch/internal/metrics"
	"github.com/zylker/failwatch/pkg/models"
)

// ErrEmptyQuestion is returned when a chat request carries no question.
var ErrEmptyQuestion = errors.New("question is required")

const (
	maxQuestionBytes = 2000
	maxAnswerBytes   = 8000
)

// ChatAnswer is the assistant's response to one question.
type ChatAnswer struct {
	ID       uuid.UUID `json:"id"`
	Answer   string    `json:"answer"`
	Provider string    `json:"provider"`
	Model    string    `json:"model"`
}

// ChatService answers questions about failure records through the
// configured provider. The local side does no synthesis: it builds the
// deterministic context bundle and hands it to the remote model.
type ChatService struct {
	provider models.ChatProvider
	timeout  time.Duration
}

// NewChatService creates a ChatService.
func NewChatService(provider models.ChatProvider, timeout time.Duration) *ChatService {
	return &ChatService{provider: provider, timeout: timeout}
}

// Ask grounds the question on the record's context bundle and queries the
// provider, enforcing the inference timeout.
func (s *ChatService) Ask(ctx context.Context, rec models.FailureRecord, question string) (*ChatAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	req := models.ChatRequest{
		Record:   rec,
		Question: truncateString(question, maxQuestionBytes),
		Context:  diagnose.ContextBundle(rec),
	}

	chatCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.provider.Answer(chatCtx, req)
	if err != nil {
		metrics.ChatRequest(s.provider.Name(), "error")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
		}
		return nil, err
	}
	if strings.TrimSpace(result.Answer) == "" {
		metrics.ChatRequest(s.provider.Name(), "error")
		return nil, ErrInvalidResponse
	}
	metrics.ChatRequest(s.provider.Name(), "success")

	return &ChatAnswer{
		ID:       uuid.New(),
		Answer:   truncateString(result.Answer, maxAnswerBytes),
		Provider: s.provider.Name(),
		Model:    result.Model,
	}, nil
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
