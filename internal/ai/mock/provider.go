package mock

import (
	"context"

	"github.com/zylker/failwatch/pkg/models"
)

// MockProvider satisfies models.ChatProvider for testing.
type MockProvider struct {
	Name_      string
	AnswerFunc func(ctx context.Context, req models.ChatRequest) (models.ChatResult, error)

	// LastRequest records the most recent request for assertions.
	LastRequest *models.ChatRequest
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Answer(ctx context.Context, req models.ChatRequest) (models.ChatResult, error) {
	m.LastRequest = &req
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, req)
	}
	return models.ChatResult{}, nil
}

// NewMockProvider returns a MockProvider with a sensible default response.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		AnswerFunc: func(_ context.Context, req models.ChatRequest) (models.ChatResult, error) {
			return models.ChatResult{
				Answer: "Mock answer grounded on the supplied failure context.",
				Model:  "mock-v1",
			}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		AnswerFunc: func(_ context.Context, _ models.ChatRequest) (models.ChatResult, error) {
			return models.ChatResult{}, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		AnswerFunc: func(ctx context.Context, _ models.ChatRequest) (models.ChatResult, error) {
			<-ctx.Done()
			return models.ChatResult{}, ctx.Err()
		},
	}
}

// Compile-time check that MockProvider implements ChatProvider.
var _ models.ChatProvider = (*MockProvider)(nil)
