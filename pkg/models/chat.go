package models

import "context"

// ChatProvider is the core interface that all LLM integrations must
// implement. Never call specific providers directly — always inject this
// interface.
type ChatProvider interface {
	// Answer responds to a question about a failure record, grounded on
	// the pre-built context bundle.
	Answer(ctx context.Context, req ChatRequest) (ChatResult, error)
	// Name returns the provider identifier (e.g., "ollama", "anthropic").
	Name() string
}

// ChatRequest is the input to a chat operation. Context is the flat
// context bundle produced by the diagnosis composer; providers must treat
// it as grounding material, not user input.
type ChatRequest struct {
	Record   FailureRecord
	Question string
	Context  string
}

// SystemPrompt is the shared instruction sent to every chat provider.
const SystemPrompt = "You are a failure-log assistant for an operations dashboard. " +
	"Answer questions about the failure record using only the supplied context. " +
	"Be concise; say so plainly when the context does not contain the answer."

// Prompt renders the user-side message: the grounding context followed by
// the question.
func (r ChatRequest) Prompt() string {
	return r.Context + "\n\nQuestion: " + r.Question
}

// ChatResult is a provider's answer.
type ChatResult struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
}
