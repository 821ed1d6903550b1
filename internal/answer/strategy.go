// Package answer turns a user question into a reply: it retrieves context
// from the vector index, routes the question to a response strategy, invokes
// the language model, and feeds the reply back into the index.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/raglet/raglet/internal/ollama"
)

// Completer is the language-model capability a strategy delegates to.
type Completer interface {
	Chat(ctx context.Context, model string, messages []ollama.Message) (string, error)
}

// Strategy names after routing.
const (
	StrategyGeneral = "general"
	StrategyCoding  = "coding"
)

// Strategy produces an answer for a question given retrieved context.
// Implementations differ only in their instruction template.
type Strategy interface {
	Run(ctx context.Context, question, context_ string) (string, error)
}

// promptStrategy wraps the completer with a fixed system instruction.
type promptStrategy struct {
	completer   Completer
	model       string
	instruction string
}

func (s *promptStrategy) Run(ctx context.Context, question, contextText string) (string, error) {
	user := question
	if contextText != "" {
		user = fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)
	}

	reply, err := s.completer.Chat(ctx, s.model, []ollama.Message{
		{Role: "system", Content: s.instruction},
		{Role: "user", Content: user},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

const generalInstruction = `You are a helpful assistant. Answer the question directly and concisely. When context is provided, ground your answer in it and say so when it does not cover the question.`

const codingInstruction = `You are an expert programmer. Answer with working, idiomatic code where appropriate, and explain briefly. When context is provided, prefer APIs and conventions it shows.`

// Registry maps strategy names to implementations. Adding a strategy is
// additive: register it and teach the router when to pick it.
type Registry map[string]Strategy

// NewRegistry builds the default strategy set over the given completer and
// chat model.
func NewRegistry(completer Completer, model string) Registry {
	return Registry{
		StrategyGeneral: &promptStrategy{completer: completer, model: model, instruction: generalInstruction},
		StrategyCoding:  &promptStrategy{completer: completer, model: model, instruction: codingInstruction},
	}
}

// Get returns the named strategy, falling back to the general one for
// unknown names so a router bug can never fail a request.
func (r Registry) Get(name string) Strategy {
	if s, ok := r[name]; ok {
		return s
	}
	return r[StrategyGeneral]
}
