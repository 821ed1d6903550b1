package answer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/raglet/raglet/internal/index"
)

// previewChars bounds how much of each retrieved chunk is injected into the
// prompt. 300 keeps the context section readable for small local models.
const previewChars = 300

// appendTimeout bounds the background write-back of a produced answer.
const appendTimeout = 30 * time.Second

// Retriever is the slice of the vector index the orchestrator reads.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]index.ScoredRecord, error)
	Append(ctx context.Context, content, source string) error
}

// Result is a produced answer and the strategy that produced it.
type Result struct {
	Reply    string
	Strategy string
}

// Orchestrator wires retrieval, routing, and strategy execution for one
// question at a time.
type Orchestrator struct {
	retriever  Retriever
	strategies Registry
	route      func(string) string
	topK       int
	logger     *slog.Logger

	// appendWG lets tests and shutdown wait for in-flight write-backs.
	appendWG sync.WaitGroup
}

// NewOrchestrator creates an Orchestrator. topK defaults to 5 when
// non-positive; routeFn defaults to Route when nil.
func NewOrchestrator(retriever Retriever, strategies Registry, routeFn func(string) string, topK int) *Orchestrator {
	if topK <= 0 {
		topK = 5
	}
	if routeFn == nil {
		routeFn = Route
	}
	return &Orchestrator{
		retriever:  retriever,
		strategies: strategies,
		route:      routeFn,
		topK:       topK,
		logger:     slog.Default(),
	}
}

// Answer produces a reply for the question. When useRetrieval is set and the
// index is ready, the top-K chunks (truncated previews) become the prompt
// context; an unready index degrades to an empty context rather than failing.
// The reply is written back into the index in the background; that write is
// best-effort and never affects the returned answer.
func (o *Orchestrator) Answer(ctx context.Context, question string, useRetrieval bool) (Result, error) {
	contextText := ""
	if useRetrieval {
		contextText = o.retrieveContext(ctx, question)
	}

	name := o.route(question)
	strategy := o.strategies.Get(name)

	reply, err := strategy.Run(ctx, question, contextText)
	if err != nil {
		return Result{}, err
	}

	o.appendWG.Add(1)
	go func() {
		defer o.appendWG.Done()
		appendCtx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		defer cancel()
		if err := o.retriever.Append(appendCtx, reply, index.ChatSource); err != nil {
			o.logger.Warn("write-back of answer failed", "error", err)
		}
	}()

	return Result{Reply: reply, Strategy: name}, nil
}

// Wait blocks until all background write-backs have finished. Called on
// shutdown and by tests.
func (o *Orchestrator) Wait() {
	o.appendWG.Wait()
}

func (o *Orchestrator) retrieveContext(ctx context.Context, question string) string {
	records, err := o.retriever.Query(ctx, question, o.topK)
	if errors.Is(err, index.ErrNotReady) {
		o.logger.Debug("index not ready, answering without context")
		return ""
	}
	if err != nil {
		o.logger.Warn("retrieval failed, answering without context", "error", err)
		return ""
	}

	var sb strings.Builder
	for _, rec := range records {
		preview := rec.Content
		if runes := []rune(preview); len(runes) > previewChars {
			preview = string(runes[:previewChars])
		}
		if sb.Len() > 0 {
			sb.WriteString("\n---\n")
		}
		sb.WriteString("[" + rec.Source + "] ")
		sb.WriteString(preview)
	}
	return sb.String()
}
