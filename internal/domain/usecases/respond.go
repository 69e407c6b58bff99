package usecases

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/redteamshop/shopassist/internal/domain/entities"
	"github.com/redteamshop/shopassist/internal/domain/guard"
	"github.com/redteamshop/shopassist/internal/domain/ports"
)

// Canned user-facing messages. Every failure mode in the pipeline degrades to
// one of these; no error ever propagates past the component boundary.
const (
	MsgRephrase = "I'm sorry, I couldn't process your query. Please try rephrasing it."

	MsgNoInformation = "I don't have specific information about that product. " +
		"Please check our product catalog or contact support for more details."

	MsgGenerationTrouble = "I'm sorry, I'm having trouble generating a response right now. " +
		"Please try again later."

	MsgProcessingTrouble = "I'm sorry, I'm having trouble processing your request right now. " +
		"Please try again later."

	MsgTooManyRequests = "I'm receiving too many requests. " +
		"Please wait a moment before trying again."
)

// MsgUnavailable names the configured model so operators know what to start.
func MsgUnavailable(model string) string {
	return fmt.Sprintf("I'm sorry, the AI service is currently unavailable. "+
		"Please ensure Ollama is running with the %s model and try again.", model)
}

// systemPrompt frames the assistant's role for the generation backend.
const systemPrompt = `You are the Red Team Shop AI assistant specializing in cybersecurity merchandise.

Your role is to help customers with:
- Product information, specifications, and features
- Product recommendations based on security needs
- Best practices for using security merchandise

Guidelines:
- Always provide accurate, helpful information about products
- Be professional but friendly in your responses
- If you don't have specific information, say so politely
- Keep responses informative but concise`

// maxContextDocs bounds how many retrieved documents go into the prompt.
const maxContextDocs = 3

// ResponseGenerator assembles a grounded prompt and calls the generation
// backend, falling back to canned messages on any failure. Generate never
// returns an error to its caller.
type ResponseGenerator struct {
	llm            ports.GenerationService
	probe          ports.AvailabilityProbe
	maxInputLength int
	logger         *zap.Logger
}

// NewResponseGenerator creates a ResponseGenerator with injected dependencies.
func NewResponseGenerator(llm ports.GenerationService, probe ports.AvailabilityProbe, maxInputLength int, logger *zap.Logger) *ResponseGenerator {
	if maxInputLength <= 0 {
		maxInputLength = guard.DefaultMaxLength
	}
	return &ResponseGenerator{
		llm:            llm,
		probe:          probe,
		maxInputLength: maxInputLength,
		logger:         logger,
	}
}

// Generate produces a grounded answer for the query. Generation is never
// invoked without grounding context, and never while the backend probe
// reports the service down.
func (g *ResponseGenerator) Generate(ctx context.Context, query string, contextDocs []entities.ContextDocument) string {
	if !guard.Validate(query, g.maxInputLength) {
		return MsgRephrase
	}
	if len(contextDocs) == 0 {
		return MsgNoInformation
	}

	prompt := g.buildPrompt(query, contextDocs)

	if !g.probe.IsAvailable(ctx) {
		return MsgUnavailable(g.llm.Model())
	}

	answer, err := g.llm.Chat(ctx, prompt)
	if err != nil {
		// A failed call may mean the backend just went down; force the
		// next request to re-probe.
		g.probe.Invalidate()
		g.logger.Error("generation failed", zap.Error(err), zap.String("model", g.llm.Model()))
		return MsgGenerationTrouble
	}
	return answer
}

// buildPrompt combines system instructions, the top context documents and the
// query with an explicit instruction to answer only from the given context.
func (g *ResponseGenerator) buildPrompt(query string, contextDocs []entities.ContextDocument) string {
	docs := contextDocs
	if len(docs) > maxContextDocs {
		docs = docs[:maxContextDocs]
	}

	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nProduct Context:\n")
	for _, doc := range docs {
		sb.WriteString("Product Information: ")
		sb.WriteString(doc.Content)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Customer Query: ")
	sb.WriteString(query)
	sb.WriteString("\n\nPlease provide a helpful response about the product based only on the context provided. ")
	sb.WriteString("If the context doesn't contain relevant information, politely inform the customer.\n\nResponse:")
	return sb.String()
}
