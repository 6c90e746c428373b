package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyAnswer = errors.New("model returned an empty answer")

const answerSystemPrompt = `You are a knowledgeable assistant that answers questions using the document excerpts you are given.
Answer directly and confidently from the excerpts, combining information across sources when it helps.
Prefer a best-effort answer grounded in the excerpts over saying there is not enough information.
Only say the documents do not cover the question when the excerpts are clearly unrelated to it.
Be concise but complete.`

// AnswerGenerator turns a question plus retrieved context into a grounded answer.
type AnswerGenerator struct {
	provider    LLMProvider
	temperature float64
	maxTokens   int
}

func NewAnswerGenerator(provider LLMProvider, maxTokens int) *AnswerGenerator {
	return &AnswerGenerator{
		provider:    provider,
		temperature: 0.7,
		maxTokens:   maxTokens,
	}
}

func (g *AnswerGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	history := []Message{
		{Role: "system", Content: answerSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer the question using the context above.", contextText, question)},
	}

	answer, err := g.provider.Chat(ctx, history, WithTemperature(g.temperature), WithMaxTokens(g.maxTokens))
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}
