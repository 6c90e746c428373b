package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProvider struct {
	history []Message
	options *Options
	reply   string
	err     error
}

func (r *recordingProvider) Chat(_ context.Context, history []Message, opts ...Option) (string, error) {
	r.history = history
	r.options = ApplyOptions(opts...)
	return r.reply, r.err
}

func (r *recordingProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return r.Chat(ctx, []Message{{Role: "user", Content: prompt}}, opts...)
}

func TestAnswerGenerator_BuildsGroundedPrompt(t *testing.T) {
	p := &recordingProvider{reply: "  The refund window is 30 days.  "}
	g := NewAnswerGenerator(p, 500)

	answer, err := g.Generate(context.Background(), "How long is the refund window?", "Source 1 (policy.pdf):\nRefunds within 30 days.")
	require.NoError(t, err)

	assert.Equal(t, "The refund window is 30 days.", answer)
	require.Len(t, p.history, 2)
	assert.Equal(t, "system", p.history[0].Role)
	assert.Contains(t, p.history[1].Content, "Refunds within 30 days.")
	assert.Contains(t, p.history[1].Content, "Question: How long is the refund window?")
	assert.Equal(t, 0.7, p.options.Temperature)
	assert.Equal(t, 500, p.options.MaxTokens)
}

func TestAnswerGenerator_PropagatesErrors(t *testing.T) {
	g := NewAnswerGenerator(&recordingProvider{err: errors.New("rate limited")}, 100)
	_, err := g.Generate(context.Background(), "q", "c")
	assert.EqualError(t, err, "rate limited")

	g = NewAnswerGenerator(&recordingProvider{reply: "   "}, 100)
	_, err = g.Generate(context.Background(), "q", "c")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestApplyOptions_Defaults(t *testing.T) {
	o := ApplyOptions(WithModel("m"))
	assert.Equal(t, 0.7, o.Temperature)
	assert.Equal(t, "m", o.Model)
	assert.Zero(t, o.MaxTokens)
}
