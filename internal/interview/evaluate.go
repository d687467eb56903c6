package interview

import (
	"context"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Evaluator scores one answer transcript in [0,1]. Scoring failures are
// recovered by the caller; the answer is persisted either way.
type Evaluator interface {
	Evaluate(ctx context.Context, text string) (float64, error)
}

// NewEvaluator returns the LLM-backed evaluator when an API key is
// configured, otherwise the deterministic lexicon fallback.
func NewEvaluator(apiKey, baseURL, model string) Evaluator {
	if apiKey == "" {
		return lexiconEvaluator{}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &llmEvaluator{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		fallback: lexiconEvaluator{},
	}
}

type llmEvaluator struct {
	client   *openai.Client
	model    string
	fallback lexiconEvaluator
}

const evalPrompt = "You score interview answers. Reply with only a number between 0 and 1 " +
	"rating the sentiment and overall quality of the following answer."

func (e *llmEvaluator) Evaluate(ctx context.Context, text string) (float64, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: evalPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   8,
		Temperature: 0,
	})
	if err != nil {
		return 0, err
	}
	if len(resp.Choices) == 0 {
		return e.fallback.Evaluate(ctx, text)
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(resp.Choices[0].Message.Content), 64)
	if err != nil {
		return e.fallback.Evaluate(ctx, text)
	}
	return clamp01(score), nil
}

// lexiconEvaluator is a small word-list sentiment heuristic. Deterministic,
// so tests and offline deployments get stable scores.
type lexiconEvaluator struct{}

var positiveWords = map[string]bool{
	"achieved": true, "built": true, "enjoy": true, "great": true, "improved": true,
	"launched": true, "led": true, "learned": true, "love": true, "passionate": true,
	"proud": true, "solved": true, "success": true, "successful": true, "team": true,
}

var negativeWords = map[string]bool{
	"bad": true, "blame": true, "boring": true, "failed": true, "hate": true,
	"impossible": true, "never": true, "problem": true, "quit": true, "terrible": true,
}

func (lexiconEvaluator) Evaluate(_ context.Context, text string) (float64, error) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0.5, nil
	}
	var pos, neg int
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()")
		if positiveWords[w] {
			pos++
		}
		if negativeWords[w] {
			neg++
		}
	}
	// Neutral baseline nudged by hit density.
	score := 0.5 + float64(pos-neg)/float64(len(words))*2
	return clamp01(score), nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// WordCount counts whitespace-separated tokens in a transcript.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
