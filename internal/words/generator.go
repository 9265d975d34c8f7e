// internal/words/generator.go
package words

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jason-s-yu/babo/internal/models"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	DefaultModel   = openai.GPT4oMini
	DefaultTimeout = 8 * time.Second

	maxWordRunes = 20
)

const systemPrompt = "너는 바보 게임의 출제자다. 사용자가 주는 카테고리에 속하면서 서로 헷갈리기 쉬운 한국어 단어 두 개를 골라라. " +
	"두 단어는 같은 카테고리여야 하고 서로 달라야 한다. " +
	"'등반'과 '클라이밍'처럼 같은 뜻의 번역어나 외래어 쌍은 안 된다. " +
	"다른 말 없이 JSON 객체 하나로만 답하라: {\"wordA\": \"단어1\", \"wordB\": \"단어2\"}"

// ChatCompleter is the slice of the OpenAI client the generator uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator asks a chat model for a pair of confusable words in a category.
type Generator struct {
	client  ChatCompleter
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// GeneratorConfig holds the tunables of a Generator. Zero values fall back to defaults.
type GeneratorConfig struct {
	Model   string
	Timeout time.Duration
	// RPS and Burst bound process-wide calls; RPS <= 0 disables limiting.
	RPS   float64
	Burst int
}

// NewOpenAIGenerator builds a generator against the OpenAI API with the given key.
func NewOpenAIGenerator(apiKey string, cfg GeneratorConfig) *Generator {
	return NewGenerator(openai.NewClient(apiKey), cfg)
}

func NewGenerator(client ChatCompleter, cfg GeneratorConfig) *Generator {
	g := &Generator{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	return g
}

// Pair calls the model once and validates its answer.
func (g *Generator) Pair(ctx context.Context, category string) (models.WordPair, error) {
	if g.limiter != nil && !g.limiter.Allow() {
		return models.WordPair{}, ErrRateLimited
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "카테고리: " + category},
		},
		Temperature: 1.0,
		MaxTokens:   100,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return models.WordPair{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.WordPair{}, ErrEmptyResponse
	}
	return parsePair(category, resp.Choices[0].Message.Content)
}

// parsePair validates the model's JSON answer.
func parsePair(category, content string) (models.WordPair, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.WordPair{}, ErrEmptyResponse
	}

	var raw struct {
		WordA any `json:"wordA"`
		WordB any `json:"wordB"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return models.WordPair{}, fmt.Errorf("%w: %v", ErrMalformedPair, err)
	}
	a, okA := raw.WordA.(string)
	b, okB := raw.WordB.(string)
	if !okA || !okB {
		return models.WordPair{}, fmt.Errorf("%w: wordA and wordB must be strings", ErrMalformedPair)
	}
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if err := validWords(a, b); err != nil {
		return models.WordPair{}, err
	}
	return models.WordPair{Category: category, WordA: a, WordB: b}, nil
}

// validWords is a best-effort screen; it cannot tell a real translation pair apart.
func validWords(a, b string) error {
	switch {
	case a == "" || b == "":
		return fmt.Errorf("%w: empty word", ErrMalformedPair)
	case a == b:
		return fmt.Errorf("%w: identical words", ErrMalformedPair)
	case utf8.RuneCountInString(a) > maxWordRunes || utf8.RuneCountInString(b) > maxWordRunes:
		return fmt.Errorf("%w: word too long", ErrMalformedPair)
	case strings.ContainsAny(a+b, "\n\r\t"):
		return fmt.Errorf("%w: multi-line word", ErrMalformedPair)
	case isHangul(a) != isHangul(b):
		return fmt.Errorf("%w: words are in different scripts", ErrMalformedPair)
	}
	return nil
}

func isHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}
