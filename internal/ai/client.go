// Package ai drafts challenge descriptions with a chat completion model.
package ai

import (
	"context"
	"fmt"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/sashabaranov/go-openai"
	"log/slog"
	"strings"
)

// ErrEmptyCompletion is returned when the model answers without any text.
var ErrEmptyCompletion = errors.NewSentinel("empty completion")

const (
	maxTokens        = 60
	maxDescriptionSz = 120
)

const systemPrompt = `You write the one-line descriptions of a daily comic book puzzle in which the player connects
two Marvel characters through shared comic appearances. Describe both characters by an epithet instead of their names,
for example "Connect the symbiote anti-hero to the merc with a mouth". Answer with the description only.`

// DescriptionWriter drafts challenge descriptions.
type DescriptionWriter struct {
	client *openai.Client
	model  string
}

// NewDescriptionWriter creates a DescriptionWriter. baseURL may be empty to use the default API endpoint.
func NewDescriptionWriter(apiKey, baseURL string) *DescriptionWriter {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &DescriptionWriter{
		client: openai.NewClientWithConfig(config),
		model:  openai.GPT4oMini,
	}
}

// Describe drafts a description for a challenge from start to end.
func (w *DescriptionWriter) Describe(
	ctx context.Context,
	start, end string,
	difficulty models.Difficulty,
) (string, error) {
	completion, err := w.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     w.model,
			MaxTokens: maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{
					Role: openai.ChatMessageRoleUser,
					Content: fmt.Sprintf("Start: %s\nEnd: %s\nDifficulty: %s (%s)",
						start, end, difficulty, difficulty.Description()),
				},
			},
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", errors.Wrap(ErrEmptyCompletion, "no choices")
	}
	description := cleanDescription(completion.Choices[0].Message.Content)
	if description == "" {
		return "", errors.Wrap(ErrEmptyCompletion, "blank description", slog.String("model", completion.Model))
	}
	return description, nil
}

// cleanDescription trims quotes, whitespace and trailing punctuation models like to add.
func cleanDescription(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "\"'“” ")
	s = strings.TrimRight(s, ".")
	if runes := []rune(s); len(runes) > maxDescriptionSz {
		s = strings.TrimSpace(string(runes[:maxDescriptionSz]))
	}
	return s
}
