// Package llm wraps an OpenAI-compatible chat API behind the two JSON
// response modes the trainer uses: a free-form JSON object mode and a
// schema-constrained compact mode for question generation.
package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rgfreitas/certtrainer/internal/llm/prompts"
	"github.com/rgfreitas/certtrainer/internal/model"
)

// ResponseFormat selects how the model is asked to shape its reply.
type ResponseFormat int

const (
	// FormatJSONObject requests a free-form JSON object.
	FormatJSONObject ResponseFormat = iota
	// FormatQuestionsCompact requests the compact question schema with
	// single-letter keys to cut completion tokens.
	FormatQuestionsCompact
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName string, maxTokens int) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:       openai.NewClientWithConfig(config),
		model:     modelName,
		maxTokens: maxTokens,
	}
}

// ChatJSON sends a system and user prompt and returns the raw response
// content plus prompt and completion token counts. The call respects ctx
// cancellation; any transport or non-success failure is returned as an
// error.
func (c *Client) ChatJSON(ctx context.Context, systemPrompt, userPrompt string, format ResponseFormat) (string, int, int, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.2,
	}
	switch format {
	case FormatQuestionsCompact:
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type:       openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: compactQuestionSchema,
		}
	default:
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", 0, 0, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", 0, 0, fmt.Errorf("LLM returned no choices")
	}

	return resp.Choices[0].Message.Content, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, nil
}

// GenerateQuestions asks the model for count new questions for a track
// using the compact response format and normalizes the reply into full
// Question values. Malformed items are dropped silently; a transport
// failure or an undecodable reply is returned as an error.
func (c *Client) GenerateQuestions(ctx context.Context, track string, count int) ([]model.Question, int, int, error) {
	content, tokIn, tokOut, err := c.ChatJSON(ctx,
		prompts.ExamSystem(),
		prompts.ExamUser(track, count),
		FormatQuestionsCompact,
	)
	if err != nil {
		return nil, tokIn, tokOut, err
	}

	questions, err := ParseCompactQuestions(content)
	if err != nil {
		return nil, tokIn, tokOut, fmt.Errorf("decode generated questions: %w", err)
	}
	return questions, tokIn, tokOut, nil
}

// Ping verifies the endpoint is reachable and authorized.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM health check: %w", err)
	}
	return nil
}
