// Package openai generates grounded answers through an OpenAI-compatible
// chat completion endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/ekipteam/ekip/internal/core/domain"
	"github.com/ekipteam/ekip/internal/infrastructure/resilience"
)

const (
	DefaultModel = "gpt-4o-mini"

	defaultTemperature = 0.2
)

type Client struct {
	api      *goopenai.Client
	model    string
	executor *resilience.Executor
}

// New fails fast on a missing API key so misconfiguration surfaces at
// startup instead of on the first search.
func New(apiKey, baseURL, model string, executor *resilience.Executor) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, domain.WrapError(domain.ErrConfiguration, "init llm client",
			errors.New("api key is empty"))
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Client{
		api:      goopenai.NewClientWithConfig(cfg),
		model:    model,
		executor: executor,
	}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var answer string
	err := c.executor.Execute(ctx, "llm.generate", func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: defaultTemperature,
			Messages: []goopenai.ChatCompletionMessage{
				{Role: goopenai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("completion returned no choices")
		}
		answer = resp.Choices[0].Message.Content
		return nil
	}, classifyAPIError)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

func classifyAPIError(err error) resilience.Outcome {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		retryable := apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
		return resilience.Outcome{Retryable: retryable, RecordFailure: retryable}
	}
	return resilience.Outcome{Retryable: true, RecordFailure: true}
}
