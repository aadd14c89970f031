package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const defaultTimeout = 30 * time.Second

// ErrMissingAPIKey is returned when message generation is requested without credentials.
var ErrMissingAPIKey = errors.New("API key not set, please set it first: hgc config set api_key YOUR_API_KEY")

// Options configures a Client.
type Options struct {
	APIKey  string
	APIBase string
	Timeout time.Duration
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client generates commit messages with an OpenAI-compatible chat API.
type Client struct {
	chat    chatCompleter
	timeout time.Duration
}

// NewClient creates a Client.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientConfig := openai.DefaultConfig(opts.APIKey)
	if opts.APIBase != "" {
		clientConfig.BaseURL = opts.APIBase
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{chat: openai.NewClientWithConfig(clientConfig), timeout: timeout}, nil
}

// GenerateCommitMessage asks model for a commit message answering prompt.
func (c *Client) GenerateCommitMessage(prompt string, model string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: "You are a professional commit message generator, helping developers write commit " +
				"messages that comply with the Conventional Commits specification.",
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		},
	}

	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call LLM: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("LLM returned empty response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
