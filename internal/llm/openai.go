package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	app_errors "scribe-ai/backend/internal/errors"
	"scribe-ai/backend/internal/model"
)

type openAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a Provider backed by an OpenAI-compatible
// chat-completions endpoint (OpenAI, OpenRouter, Ollama's /v1, etc.).
func NewOpenAIProvider(baseURL, apiKey string) Provider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &openAIProvider{client: openai.NewClientWithConfig(config)}
}

func (p *openAIProvider) OpenStream(ctx context.Context, req *GenerateRequest) (StreamReader, error) {
	chatReq := p.buildRequest(req)
	chatReq.Stream = true

	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	return &openAIStreamReader{stream: stream}, nil
}

func (p *openAIProvider) Complete(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, p.buildRequest(req))
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion response", app_errors.ErrStreamTransport)
	}
	return &GenerateResponse{Content: resp.Choices[0].Message.Content}, nil
}

func (p *openAIProvider) buildRequest(req *GenerateRequest) openai.ChatCompletionRequest {
	chatReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: convertMessages(req.Messages),
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = convertTools(req.Tools)
	}
	return chatReq
}

func convertMessages(messages []model.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		oaiMsg := openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
		if msg.Role == model.RoleTool {
			oaiMsg.ToolCallID = msg.ToolCallID
			oaiMsg.Name = msg.Name
		}
		if len(msg.ToolCalls) > 0 {
			oaiMsg.ToolCalls = make([]openai.ToolCall, len(msg.ToolCalls))
			for i, tc := range msg.ToolCalls {
				oaiMsg.ToolCalls[i] = openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				}
			}
		}
		result = append(result, oaiMsg)
	}
	return result
}

func convertTools(tools []model.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return result
}

type openAIStreamReader struct {
	stream *openai.ChatCompletionStream
}

func (r *openAIStreamReader) Next() (model.Delta, error) {
	resp, err := r.stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.Delta{Done: true}, io.EOF
		}
		return model.Delta{}, classifyTransportErr(err)
	}

	if len(resp.Choices) == 0 {
		return model.Delta{}, nil
	}

	choice := resp.Choices[0]
	delta := model.Delta{
		Content:   choice.Delta.Content,
		Reasoning: choice.Delta.ReasoningContent,
	}

	for _, tc := range choice.Delta.ToolCalls {
		index := 0
		if tc.Index != nil {
			index = *tc.Index
		}
		delta.ToolCallFragments = append(delta.ToolCallFragments, model.ToolCallFragment{
			Index:             index,
			ID:                tc.ID,
			Name:              tc.Function.Name,
			ArgumentsFragment: tc.Function.Arguments,
		})
	}

	return delta, nil
}

func (r *openAIStreamReader) Close() error {
	r.stream.Close()
	return nil
}

// classifyTransportErr wraps transient failures with ErrStreamTransport so the
// retry layer can distinguish them from permanent ones. Context cancellation
// and 4xx API errors (other than 408 and 429) pass through unwrapped.
func classifyTransportErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", app_errors.ErrTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode >= 500,
			apiErr.HTTPStatusCode == http.StatusTooManyRequests,
			apiErr.HTTPStatusCode == http.StatusRequestTimeout:
			return fmt.Errorf("%w: %w", app_errors.ErrStreamTransport, err)
		default:
			return err
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", app_errors.ErrStreamTransport, err)
	}

	// Connection resets and unexpected disconnects surface as plain errors
	// from the SDK; treat anything unclassified as transport.
	return fmt.Errorf("%w: %w", app_errors.ErrStreamTransport, err)
}
