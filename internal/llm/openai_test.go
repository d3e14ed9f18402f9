package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "scribe-ai/backend/internal/errors"
	"scribe-ai/backend/internal/model"
)

// sseServer returns a mock OpenAI-compatible endpoint that answers every
// chat-completions request with the given SSE events.
func sseServer(t *testing.T, events ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/chat/completions", r.URL.Path)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, event := range events {
			_, err := fmt.Fprintf(w, "data: %s\n\n", event)
			assert.NoError(t, err)
		}
		_, err := fmt.Fprint(w, "data: [DONE]\n\n")
		assert.NoError(t, err)
	}))
}

func drain(t *testing.T, reader StreamReader) []model.Delta {
	t.Helper()
	var deltas []model.Delta
	for {
		delta, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return deltas
		}
		require.NoError(t, err)
		deltas = append(deltas, delta)
	}
}

func TestOpenStreamDeliversContentDeltas(t *testing.T) {
	server := sseServer(t,
		`{"choices":[{"delta":{"content":"Hel"}}]}`,
		`{"choices":[{"delta":{"content":"lo"}}]}`,
	)
	defer server.Close()

	provider := NewOpenAIProvider(server.URL+"/v1", "test-key")
	reader, err := provider.OpenStream(context.Background(), &GenerateRequest{
		Model:    "gpt-oss",
		Messages: []model.Message{{Role: model.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	defer reader.Close()

	deltas := drain(t, reader)
	require.Len(t, deltas, 2)
	assert.Equal(t, "Hel", deltas[0].Content)
	assert.Equal(t, "lo", deltas[1].Content)
}

func TestOpenStreamDeliversToolCallFragments(t *testing.T) {
	server := sseServer(t,
		`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"create_note","arguments":"{\"ti"}}]}}]}`,
		`{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"tle\":\"x\"}"}}]}}]}`,
	)
	defer server.Close()

	provider := NewOpenAIProvider(server.URL+"/v1", "test-key")
	reader, err := provider.OpenStream(context.Background(), &GenerateRequest{
		Model:    "gpt-oss",
		Messages: []model.Message{{Role: model.RoleUser, Content: "make a note"}},
	})
	require.NoError(t, err)
	defer reader.Close()

	deltas := drain(t, reader)
	require.Len(t, deltas, 2)

	require.Len(t, deltas[0].ToolCallFragments, 1)
	first := deltas[0].ToolCallFragments[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "call_1", first.ID)
	assert.Equal(t, "create_note", first.Name)
	assert.Equal(t, `{"ti`, first.ArgumentsFragment)

	require.Len(t, deltas[1].ToolCallFragments, 1)
	assert.Equal(t, `tle":"x"}`, deltas[1].ToolCallFragments[0].ArgumentsFragment)
}

func TestOpenStreamServerErrorIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, err := w.Write([]byte(`{"error":{"message":"upstream down"}}`))
		assert.NoError(t, err)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(server.URL+"/v1", "test-key")
	_, err := provider.OpenStream(context.Background(), &GenerateRequest{
		Model:    "gpt-oss",
		Messages: []model.Message{{Role: model.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, app_errors.ErrStreamTransport)
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Grocery list"}}]}`))
		assert.NoError(t, err)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(server.URL+"/v1", "test-key")
	resp, err := provider.Complete(context.Background(), &GenerateRequest{
		Model:    "gpt-oss",
		Messages: []model.Message{{Role: model.RoleUser, Content: "title please"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Grocery list", resp.Content)
}

func TestConvertMessagesToolRoundTrip(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: "be helpful"},
		{Role: model.RoleUser, Content: "make a note"},
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{
			{ID: "call_1", Name: "create_note", Arguments: `{"title":"x"}`},
		}},
		{Role: model.RoleTool, ToolCallID: "call_1", Name: "create_note", Content: `{"success":true}`},
	}

	converted := convertMessages(messages)
	require.Len(t, converted, 4)

	assert.Equal(t, "system", converted[0].Role)
	require.Len(t, converted[2].ToolCalls, 1)
	assert.Equal(t, "call_1", converted[2].ToolCalls[0].ID)
	assert.Equal(t, "create_note", converted[2].ToolCalls[0].Function.Name)
	assert.Equal(t, "call_1", converted[3].ToolCallID)
	assert.Equal(t, "create_note", converted[3].Name)
}
