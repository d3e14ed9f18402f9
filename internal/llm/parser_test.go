package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribe-ai/backend/internal/model"
)

func fragment(index int, id, name, args string) model.Delta {
	return model.Delta{ToolCallFragments: []model.ToolCallFragment{{
		Index:             index,
		ID:                id,
		Name:              name,
		ArgumentsFragment: args,
	}}}
}

func TestParserAccumulatesContent(t *testing.T) {
	p := NewStreamParser()
	p.Feed(model.Delta{Content: "Hello"})
	p.Feed(model.Delta{Content: ", "})
	p.Feed(model.Delta{Content: "world"})

	result := p.Finish()
	assert.Equal(t, "Hello, world", result.Content)
	assert.Empty(t, result.ToolCalls)
	assert.Empty(t, result.Reasoning)
}

func TestParserKeepsReasoningSeparate(t *testing.T) {
	p := NewStreamParser()
	p.Feed(model.Delta{Reasoning: "thinking about "})
	p.Feed(model.Delta{Reasoning: "folders", Content: "Done."})

	result := p.Finish()
	assert.Equal(t, "Done.", result.Content)
	assert.Equal(t, "thinking about folders", result.Reasoning)
}

func TestParserAssemblesFragmentedToolCall(t *testing.T) {
	p := NewStreamParser()
	p.Feed(fragment(0, "call_abc", "create_note", `{"title":`))
	p.Feed(fragment(0, "", "", `"Groceries",`))
	p.Feed(fragment(0, "", "", `"content":"milk"}`))

	result := p.Finish()
	require.Len(t, result.ToolCalls, 1)
	tc := result.ToolCalls[0]
	assert.Equal(t, "call_abc", tc.ID)
	assert.Equal(t, "create_note", tc.Name)
	assert.Equal(t, "Groceries", tc.Args["title"])
	assert.Equal(t, "milk", tc.Args["content"])
	assert.JSONEq(t, `{"title":"Groceries","content":"milk"}`, tc.Arguments)
	assert.Zero(t, result.Dropped)
}

func TestParserNeverSkipsCoPresentFields(t *testing.T) {
	// One delta carrying content, reasoning, and a tool-call fragment at
	// once: all three must be processed.
	p := NewStreamParser()
	p.Feed(model.Delta{
		Content:   "Creating the note now.",
		Reasoning: "user wants a note",
		ToolCallFragments: []model.ToolCallFragment{{
			Index: 0, ID: "call_1", Name: "create_note", ArgumentsFragment: `{"title":"x"}`,
		}},
	})

	result := p.Finish()
	assert.Equal(t, "Creating the note now.", result.Content)
	assert.Equal(t, "user wants a note", result.Reasoning)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "create_note", result.ToolCalls[0].Name)
}

func TestParserInterleavedToolCalls(t *testing.T) {
	p := NewStreamParser()
	p.Feed(fragment(0, "call_a", "create_folder", `{"name":`))
	p.Feed(fragment(1, "call_b", "create_note", `{"title":`))
	p.Feed(fragment(0, "", "", `"Recipes"}`))
	p.Feed(fragment(1, "", "", `"Pasta"}`))

	result := p.Finish()
	require.Len(t, result.ToolCalls, 2)
	assert.Equal(t, "create_folder", result.ToolCalls[0].Name)
	assert.Equal(t, "Recipes", result.ToolCalls[0].Args["name"])
	assert.Equal(t, "create_note", result.ToolCalls[1].Name)
	assert.Equal(t, "Pasta", result.ToolCalls[1].Args["title"])
}

func TestParserIDAndNameFirstWriteWins(t *testing.T) {
	p := NewStreamParser()
	p.Feed(fragment(0, "call_first", "create_note", `{`))
	p.Feed(fragment(0, "call_second", "delete_note", `"title":"x"}`))

	result := p.Finish()
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "call_first", result.ToolCalls[0].ID)
	assert.Equal(t, "create_note", result.ToolCalls[0].Name)
}

func TestParserSynthesizesMissingID(t *testing.T) {
	p := NewStreamParser()
	p.Feed(fragment(2, "", "search_notes", `{"query":"go"}`))

	result := p.Finish()
	require.Len(t, result.ToolCalls, 1)
	assert.Contains(t, result.ToolCalls[0].ID, "call_2_")
}

func TestParserToolCallsOrderedByIndex(t *testing.T) {
	p := NewStreamParser()
	p.Feed(fragment(1, "b", "second", `{}`))
	p.Feed(fragment(0, "a", "first", `{}`))

	result := p.Finish()
	require.Len(t, result.ToolCalls, 2)
	assert.Equal(t, "first", result.ToolCalls[0].Name)
	assert.Equal(t, "second", result.ToolCalls[1].Name)
}

func TestParserDropsUnparseableCall(t *testing.T) {
	p := NewStreamParser()
	p.Feed(fragment(0, "bad", "create_note", `{"title": "unterminated`))
	p.Feed(fragment(1, "good", "list_folders", `{}`))

	result := p.Finish()
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "list_folders", result.ToolCalls[0].Name)
	assert.Equal(t, 1, result.Dropped)
}

func TestParserEmptyArgumentsMeansEmptyObject(t *testing.T) {
	p := NewStreamParser()
	p.Feed(fragment(0, "call_x", "list_folders", ""))

	result := p.Finish()
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "{}", result.ToolCalls[0].Arguments)
	assert.Empty(t, result.ToolCalls[0].Args)
}

func TestParserMissingTrailingBraceRepairedAtFinish(t *testing.T) {
	p := NewStreamParser()
	p.Feed(fragment(0, "call_x", "create_note", `{"title":"Notes"`))

	result := p.Finish()
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "Notes", result.ToolCalls[0].Args["title"])
}

func TestParserNestedObjectsCompleteOnlyAtOuterClose(t *testing.T) {
	p := NewStreamParser()
	p.Feed(fragment(0, "call_x", "update_note", `{"patch":{"title":"a"`))
	p.Feed(fragment(0, "", "", `}`))
	p.Feed(fragment(0, "", "", `,"id":"n1"}`))

	result := p.Finish()
	require.Len(t, result.ToolCalls, 1)
	args := result.ToolCalls[0].Args
	assert.Equal(t, "n1", args["id"])
	patch, ok := args["patch"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a", patch["title"])
}

func TestSafeParseArgs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
		ok   bool
	}{
		{"empty", "", map[string]any{}, true},
		{"whitespace", "  \n ", map[string]any{}, true},
		{"plain object", `{"a":1}`, map[string]any{"a": float64(1)}, true},
		{"double encoded", `"{\"a\":1}"`, map[string]any{"a": float64(1)}, true},
		{"missing opening brace", `"a":1}`, map[string]any{"a": float64(1)}, true},
		{"missing closing brace", `{"a":1`, map[string]any{"a": float64(1)}, true},
		{"concatenated objects", `{"a":1},{"b":2}`, map[string]any{"a": float64(1)}, true},
		{"garbage", `not json at all`, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, ok := safeParseArgs(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSafeParseArgsDuplicatedObject(t *testing.T) {
	// A provider re-sending the whole object produces `}{`; the widest
	// brace span fails to parse, so the first complete object is recovered.
	got, _, ok := safeParseArgs(`{"a":1}{"a":1}`)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"a": float64(1)}, got)
}
