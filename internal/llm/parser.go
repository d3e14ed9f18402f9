package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"scribe-ai/backend/internal/model"
)

// ParsedToolCall is a tool invocation reconstructed from stream fragments.
// Arguments holds the canonical JSON text; Args the decoded object.
type ParsedToolCall struct {
	ID        string
	Name      string
	Arguments string
	Args      map[string]any
}

// ParseResult is what a fully consumed stream yields.
type ParseResult struct {
	Content   string
	Reasoning string
	ToolCalls []ParsedToolCall
	// Dropped counts tool calls whose arguments never parsed as JSON even
	// after the final repair attempt. These are never executed.
	Dropped int
}

// toolCallState is the per-index assembly state for an in-progress tool call.
type toolCallState struct {
	index        int
	id           string
	name         string
	rawArgs      strings.Builder
	braceBalance int
	wentNonZero  bool
	completed    bool
	args         map[string]any
	canonical    string
}

// StreamParser accumulates content, reasoning, and fragmented tool calls from
// an ordered delta stream. Deltas may carry any combination of fields at
// once; every field present on a delta is processed, none is ever skipped
// because another field is also present. Not safe for concurrent use; each
// orchestration round owns its own parser.
type StreamParser struct {
	content   strings.Builder
	reasoning strings.Builder
	calls     map[int]*toolCallState
}

// NewStreamParser creates an empty parser.
func NewStreamParser() *StreamParser {
	return &StreamParser{calls: make(map[int]*toolCallState)}
}

// Feed ingests one delta. Must be called in arrival order.
func (p *StreamParser) Feed(delta model.Delta) {
	if delta.Content != "" {
		p.content.WriteString(delta.Content)
	}
	if delta.Reasoning != "" {
		p.reasoning.WriteString(delta.Reasoning)
	}
	for _, frag := range delta.ToolCallFragments {
		p.feedFragment(frag)
	}
}

func (p *StreamParser) feedFragment(frag model.ToolCallFragment) {
	call, ok := p.calls[frag.Index]
	if !ok {
		call = &toolCallState{index: frag.Index}
		p.calls[frag.Index] = call
	}

	// id and name are first-write-wins; providers send them only on the
	// first fragment for an index, and a later overwrite would detach
	// already-accumulated arguments from their call.
	if frag.ID != "" && call.id == "" {
		call.id = frag.ID
	}
	if frag.Name != "" && call.name == "" {
		call.name = frag.Name
	}

	if frag.ArgumentsFragment == "" {
		return
	}

	call.rawArgs.WriteString(frag.ArgumentsFragment)
	call.braceBalance += braceDelta(frag.ArgumentsFragment)
	if call.braceBalance != 0 {
		call.wentNonZero = true
	}

	// A balance back at zero after having opened suggests the JSON object
	// is complete; try parsing now. Failure is not an error, the next
	// fragment may still be on its way.
	if call.wentNonZero && call.braceBalance == 0 && !call.completed {
		call.tryComplete()
	}
}

// braceDelta counts the net curly-brace depth change contributed by one
// fragment. Braces inside string literals are intentionally counted too: a
// fragment is an arbitrary slice of a JSON document, so string boundaries
// cannot be tracked per fragment, and a false "complete" signal is harmless
// because the tolerant parse simply fails and accumulation continues.
func braceDelta(fragment string) int {
	balance := 0
	for _, r := range fragment {
		switch r {
		case '{':
			balance++
		case '}':
			balance--
		}
	}
	return balance
}

func (c *toolCallState) tryComplete() {
	args, canonical, ok := safeParseArgs(c.rawArgs.String())
	if !ok {
		return
	}
	c.args = args
	c.canonical = canonical
	c.completed = true
}

// Finish ends the stream. Every tool call not yet marked complete gets a
// final repair-and-parse attempt; calls that still fail to parse are dropped
// from the result rather than executed with garbage arguments.
func (p *StreamParser) Finish() ParseResult {
	indexes := make([]int, 0, len(p.calls))
	for index := range p.calls {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	result := ParseResult{
		Content:   strings.TrimSpace(p.content.String()),
		Reasoning: strings.TrimSpace(p.reasoning.String()),
	}

	for _, index := range indexes {
		call := p.calls[index]
		if !call.completed {
			call.tryComplete()
		}
		if !call.completed {
			result.Dropped++
			slog.Error("dropping tool call with unparseable arguments",
				"tool", call.name,
				"index", call.index,
				"raw_args", call.rawArgs.String(),
			)
			continue
		}
		result.ToolCalls = append(result.ToolCalls, ParsedToolCall{
			ID:        call.callID(),
			Name:      call.name,
			Arguments: call.canonical,
			Args:      call.args,
		})
	}

	return result
}

// callID returns the provider-assigned id, or a synthetic one when the
// provider never sent an id for this index.
func (c *toolCallState) callID() string {
	if c.id != "" {
		return c.id
	}
	return syntheticCallID(c.index)
}

func syntheticCallID(index int) string {
	return fmt.Sprintf("call_%d_%d", index, time.Now().UnixMilli())
}

// safeParseArgs repairs and parses accumulated tool-call argument text.
// Returns the decoded object, its canonical JSON form, and whether parsing
// succeeded. An empty string is a valid empty argument object. Failure means
// "keep accumulating", not "abort".
func safeParseArgs(raw string) (map[string]any, string, bool) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return map[string]any{}, "{}", true
	}

	// Some providers double-encode arguments as a JSON string.
	if strings.HasPrefix(candidate, `"`) && strings.HasSuffix(candidate, `"`) {
		var unquoted string
		if err := json.Unmarshal([]byte(candidate), &unquoted); err == nil {
			candidate = unquoted
		}
	}

	// A "}{" boundary means two objects were glued together, usually a
	// provider re-sending the full object. Try the widest brace span
	// first, then fall back to the first complete object.
	if strings.Contains(candidate, "}{") {
		first := strings.Index(candidate, "{")
		last := strings.LastIndex(candidate, "}")
		if first != -1 && last > first {
			if args, canonical, ok := parseObject(candidate[first : last+1]); ok {
				return args, canonical, true
			}
		}
		if first != -1 {
			if end := strings.Index(candidate[first:], "}"); end != -1 {
				if args, canonical, ok := parseObject(candidate[first : first+end+1]); ok {
					return args, canonical, true
				}
			}
		}
	}

	// A ',{"' sequence means a second object was concatenated after the
	// first; recover the first complete object.
	if strings.Contains(candidate, `,{"`) {
		first := strings.Index(candidate, "{")
		if first != -1 {
			if end := strings.Index(candidate[first:], "}"); end != -1 {
				if args, canonical, ok := parseObject(candidate[first : first+end+1]); ok {
					return args, canonical, true
				}
			}
		}
	}

	if !strings.HasPrefix(candidate, "{") {
		candidate = "{" + candidate
	}
	if !strings.HasSuffix(candidate, "}") {
		candidate = candidate + "}"
	}

	return parseObject(candidate)
}

func parseObject(candidate string) (map[string]any, string, bool) {
	var args map[string]any
	if err := json.Unmarshal([]byte(candidate), &args); err != nil {
		return nil, "", false
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, candidate, true
}
