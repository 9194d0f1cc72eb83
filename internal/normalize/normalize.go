// Package normalize recovers JSON values from free-form model output.
//
// Models wrap JSON in markdown fences, prepend a sentence of prose or append an
// explanation. Extract tolerates all of these and never returns an error: a
// caller either gets a value of the requested shape or ok=false and substitutes
// its own default.
package normalize

import (
	"encoding/json"
	"strings"
)

// Shape is the expected top-level JSON kind.
type Shape int

const (
	Object Shape = iota
	Array
)

func (s Shape) String() string {
	if s == Array {
		return "array"
	}
	return "object"
}

func (s Shape) brackets() (byte, byte) {
	if s == Array {
		return '[', ']'
	}
	return '{', '}'
}

const fence = "```"

// Extract returns the JSON value encoded in raw if it has the requested shape.
func Extract(raw string, shape Shape) (any, bool) {
	text := StripCodeFence(raw)
	if text == "" {
		return nil, false
	}

	open, closing := shape.brackets()
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, closing)

	if start != -1 && end > start {
		if value, ok := decode(text[start:end+1], shape); ok {
			return value, true
		}
	}

	return decode(text, shape)
}

// ExtractObject is Extract for objects.
func ExtractObject(raw string) (map[string]any, bool) {
	value, ok := Extract(raw, Object)
	if !ok {
		return nil, false
	}
	return value.(map[string]any), true
}

// ExtractArray is Extract for arrays.
func ExtractArray(raw string) ([]any, bool) {
	value, ok := Extract(raw, Array)
	if !ok {
		return nil, false
	}
	return value.([]any), true
}

// StripCodeFence trims whitespace and removes a leading ```lang marker and a trailing ``` marker.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, fence) {
		text = strings.TrimPrefix(text, fence)
		// language tag, e.g. ```json
		i := 0
		for i < len(text) && isTagByte(text[i]) {
			i++
		}
		text = strings.TrimSpace(text[i:])
	}

	if strings.HasSuffix(text, fence) {
		text = strings.TrimSpace(strings.TrimSuffix(text, fence))
	}

	return text
}

func isTagByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '-' || b == '_'
}

func decode(text string, shape Shape) (any, bool) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, false
	}

	switch value.(type) {
	case map[string]any:
		if shape == Object {
			return value, true
		}
	case []any:
		if shape == Array {
			return value, true
		}
	}
	return nil, false
}
