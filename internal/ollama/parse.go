package ollama

import (
	"encoding/json"
	"strings"
)

// ParseObject extracts a JSON object from a model response. The whole text
// is tried first, then the span from the first '{' to the last '}', which
// recovers objects wrapped in conversational filler. Returns nil when
// neither yields an object.
func ParseObject(raw string) map[string]any {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	if obj, ok := decodeObject(text); ok {
		return obj
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end <= start {
		return nil
	}

	if obj, ok := decodeObject(text[start : end+1]); ok {
		return obj
	}
	return nil
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
