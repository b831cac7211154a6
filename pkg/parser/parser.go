// Package parser turns model JSON output into validated reports. Missing or
// out-of-range fields are defaulted and clamped; output that is not a JSON
// object is an error.
package parser

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var fenceRe = regexp.MustCompile("```[a-zA-Z]*\n|```")

// stripFences removes markdown code fences such as ```json ... ``` so JSON can be parsed
func stripFences(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
}

func decodeObject(raw string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		obj = map[string]any{}
	}
	return obj, nil
}

// intField reads a numeric field. Numeric strings are accepted; anything
// else reports false. Values are bounded to the int32 range before
// conversion so huge numbers still clamp toward the right end.
func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		return toInt(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return toInt(f)
	}
	return 0, false
}

func toInt(f float64) (int, bool) {
	if math.IsNaN(f) {
		return 0, false
	}
	f = math.Max(math.MinInt32, math.Min(math.MaxInt32, f))
	return int(math.Round(f)), true
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

func objectField(m map[string]any, key string) map[string]any {
	if obj, ok := m[key].(map[string]any); ok {
		return obj
	}
	return map[string]any{}
}

// stringList keeps the string elements of a JSON array and never returns nil.
func stringList(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
