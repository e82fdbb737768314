package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ParseOutput decodes a model reply into Output. Markdown code fences around
// the JSON object are tolerated; anything else that is not a single JSON object
// with the expected field types is ErrMalformedOutput.
func ParseOutput(raw string) (*Output, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return nil, ErrEmptyResponse
	}
	if text[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedOutput)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	var out Output
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedOutput)
	}
	out.Alternatives = compact(out.Alternatives)
	out.BulletSpecs = compact(out.BulletSpecs)
	out.Tags = compact(out.Tags)
	return &out, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// compact trims entries and drops blank ones.
func compact(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
