package fileutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoJSONObject is returned when a model response holds no JSON object at all.
var ErrNoJSONObject = errors.New("no JSON object found in model output")

const fence = "```"

// DecodeModelJSON unmarshals JSON from a model response. Responses are often wrapped in
// prose or a Markdown code fence, so when the text is not valid JSON as-is the fenced
// block (if any) is preferred, then the first balanced top-level object.
func DecodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	if block, ok := fencedBlock(s); ok {
		s = block
	}
	obj, ok := firstObject(s)
	if !ok {
		return fmt.Errorf("%w (len=%d)", ErrNoJSONObject, len(s))
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("unmarshal extracted JSON (len=%d): %w", len(obj), err)
	}
	return nil
}

// fencedBlock returns the body of the first ``` fence, dropping its language tag.
func fencedBlock(s string) (string, bool) {
	_, rest, ok := strings.Cut(s, fence)
	if !ok {
		return "", false
	}
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
		rest = rest[nl+1:]
	}
	body, _, ok := strings.Cut(rest, fence)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(body), true
}

// firstObject returns the first brace-balanced object in s, skipping braces inside strings.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
