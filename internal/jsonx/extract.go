// Package jsonx recovers structured JSON values from imperfect model
// output: fenced code blocks, leading prose, trailing garbage. It makes at
// most one recovery attempt and never reorders input; the first balanced
// top-level value wins.
package jsonx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// excerptLimit bounds how much offending text a MalformedOutputError carries.
const excerptLimit = 400

// MalformedOutputError reports that no valid JSON value could be recovered
// from model output. Label identifies which protocol stage produced the
// text; Excerpt is a truncated copy of the offending output.
type MalformedOutputError struct {
	Label   string
	Excerpt string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output for %s: %s", e.Label, e.Excerpt)
}

// Extract parses a single JSON value of type T out of raw model text.
// It strips one fenced code block if present, attempts a direct parse, and
// on failure scans for the first balanced top-level object or array and
// parses exactly that substring. Failure yields a *MalformedOutputError.
func Extract[T any](label, text string) (T, error) {
	var out T

	candidate := stripFence(text)
	if err := json.Unmarshal([]byte(candidate), &out); err == nil {
		return out, nil
	}

	if span, ok := balancedSpan(candidate); ok {
		var recovered T
		if err := json.Unmarshal([]byte(span), &recovered); err == nil {
			return recovered, nil
		}
	}

	var zero T
	return zero, &MalformedOutputError{Label: label, Excerpt: excerpt(text)}
}

// stripFence removes a single surrounding ```-fenced block, with an
// optional language tag on the opening fence. Text without a leading fence
// is returned unchanged.
func stripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		// Opening fence line may carry a language tag such as "json".
		tag := strings.TrimSpace(body[:nl])
		if tag == "" || isLanguageTag(tag) {
			body = body[nl+1:]
		}
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func isLanguageTag(tag string) bool {
	for _, r := range tag {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// balancedSpan locates the first '{' or '[' outside any string literal and
// returns the substring up to the matching close bracket, tracking
// string-literal state and backslash escapes along the way.
func balancedSpan(text string) (string, bool) {
	start := -1
	var open, close byte
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			continue
		}
		if c == '{' || c == '[' {
			start = i
			open = c
			close = '}'
			if c == '[' {
				close = ']'
			}
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString = false
	escaped = false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func excerpt(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= excerptLimit {
		return text
	}
	return text[:excerptLimit]
}
