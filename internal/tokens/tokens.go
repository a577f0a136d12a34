// Package tokens estimates and clips prompt content by token count.
package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is a reasonable tokenizer for current chat models.
const DefaultEncoding = "cl100k_base"

// Counter counts tokens under one tiktoken encoding.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// New loads the tokenizer for the given encoding name.
func New(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer %s: %w", encoding, err)
	}
	return &Counter{enc: enc}, nil
}

// Count returns the token count of text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Clip truncates text to at most maxTokens tokens, returning the clipped
// text and its token count.
func (c *Counter) Clip(text string, maxTokens int) (string, int) {
	if text == "" || maxTokens <= 0 {
		return "", 0
	}
	toks := c.enc.Encode(text, nil, nil)
	if len(toks) <= maxTokens {
		return text, len(toks)
	}
	return c.enc.Decode(toks[:maxTokens]), maxTokens
}
