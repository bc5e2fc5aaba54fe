package llm

import (
	"strings"
	"unicode"
)

const fence = "```"

// ExtractPayload returns the code or text a caller wants out of a model reply.
//
// In order of preference: the body of the first closed fenced block, everything
// after an opening fence that was never closed, or the reply with any leading and
// trailing fence markers stripped. The result is always trimmed.
func ExtractPayload(text string) string {
	if body, ok := closedBlock(text); ok {
		return body
	}
	if body, ok := openBlock(text); ok {
		return body
	}
	return stripFences(text)
}

// isTagRune matches an ASCII word character, the only runes a language tag
// after an opening fence may hold.
func isTagRune(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

// isPrefixTagRune also allows '-' when stripping a bare leading fence.
func isPrefixTagRune(r rune) bool {
	return r == '-' || isTagRune(r)
}

// afterOpeningFence returns the text following the first fence and its language tag.
func afterOpeningFence(text string) (string, bool) {
	i := strings.Index(text, fence)
	if i < 0 {
		return "", false
	}
	return strings.TrimLeftFunc(text[i+len(fence):], isTagRune), true
}

func closedBlock(text string) (string, bool) {
	rest, ok := afterOpeningFence(text)
	if !ok {
		return "", false
	}
	end := strings.Index(rest, fence)
	if end < 0 {
		return "", false
	}
	body := strings.TrimSpace(rest[:end])
	return body, body != ""
}

func openBlock(text string) (string, bool) {
	rest, ok := afterOpeningFence(text)
	if !ok {
		return "", false
	}
	body := strings.TrimSpace(rest)
	return body, body != ""
}

func stripFences(text string) string {
	s := text
	if strings.HasPrefix(s, fence) {
		s = strings.TrimLeftFunc(s[len(fence):], isPrefixTagRune)
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
	}
	if strings.HasSuffix(s, fence) {
		s = strings.TrimRightFunc(strings.TrimSuffix(s, fence), unicode.IsSpace)
	}
	return strings.TrimSpace(s)
}
