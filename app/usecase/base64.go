package usecase

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

const MsgInvalidBase64 = "Invalid Base64 string"

var ErrInvalidBase64 = errors.New("invalid base64 string")

func EncodeBase64(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// DecodeBase64 follows the forgiving browser decoder: ASCII whitespace is
// ignored and padding is optional, anything else outside the alphabet fails.
// Valid UTF-8 is returned as is; other payloads map each byte to one Latin-1
// character like atob, so they survive JSON transport instead of turning into
// U+FFFD.
func DecodeBase64(text string) (string, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\f', '\r':
			return -1
		}
		return r
	}, text)

	if len(s)%4 == 0 {
		s = strings.TrimSuffix(s, "=")
		s = strings.TrimSuffix(s, "=")
	}
	if len(s)%4 == 1 {
		return "", ErrInvalidBase64
	}

	out, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return "", ErrInvalidBase64
	}
	if utf8.Valid(out) {
		return string(out), nil
	}
	return latin1(out), nil
}

func latin1(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
