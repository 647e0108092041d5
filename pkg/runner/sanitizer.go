package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxInputSize bounds a single answer in bytes. Answers are chat messages.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "QUALIFICA_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
	// ErrControlOnly rejects input that only held control characters. Stripping it would
	// leave an empty answer, which restarts the conversation.
	ErrControlOnly = errors.New("input contains only control characters")
)

// SanitizeInput checks a raw answer against MaxInputSize and strips control characters.
//
// Oversized input is rejected rather than truncated, so a trigger phrase is never cut in
// half. Only \n, \t and \r survive among control characters; terminal escapes would
// otherwise reach the logs and the trigger matching.
func SanitizeInput(input string) (string, error) {
	return sanitize(input, MaxInputSize())
}

func sanitize(input string, limit int) (string, error) {
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}
	clean := strings.Map(func(r rune) rune {
		if unsafeControl(r) {
			return -1
		}
		return r
	}, input)
	if strings.TrimSpace(clean) == "" {
		return "", ErrControlOnly
	}
	return clean, nil
}

func unsafeControl(r rune) bool {
	switch r {
	case '\n', '\t', '\r':
		return false
	}
	return unicode.IsControl(r)
}

// MaxInputSize returns the limit from EnvMaxInputSize, or DefaultMaxInputSize when it is
// unset or not a positive integer.
func MaxInputSize() int {
	size, err := strconv.Atoi(os.Getenv(EnvMaxInputSize))
	if err != nil || size <= 0 {
		return DefaultMaxInputSize
	}
	return size
}
