package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/qualifica/pkg/domain"
)

// JSONHandler implements IOHandler over JSON Lines: one Result per output line, and one
// answer per input line.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// systemMessage is how SystemOutput appears on the wire.
type systemMessage struct {
	System string `json:"system"`
}

// answerLine is the object form of an input line.
type answerLine struct {
	Answer string `json:"answer"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

// Output emits the result as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, result domain.Result) error {
	return h.Encoder.Encode(result)
}

// Input accepts {"answer": "..."}, a JSON string, or raw text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var line answerLine
	if strings.HasPrefix(text, "{") && json.Unmarshal([]byte(text), &line) == nil {
		return SanitizeInput(line.Answer)
	}

	var val string
	if json.Unmarshal([]byte(text), &val) == nil {
		return SanitizeInput(val)
	}
	return SanitizeInput(text)
}

// SystemOutput emits {"system": msg}.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(systemMessage{System: msg})
}
