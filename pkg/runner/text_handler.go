package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/qualifica/pkg/domain"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	inputChan chan inputResult
	done      chan struct{}
	stopped   chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextRenderer configures the content renderer.
func WithTextRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:    bufio.NewReader(r),
		Writer:    w,
		inputChan: make(chan inputResult),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// initPump starts the background reader once, so Input can honor ctx while a read blocks.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		go h.pump()
	})
}

// Close stops the background reader once its pending line is read. A read already
// blocked on the underlying reader still returns only when that reader does.
func (h *TextHandler) Close() error {
	h.closeOnce.Do(func() { close(h.done) })
	return nil
}

func (h *TextHandler) pump() {
	defer close(h.stopped)
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')

		// A last line without newline still counts.
		if text != "" && !h.send(inputResult{text: text}) {
			return
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				h.send(inputResult{err: err})
			}
			return
		}
	}
}

// send hands res to Input, giving up when the handler is closed.
func (h *TextHandler) send(res inputResult) bool {
	select {
	case h.inputChan <- res:
		return true
	case <-h.done:
		return false
	}
}

// Output prints the prompt, the classification or the validation message.
func (h *TextHandler) Output(ctx context.Context, result domain.Result) error {
	var msg string
	switch o := result.Outcome; o.Kind {
	case domain.OutcomeAskNext:
		msg = o.PromptText
	case domain.OutcomeCompleted:
		msg = fmt.Sprintf("**Lead classified as %s** (score %d)", o.Classification, o.ScoreTotal)
	case domain.OutcomeValidationError:
		msg = "Error: " + o.Message
	default:
		return fmt.Errorf("unknown outcome kind %q", o.Kind)
	}

	if h.Renderer != nil {
		if rendered, err := h.Renderer(msg); err == nil {
			msg = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(msg))
	return err
}

// Input reads one sanitized line. Lines the sanitizer rejects are reported and read again.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}

			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

// SystemOutput prints a meta-message with a "[System]" prefix.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}
