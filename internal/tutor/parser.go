package tutor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse indicates the AI returned no usable text. Checked
// before any decode is attempted.
var ErrEmptyResponse = errors.New("the AI returned an empty response")

// MalformedError indicates the AI returned text that could not be
// decoded as the expected JSON structure. Distinct from ErrEmptyResponse
// and from transport errors (*llm.ErrUnavailable) so callers can show
// different user messages.
type MalformedError struct {
	Raw string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed AI response: %v", e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// stripFences removes markdown code-fence markers the model sometimes
// wraps around JSON output, and trims surrounding whitespace.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Decode cleans raw AI text and unmarshals it into v. It returns
// ErrEmptyResponse when nothing remains after cleanup, or a
// *MalformedError when the text is not valid JSON for v. No retry is
// performed; failures surface immediately to the caller.
func Decode(raw string, v any) error {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return &MalformedError{Raw: cleaned, Err: err}
	}
	return nil
}

// User-facing messages for the three AI failure kinds.
const (
	MsgEmptyResponse     = "The AI returned an empty response."
	MsgMalformedResponse = "The AI returned a malformed response. Please try again."
	MsgUnavailable       = "There was a problem connecting to the AI service. Please check your API key and try again."
)

// UserMessage maps an AI-call error to the message shown to the student.
// Anything that is neither empty nor malformed is treated as a
// connectivity problem (*llm.ErrUnavailable, *llm.ErrRateLimit, ...).
func UserMessage(err error) string {
	var malformed *MalformedError
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return MsgEmptyResponse
	case errors.As(err, &malformed):
		return MsgMalformedResponse
	default:
		return MsgUnavailable
	}
}
