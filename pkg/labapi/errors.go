package labapi

import (
	"encoding/json"
	"strings"
)

// Error is the single failure type surfaced by the client. Message is always
// suitable for direct display.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// serverMessage extracts a message field from an error response body.
// Backends answer with {"message": ...} or {"error": ...}; anything else
// yields the empty string so the caller's fallback applies.
func serverMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(body.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(body.Err)
}

func messageOrFallback(msg, fallback string) string {
	if strings.TrimSpace(msg) != "" {
		return msg
	}
	return fallback
}
