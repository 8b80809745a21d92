package agent

import (
	"bufio"
	"encoding/json"
	"io"
)

const defaultBufferSize = 10 * 1024 * 1024 // 10MB

// streamEvent is one raw JSON line of the agent's stream-json output.
type streamEvent struct {
	Type    string          `json:"type"`
	Subtype string          `json:"subtype,omitempty"`
	Message *messageContent `json:"message,omitempty"`
	Result  string          `json:"result,omitempty"`
	IsError bool            `json:"is_error,omitempty"`
}

type messageContent struct {
	Content []contentBlock `json:"content,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Event is a parsed event from the agent's streaming output. Only the
// shapes the adapter consumes are extracted: assistant text, and the final
// result with its error flag.
type Event struct {
	// Type is the raw event type (system, assistant, user, result).
	Type string

	// Text is the assistant text content, when present.
	Text string

	// Final is true for the result event that ends a session.
	Final bool

	// Result is the session's final output text, set on the final event.
	Result string

	// Failed is true when the final event reports an error.
	Failed bool
}

// parseStream reads stream-json lines from r and emits parsed events on the
// returned channel. Empty and malformed lines are skipped so partial or
// corrupted output never aborts a session; the channel closes on EOF or a
// scanner error (e.g. a line exceeding the buffer size).
func parseStream(r io.Reader) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 1024*1024), defaultBufferSize)

		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}

			var raw streamEvent
			if err := json.Unmarshal([]byte(line), &raw); err != nil {
				continue
			}
			events <- newEvent(&raw)
		}
	}()

	return events
}

func newEvent(raw *streamEvent) Event {
	e := Event{Type: raw.Type}

	switch raw.Type {
	case "assistant":
		if raw.Message != nil {
			for _, block := range raw.Message.Content {
				if block.Type == "text" && block.Text != "" {
					e.Text = block.Text
				}
			}
		}
	case "result":
		e.Final = true
		e.Result = raw.Result
		e.Failed = raw.IsError || raw.Subtype == "error"
	}
	return e
}
