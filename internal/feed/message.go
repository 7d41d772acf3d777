package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Message is one alert payload from the feed. The schema is untrusted:
// any field may be absent and defaults to its zero value.
type Message struct {
	Title       string   `json:"title"`
	Description string   `json:"desc"`
	Areas       []string `json:"data"`
}

// BodyKind classifies a raw feed body before JSON parsing.
type BodyKind int

const (
	// BodyEmpty is a blank or whitespace-only body, the feed's convention
	// for "no active alert".
	BodyEmpty BodyKind = iota
	// BodyMalformed is a non-empty body that cannot be JSON; the feed
	// occasionally returns diagnostic text instead.
	BodyMalformed
	// BodyJSON looks like a JSON object or array and is worth parsing.
	BodyJSON
)

func ClassifyBody(body []byte) BodyKind {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return BodyEmpty
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return BodyMalformed
	}
	return BodyJSON
}

// ParseMessage decodes a feed body into a Message. The feed's shape is not
// guaranteed, so several forms are accepted:
//
//  1. a single alert object (the live alerts endpoint),
//  2. an array of alert objects (history-style payloads) — the title and
//     description come from the first entry that has a title, and the area
//     lists are concatenated in feed order,
//  3. a bare array of area-name strings.
//
// Anything else is a parse error; callers treat that as a malformed
// response, never as fatal.
func ParseMessage(body []byte) (Message, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Message{}, fmt.Errorf("empty feed body")
	}

	if trimmed[0] == '{' {
		var msg Message
		if err := json.Unmarshal(trimmed, &msg); err != nil {
			return Message{}, fmt.Errorf("failed to parse feed object: %w", err)
		}
		return msg, nil
	}

	var msgs []Message
	if err := json.Unmarshal(trimmed, &msgs); err == nil {
		var merged Message
		for _, m := range msgs {
			if merged.Title == "" && m.Title != "" {
				merged.Title = m.Title
				merged.Description = m.Description
			}
			merged.Areas = append(merged.Areas, m.Areas...)
		}
		return merged, nil
	}

	var areaNames []string
	if err := json.Unmarshal(trimmed, &areaNames); err == nil {
		return Message{Areas: areaNames}, nil
	}

	return Message{}, fmt.Errorf("unrecognized feed payload shape")
}
