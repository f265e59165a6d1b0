package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrBadChatPayload = errors.New("bad chat payload")

type ChatMode int

const (
	ChatBroadcast ChatMode = iota
	ChatDirected
)

// ChatIntent is the canonical form of a chat-message payload. The wire
// carries two generations: a bare string (broadcast to everyone) and a
// {to, text} object (directed at one driver). Both decode here, once,
// so handlers never branch on payload shape.
type ChatIntent struct {
	Mode ChatMode
	To   string
	Text string
}

// DecodeChatIntent normalizes a raw chat-message payload.
func DecodeChatIntent(data []byte) (ChatIntent, error) {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		return ChatIntent{Mode: ChatBroadcast, Text: text}, nil
	}

	var directed struct {
		To   string `json:"to"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &directed); err != nil {
		return ChatIntent{}, ErrBadChatPayload
	}
	return ChatIntent{Mode: ChatDirected, To: directed.To, Text: directed.Text}, nil
}

// Deliverable reports whether the intent survives validation: directed
// messages need a target and non-whitespace text.
func (c ChatIntent) Deliverable() bool {
	if c.Mode == ChatDirected {
		return c.To != "" && strings.TrimSpace(c.Text) != ""
	}
	return true
}
