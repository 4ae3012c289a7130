package protocol

import (
	"encoding/json"
	"fmt"

	"presenced/pkg/errors"
)

// MessageType defines the type of message being sent
type MessageType string

const (
	// MsgTypePlayerJoin announces a player joining, inbound and outbound
	MsgTypePlayerJoin MessageType = "player_join"

	// MsgTypePlayerLeave announces a player leaving, inbound and outbound
	MsgTypePlayerLeave MessageType = "player_leave"

	// MsgTypeUserList carries the full presence snapshot sent to a joiner
	MsgTypeUserList MessageType = "user_list"
)

// Message is the envelope for all push-transport frames
type Message struct {
	Type     MessageType `json:"type"`
	Username string      `json:"username,omitempty"`
	Users    []string    `json:"users,omitempty"`
}

// NewJoin creates a player_join message
func NewJoin(username string) *Message {
	return &Message{Type: MsgTypePlayerJoin, Username: username}
}

// NewLeave creates a player_leave message
func NewLeave(username string) *Message {
	return &Message{Type: MsgTypePlayerLeave, Username: username}
}

// NewUserList creates a user_list snapshot message
func NewUserList(users []string) *Message {
	return &Message{Type: MsgTypeUserList, Users: users}
}

// Encode serializes the message to its wire form
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Parse decodes and validates an inbound frame. Validation fails closed:
// unparseable JSON, an unrecognized type, or a missing username all reject
// the frame before any handler logic sees it.
func Parse(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}

	switch msg.Type {
	case MsgTypePlayerJoin, MsgTypePlayerLeave:
		if msg.Username == "" {
			return nil, fmt.Errorf("%w: missing username for %s", errors.ErrInvalidMessage, msg.Type)
		}
	default:
		return nil, fmt.Errorf("%w: unrecognized type %q", errors.ErrInvalidMessage, msg.Type)
	}

	return &msg, nil
}
