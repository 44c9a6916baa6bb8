package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// MessageTypeSelect carries a square selection from a client.
	MessageTypeSelect    MessageType = "select"
	MessageTypeGameState MessageType = "gameState"
	// MessageTypeTurn carries the outcome of one selection.
	MessageTypeTurn  MessageType = "turn"
	MessageTypeError MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Selection is the payload of a select message.
type Selection struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ErrorPayload is the payload of an error message.
type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage marshals payload into a message of type t.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: data}, nil
}

func NewError(msg string) Message {
	data, _ := json.Marshal(ErrorPayload{Error: msg})
	return Message{Type: MessageTypeError, Payload: data}
}
