package provider

import (
	"context"
	"fmt"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message represents a message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Provider is the contract for the text-generation backend. Implementations
// fail with *Error on transport or auth problems.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Error wraps a failure talking to an external provider.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
