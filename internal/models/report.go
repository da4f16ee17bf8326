package models

import (
	"errors"
	"fmt"
)

var ErrInvalidRole = errors.New("role must be 'sender' or 'recipient'")

// Role names one of the two report addresses; it doubles as the object key
// in the configuration bucket.
type Role string

const (
	RoleSender    Role = "sender"
	RoleRecipient Role = "recipient"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSender, RoleRecipient:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidRole, s)
}

// Addresses holds the report's From and To.
type Addresses struct {
	Sender    string `json:"sender" validate:"required,email"`
	Recipient string `json:"recipient" validate:"required,email"`
}

// Message is a composed email ready for the email service.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}
