package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrNotLoggedIn = errors.New("not logged in")
)

// BadRequestError is a 400 response with optional field messages.
type BadRequestError struct {
	Message string
	Fields  map[string]string
}

func (e *BadRequestError) Error() string {
	if len(e.Fields) == 0 {
		return "bad request: " + e.Message
	}
	return fmt.Sprintf("bad request: %s %v", e.Message, e.Fields)
}
