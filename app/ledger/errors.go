package ledger

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidState  = errors.New("invalid state")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUnimplemented = errors.New("not implemented")
)
