package types

import "errors"

var (
	ErrInvalidUserID         = errors.New("user ID must be 1-50 characters, alphanumeric + underscore/hyphen only")
	ErrInvalidRoomName       = errors.New("room name must be 1-200 characters")
	ErrInvalidRoomSlug       = errors.New("room slug must be 1-80 characters, lowercase kebab-case")
	ErrEmptyText             = errors.New("message text cannot be empty")
	ErrTextTooLarge          = errors.New("message text exceeds 4KB limit")
	ErrInvalidEncoding       = errors.New("message text is not valid UTF-8")
	ErrMissingSourceLanguage = errors.New("source language is required")
)
