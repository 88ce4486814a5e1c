package types

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxTextBytes caps inbound chat text. Long pastes are rejected rather than
// truncated so the sender knows the message was not delivered.
const MaxTextBytes = 4096

var (
	userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	slugRegex   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// IsValidUserID checks if a user identity meets format requirements:
// 1-50 characters, alphanumeric plus underscore/hyphen.
func IsValidUserID(userID string) bool {
	if len(userID) < 1 || len(userID) > 50 {
		return false
	}
	return userIDRegex.MatchString(userID)
}

// IsValidSlug checks if a room slug is lowercase kebab-case, 1-80 characters.
func IsValidSlug(slug string) bool {
	if len(slug) < 1 || len(slug) > 80 {
		return false
	}
	return slugRegex.MatchString(slug)
}

// Validate checks an inbound chat frame. The source language code is not
// checked against the supported table here: an unknown code only means no
// translation will be available, which is handled downstream, not a reason
// to reject the message.
func (f *SendFrame) Validate() error {
	if strings.TrimSpace(f.Text) == "" {
		return ErrEmptyText
	}
	if len(f.Text) > MaxTextBytes {
		return ErrTextTooLarge
	}
	if !utf8.ValidString(f.Text) {
		return ErrInvalidEncoding
	}
	if f.SourceLanguage == "" {
		return ErrMissingSourceLanguage
	}
	return nil
}

// Validate ensures a room meets creation requirements.
func (r *Room) Validate() error {
	if len(r.Name) < 1 || len(r.Name) > 200 {
		return ErrInvalidRoomName
	}
	if !IsValidSlug(r.Slug) {
		return ErrInvalidRoomSlug
	}
	return nil
}
