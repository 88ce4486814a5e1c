package directory

import "errors"

var (
	ErrNilMember = errors.New("member cannot be nil")
)
