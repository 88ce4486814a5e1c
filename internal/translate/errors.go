package translate

import "errors"

var (
	ErrPoolClosed    = errors.New("translation pool is closed")
	ErrEngineFailure = errors.New("translation engine failure")
)
