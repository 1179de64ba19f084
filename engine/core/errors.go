package core

import (
	"errors"
)

var (
	ErrEngineNotInitialized = errors.New("engine not initialized")
	ErrEngineShutdown       = errors.New("engine is shutting down")
	ErrUnknown              = errors.New("unknown")
)
