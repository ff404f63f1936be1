package core

import (
	"errors"
)

var (
	ErrSwapchainBooting   = errors.New("swapchain resized or recreated, booting")
	ErrNotInitialized     = errors.New("subsystem not initialized")
	ErrAlreadyInitialized = errors.New("subsystem already initialized")
	ErrInvalidHandle      = errors.New("invalid or stale handle")
	ErrUnknown            = errors.New("unknown")
)
