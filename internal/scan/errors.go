package scan

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCamera means device enumeration found zero cameras
	ErrNoCamera = errors.New("no camera devices found")
	// ErrScanActive means a capture session is already running
	ErrScanActive = errors.New("a scan is already in progress")
	// ErrStopped means the scan was stopped before a code was decoded
	ErrStopped = errors.New("scan stopped")
)

// CameraError is a device enumeration or stream failure carrying the
// underlying cause
type CameraError struct {
	Err error
}

func (e *CameraError) Error() string {
	return fmt.Sprintf("camera error: %v", e.Err)
}

func (e *CameraError) Unwrap() error {
	return e.Err
}
