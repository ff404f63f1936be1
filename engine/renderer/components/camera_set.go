package components

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/kiln/engine/core"
)

// DefaultCameraName always resolves to the set's fallback camera.
const DefaultCameraName = "default"

var ErrCameraSetFull = errors.New("camera set is full")

type cameraEntry struct {
	camera   *Camera
	refCount uint16
}

// CameraSet hands out reference counted cameras by name. A camera is reset
// and forgotten when its last reference is released.
type CameraSet struct {
	max     int
	cameras map[string]*cameraEntry
	def     *Camera
}

func NewCameraSet(maxCameras int) (*CameraSet, error) {
	if maxCameras <= 0 {
		return nil, fmt.Errorf("camera set size must be > 0, got %d", maxCameras)
	}
	return &CameraSet{
		max:     maxCameras,
		cameras: make(map[string]*cameraEntry, maxCameras),
		def:     NewCamera(),
	}, nil
}

func (s *CameraSet) Default() *Camera { return s.def }

// Acquire returns the camera called name, creating it on first use.
func (s *CameraSet) Acquire(name string) (*Camera, error) {
	if name == DefaultCameraName {
		return s.def, nil
	}
	entry, ok := s.cameras[name]
	if !ok {
		if len(s.cameras) >= s.max {
			core.LogError("cannot create camera '%s': %d cameras in use", name, s.max)
			return nil, ErrCameraSetFull
		}
		core.LogDebug("creating camera '%s'", name)
		entry = &cameraEntry{camera: NewCamera()}
		s.cameras[name] = entry
	}
	entry.refCount++
	return entry.camera, nil
}

// Release drops one reference to the camera called name.
func (s *CameraSet) Release(name string) error {
	if name == DefaultCameraName {
		return nil
	}
	entry, ok := s.cameras[name]
	if !ok {
		return fmt.Errorf("release camera '%s': %w", name, core.ErrInvalidHandle)
	}
	entry.refCount--
	if entry.refCount == 0 {
		entry.camera.Reset()
		delete(s.cameras, name)
	}
	return nil
}

func (s *CameraSet) Len() int { return len(s.cameras) }
