//go:build !linux

package scan

// Camera capture is only wired for V4L2. Other platforms enumerate zero
// devices, so Start reports ErrNoCamera and manual entry or image-file
// decoding remain available.

type noOpener struct{}

func systemOpener() Opener {
	return noOpener{}
}

func (noOpener) List() ([]Device, error) {
	return nil, nil
}

func (noOpener) Open(Device) (FrameSource, error) {
	return nil, ErrNoCamera
}
