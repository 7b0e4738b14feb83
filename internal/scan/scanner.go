// Package scan produces a single decoded QR text value from either a live
// camera feed or typed input. A Scan handle resolves exactly once and the
// camera device is released on every exit path.
package scan

import (
	"context"
	"image"
	"strings"
	"sync"
)

// Device is an available camera
type Device struct {
	Path  string
	Label string
}

// FrameSource is an open capture session delivering frames until closed
type FrameSource interface {
	// ReadFrame blocks for the next frame. It returns an error once the
	// source is closed or the context is done.
	ReadFrame(ctx context.Context) (image.Image, error)
	Close() error
}

// Opener enumerates and opens camera devices
type Opener interface {
	List() ([]Device, error)
	Open(d Device) (FrameSource, error)
}

// Outcome is the single resolution of a Scan: decoded text or a failure
type Outcome struct {
	Text string
	Err  error
}

// Scanner coordinates one capture session at a time
type Scanner struct {
	opener Opener
	decode func(image.Image) (string, error)

	mu     sync.Mutex
	active *Scan
}

// New creates a Scanner backed by the platform camera
func New() *Scanner {
	return NewWithOpener(systemOpener())
}

// NewWithOpener creates a Scanner with a custom device source, used by tests
func NewWithOpener(o Opener) *Scanner {
	return &Scanner{opener: o, decode: Decode}
}

// SelectDevice applies the rear-facing label heuristic: a device whose label
// mentions "back" or "rear" wins, else the first device.
func SelectDevice(devices []Device) Device {
	for _, d := range devices {
		label := strings.ToLower(d.Label)
		if strings.Contains(label, "back") || strings.Contains(label, "rear") {
			return d
		}
	}
	return devices[0]
}

// Start acquires a camera and begins a single-shot decode. It returns
// ErrNoCamera when no device exists, ErrScanActive while another scan holds
// the camera, and a CameraError if the device cannot be opened. The returned
// handle resolves exactly once through Done.
func (s *Scanner) Start(ctx context.Context) (*Scan, error) {
	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		return nil, ErrScanActive
	}
	// Reserve the slot before the (slow) device open
	placeholder := &Scan{}
	s.active = placeholder
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		s.active = nil
		s.mu.Unlock()
	}

	devices, err := s.opener.List()
	if err != nil {
		release()
		return nil, &CameraError{Err: err}
	}
	if len(devices) == 0 {
		release()
		return nil, ErrNoCamera
	}

	src, err := s.opener.Open(SelectDevice(devices))
	if err != nil {
		release()
		return nil, &CameraError{Err: err}
	}

	scanCtx, cancel := context.WithCancel(ctx)
	sc := &Scan{
		done:    make(chan Outcome, 1),
		src:     src,
		cancel:  cancel,
		release: release,
	}

	s.mu.Lock()
	s.active = sc
	s.mu.Unlock()

	go sc.decodeLoop(scanCtx, s.decode)
	return sc, nil
}

// Scan is a one-shot decode in progress
type Scan struct {
	done    chan Outcome
	src     FrameSource
	cancel  context.CancelFunc
	release func()

	once      sync.Once
	closeOnce sync.Once
}

// Done yields the scan's single outcome
func (sc *Scan) Done() <-chan Outcome {
	return sc.done
}

// SubmitManual bypasses the camera path: trimmed non-empty text resolves the
// scan with that exact value and releases the camera. Empty or whitespace
// input does nothing and reports false.
func (sc *Scan) SubmitManual(text string) bool {
	text, ok := Manual(text)
	if !ok {
		return false
	}
	sc.closeCapture()
	sc.resolve(Outcome{Text: text})
	return true
}

// Stop releases the camera device. It is safe on every exit path, including
// while a decode is pending and after the scan already resolved, and it
// leaves the Scanner ready for a new Start.
func (sc *Scan) Stop() {
	sc.closeCapture()
	sc.resolve(Outcome{Err: ErrStopped})
}

func (sc *Scan) decodeLoop(ctx context.Context, decode func(image.Image) (string, error)) {
	for {
		img, err := sc.src.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				sc.closeCapture()
				sc.resolve(Outcome{Err: ErrStopped})
			} else {
				sc.closeCapture()
				sc.resolve(Outcome{Err: &CameraError{Err: err}})
			}
			return
		}

		text, err := decode(img)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			// Decode failures other than not-found are still retried:
			// the next frame may be sharper.
			continue
		}

		// Release the camera before delivering the result
		sc.closeCapture()
		sc.resolve(Outcome{Text: text})
		return
	}
}

func (sc *Scan) closeCapture() {
	sc.closeOnce.Do(func() {
		sc.cancel()
		_ = sc.src.Close()
		sc.release()
	})
}

func (sc *Scan) resolve(o Outcome) {
	sc.once.Do(func() {
		sc.done <- o
	})
}

// Manual normalizes typed QR input into the same shape a camera decode
// produces. Whitespace-only input is rejected.
func Manual(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}
