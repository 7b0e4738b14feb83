package scan

import (
	"context"
	"image"
	"sync/atomic"
	"testing"
	"time"

	qrgen "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource delivers scripted frames and records whether it was closed
type fakeSource struct {
	frames chan image.Image
	closed atomic.Bool
	done   chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		frames: make(chan image.Image, 8),
		done:   make(chan struct{}),
	}
}

func (f *fakeSource) ReadFrame(ctx context.Context) (image.Image, error) {
	select {
	case img := <-f.frames:
		return img, nil
	case <-f.done:
		return nil, context.Canceled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeSource) Close() error {
	if f.closed.CompareAndSwap(false, true) {
		close(f.done)
	}
	return nil
}

// fakeOpener serves a fixed device list and a queue of sources
type fakeOpener struct {
	devices []Device
	listErr error
	sources []*fakeSource
	opened  int
}

func (f *fakeOpener) List() ([]Device, error) {
	return f.devices, f.listErr
}

func (f *fakeOpener) Open(Device) (FrameSource, error) {
	src := f.sources[f.opened]
	f.opened++
	return src, nil
}

func qrImage(t *testing.T, text string) image.Image {
	t.Helper()
	code, err := qrgen.New(text, qrgen.Medium)
	require.NoError(t, err)
	return code.Image(256)
}

func blankFrame() image.Image {
	return image.NewGray(image.Rect(0, 0, 64, 64))
}

func waitOutcome(t *testing.T, sc *Scan) Outcome {
	t.Helper()
	select {
	case o := <-sc.Done():
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("scan did not resolve")
		return Outcome{}
	}
}

func TestStartDecodesOneCodeAndReleasesCamera(t *testing.T) {
	src := newFakeSource()
	src.frames <- blankFrame()
	src.frames <- qrImage(t, "BLACKCAT_ALLEY_001")

	opener := &fakeOpener{
		devices: []Device{{Path: "/dev/video0", Label: "Integrated Camera"}},
		sources: []*fakeSource{src},
	}
	scanner := NewWithOpener(opener)

	sc, err := scanner.Start(context.Background())
	require.NoError(t, err)

	o := waitOutcome(t, sc)
	require.NoError(t, o.Err)
	assert.Equal(t, "BLACKCAT_ALLEY_001", o.Text)
	assert.True(t, src.closed.Load(), "camera must be released after decode")
}

func TestStartNoCamera(t *testing.T) {
	scanner := NewWithOpener(&fakeOpener{})
	_, err := scanner.Start(context.Background())
	assert.ErrorIs(t, err, ErrNoCamera)

	// The failed start must not leave the scanner busy
	_, err = scanner.Start(context.Background())
	assert.ErrorIs(t, err, ErrNoCamera)
}

func TestStartRejectsConcurrentScan(t *testing.T) {
	src := newFakeSource()
	opener := &fakeOpener{
		devices: []Device{{Path: "/dev/video0"}},
		sources: []*fakeSource{src},
	}
	scanner := NewWithOpener(opener)

	sc, err := scanner.Start(context.Background())
	require.NoError(t, err)
	defer sc.Stop()

	_, err = scanner.Start(context.Background())
	assert.ErrorIs(t, err, ErrScanActive)
}

func TestStopWhilePendingLeavesScannerReusable(t *testing.T) {
	first := newFakeSource()
	second := newFakeSource()
	second.frames <- qrImage(t, "ART_MUSEUM_002")

	opener := &fakeOpener{
		devices: []Device{{Path: "/dev/video0"}},
		sources: []*fakeSource{first, second},
	}
	scanner := NewWithOpener(opener)

	sc, err := scanner.Start(context.Background())
	require.NoError(t, err)

	sc.Stop()
	assert.ErrorIs(t, waitOutcome(t, sc).Err, ErrStopped)
	assert.True(t, first.closed.Load())

	// Stop twice must be harmless
	sc.Stop()

	sc2, err := scanner.Start(context.Background())
	require.NoError(t, err)
	o := waitOutcome(t, sc2)
	require.NoError(t, o.Err)
	assert.Equal(t, "ART_MUSEUM_002", o.Text)
}

func TestCameraFailureSurfacesAndReleases(t *testing.T) {
	src := newFakeSource()
	opener := &fakeOpener{
		devices: []Device{{Path: "/dev/video0"}},
		sources: []*fakeSource{src},
	}
	scanner := NewWithOpener(opener)

	sc, err := scanner.Start(context.Background())
	require.NoError(t, err)

	// Closing the source from underneath simulates a device failure
	require.NoError(t, src.Close())

	o := waitOutcome(t, sc)
	var camErr *CameraError
	assert.ErrorAs(t, o.Err, &camErr)
}

func TestSubmitManual(t *testing.T) {
	src := newFakeSource()
	opener := &fakeOpener{
		devices: []Device{{Path: "/dev/video0"}},
		sources: []*fakeSource{src},
	}
	scanner := NewWithOpener(opener)

	sc, err := scanner.Start(context.Background())
	require.NoError(t, err)

	assert.False(t, sc.SubmitManual(""))
	assert.False(t, sc.SubmitManual("   "))

	require.True(t, sc.SubmitManual("BLACKCAT_ALLEY_001"))
	o := waitOutcome(t, sc)
	require.NoError(t, o.Err)
	assert.Equal(t, "BLACKCAT_ALLEY_001", o.Text)
	assert.True(t, src.closed.Load(), "manual entry must release the camera")

	// A second submission cannot deliver a second outcome
	assert.True(t, sc.SubmitManual("ART_MUSEUM_002"))
	select {
	case o, ok := <-sc.Done():
		if ok {
			t.Fatalf("unexpected second outcome: %+v", o)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManualTrimsInput(t *testing.T) {
	text, ok := Manual("  DISCOVERY_WORLD_003\n")
	require.True(t, ok)
	assert.Equal(t, "DISCOVERY_WORLD_003", text)

	_, ok = Manual(" \t ")
	assert.False(t, ok)
}

func TestSelectDevicePrefersRearLabels(t *testing.T) {
	devices := []Device{
		{Path: "/dev/video0", Label: "Front Camera"},
		{Path: "/dev/video2", Label: "Back Camera"},
	}
	assert.Equal(t, "/dev/video2", SelectDevice(devices).Path)

	devices = []Device{
		{Path: "/dev/video0", Label: "Front Camera"},
		{Path: "/dev/video1", Label: "Rear Wide Camera"},
	}
	assert.Equal(t, "/dev/video1", SelectDevice(devices).Path)

	devices = []Device{
		{Path: "/dev/video0", Label: "Integrated Camera"},
		{Path: "/dev/video1", Label: "USB Camera"},
	}
	assert.Equal(t, "/dev/video0", SelectDevice(devices).Path)
}
