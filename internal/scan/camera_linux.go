//go:build linux

package scan

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blackjack/webcam"
)

// frameWaitSeconds bounds a single WaitForFrame call so the capture loop can
// observe context cancellation
const frameWaitSeconds = 1

// v4l2Opener enumerates and opens V4L2 devices
type v4l2Opener struct{}

func systemOpener() Opener {
	return v4l2Opener{}
}

// List implements Opener. Labels come from sysfs so selection heuristics can
// run without opening every device.
func (v4l2Opener) List() ([]Device, error) {
	paths, err := filepath.Glob("/dev/video[0-9]*")
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	devices := make([]Device, 0, len(paths))
	for _, p := range paths {
		devices = append(devices, Device{Path: p, Label: deviceLabel(p)})
	}
	return devices, nil
}

func deviceLabel(devPath string) string {
	name := filepath.Base(devPath)
	data, err := os.ReadFile(filepath.Join("/sys/class/video4linux", name, "name"))
	if err != nil {
		return name
	}
	return strings.TrimSpace(string(data))
}

// Open implements Opener: it negotiates a pixel format, picks a frame size
// and starts streaming.
func (v4l2Opener) Open(d Device) (FrameSource, error) {
	cam, err := webcam.Open(d.Path)
	if err != nil {
		return nil, err
	}

	format, mjpeg, err := pickFormat(cam)
	if err != nil {
		_ = cam.Close()
		return nil, err
	}

	width, height := pickFrameSize(cam.GetSupportedFrameSizes(format))
	_, w, h, err := cam.SetImageFormat(format, width, height)
	if err != nil {
		_ = cam.Close()
		return nil, fmt.Errorf("failed to set image format: %w", err)
	}

	if err := cam.StartStreaming(); err != nil {
		_ = cam.Close()
		return nil, err
	}

	return &v4l2Source{cam: cam, width: int(w), height: int(h), mjpeg: mjpeg}, nil
}

// pickFormat prefers raw YUYV frames and falls back to MJPEG
func pickFormat(cam *webcam.Webcam) (webcam.PixelFormat, bool, error) {
	formats := cam.GetSupportedFormats()

	for f, desc := range formats {
		d := strings.ToUpper(desc)
		if strings.Contains(d, "YUYV") || strings.Contains(d, "YUV 4:2:2") {
			return f, false, nil
		}
	}
	for f, desc := range formats {
		d := strings.ToUpper(desc)
		if strings.Contains(d, "JPEG") || strings.Contains(d, "MJPG") {
			return f, true, nil
		}
	}
	return 0, false, fmt.Errorf("no supported pixel format (have: %v)", formats)
}

// pickFrameSize chooses a modest resolution; QR decoding does not benefit
// from large frames and small ones keep the decode loop fast.
func pickFrameSize(sizes []webcam.FrameSize) (uint32, uint32) {
	const targetWidth = 640
	if len(sizes) == 0 {
		return targetWidth, 480
	}

	best := sizes[0]
	for _, s := range sizes {
		if s.MaxWidth >= targetWidth && (best.MaxWidth < targetWidth || s.MaxWidth < best.MaxWidth) {
			best = s
		}
	}
	return best.MaxWidth, best.MaxHeight
}

// v4l2Source adapts a streaming webcam to the FrameSource interface
type v4l2Source struct {
	cam    *webcam.Webcam
	width  int
	height int
	mjpeg  bool
}

func (s *v4l2Source) ReadFrame(ctx context.Context) (image.Image, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := s.cam.WaitForFrame(frameWaitSeconds)
		switch err.(type) {
		case nil:
		case *webcam.Timeout:
			continue
		default:
			return nil, err
		}

		frame, err := s.cam.ReadFrame()
		if err != nil {
			return nil, err
		}
		if len(frame) == 0 {
			continue
		}

		if s.mjpeg {
			return jpeg.Decode(bytes.NewReader(frame))
		}
		return yuyvToGray(frame, s.width, s.height), nil
	}
}

func (s *v4l2Source) Close() error {
	_ = s.cam.StopStreaming()
	return s.cam.Close()
}

// yuyvToGray keeps only the luma bytes of a packed YUYV frame, which is all
// the QR decoder needs
func yuyvToGray(frame []byte, width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	n := width * height
	if len(frame)/2 < n {
		n = len(frame) / 2
	}
	for i := 0; i < n; i++ {
		img.Pix[i] = frame[i*2]
	}
	return img
}
