package capture

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// openCVBackend opens local camera devices and stream URLs through
// OpenCV's VideoCapture.
type openCVBackend struct {
	logger *slog.Logger
}

func newOpenCVBackend(logger *slog.Logger) *openCVBackend {
	return &openCVBackend{logger: logger}
}

func (b *openCVBackend) Name() string { return BackendOpenCV }

// Open opens the source and applies resolution/fps hints. OpenCV may
// clamp the hints to a supported mode; the applied values are not read
// back.
func (b *openCVBackend) Open(src Source, hints Hints) (Handle, error) {
	var (
		cap *gocv.VideoCapture
		err error
	)

	switch src.Kind() {
	case SourceDevice:
		cap, err = gocv.VideoCaptureDevice(src.Index())
	case SourceStream:
		cap, err = gocv.VideoCaptureFile(src.URL())
	default:
		return nil, fmt.Errorf("%w: invalid source", ErrOpenFailed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFailed, src, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("%w: %s", ErrOpenFailed, src)
	}

	if hints.Width > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(hints.Width))
	}
	if hints.Height > 0 {
		cap.Set(gocv.VideoCaptureFrameHeight, float64(hints.Height))
	}
	if hints.FPS > 0 {
		cap.Set(gocv.VideoCaptureFPS, float64(hints.FPS))
	}

	b.logger.Debug("opened video source",
		"source", src.String(),
		"width", hints.Width,
		"height", hints.Height,
		"fps", hints.FPS,
	)

	mat := gocv.NewMat()
	return &openCVDevice{cap: cap, mat: mat}, nil
}

// openCVDevice wraps one VideoCapture handle plus a reusable Mat for
// decoding.
type openCVDevice struct {
	cap *gocv.VideoCapture

	mu     sync.Mutex
	mat    gocv.Mat
	seq    uint64
	closed bool
}

func (d *openCVDevice) Read() (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return Frame{}, ErrClosed
	}

	if ok := d.cap.Read(&d.mat); !ok || d.mat.Empty() {
		return Frame{}, ErrReadFailed
	}

	data, err := d.mat.ToBytes()
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	d.seq++
	return Frame{
		Data:      data,
		Width:     d.mat.Cols(),
		Height:    d.mat.Rows(),
		Channels:  d.mat.Channels(),
		Seq:       d.seq,
		Timestamp: time.Now(),
	}, nil
}

func (d *openCVDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	d.mat.Close()
	return d.cap.Close()
}

// EncodeJPEG encodes a BGR frame as JPEG. Used by consumers that
// forward frames to dashboard clients.
func EncodeJPEG(f Frame) ([]byte, error) {
	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Data)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
