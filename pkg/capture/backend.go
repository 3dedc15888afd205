package capture

import (
	"fmt"
	"log/slog"
)

// Hints carry the target resolution and frame rate applied to a source
// at open time. They are best effort: the source may silently clamp to
// a supported mode and the session does not re-validate the result.
// Zero values mean "leave the source default".
type Hints struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	FPS    int `json:"fps"`
}

// DefaultHints returns the capture defaults (1280x720 at 30 fps).
func DefaultHints() Hints {
	return Hints{Width: 1280, Height: 720, FPS: 30}
}

// Handle is one open video source. Read and Close are called from the
// session's acquisition goroutine only; Close is called exactly once
// per handle.
type Handle interface {
	// Read blocks until the next decoded frame is available and
	// returns it, or returns an error when the source stops yielding
	// frames. There is no read timeout; cancellation granularity of a
	// session is one in-flight read.
	Read() (Frame, error)

	// Close releases the underlying source handle.
	Close() error
}

// Backend opens sources into device handles.
type Backend interface {
	// Open attempts to open the source, applying hints best effort.
	// A failed open must not leak a handle.
	Open(src Source, hints Hints) (Handle, error)

	// Name returns the backend name (e.g. "opencv", "wsfeed", "mock").
	Name() string
}

// Backend names accepted by NewBackend.
const (
	BackendAuto   = "auto"
	BackendOpenCV = "opencv"
	BackendWSFeed = "wsfeed"
	BackendMock   = "mock"
)

// NewBackend creates a capture backend by name. BackendAuto selects
// per source at open time: websocket stream URLs go to the wsfeed
// backend, everything else to OpenCV.
func NewBackend(name string, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch name {
	case BackendAuto, "":
		return &autoBackend{
			opencv: newOpenCVBackend(logger),
			wsfeed: newWSFeedBackend(logger),
		}, nil
	case BackendOpenCV:
		return newOpenCVBackend(logger), nil
	case BackendWSFeed:
		return newWSFeedBackend(logger), nil
	case BackendMock:
		return NewMockBackend(logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, name)
	}
}

// autoBackend routes each open to the backend that understands the
// source.
type autoBackend struct {
	opencv Backend
	wsfeed Backend
}

func (b *autoBackend) Open(src Source, hints Hints) (Handle, error) {
	if src.IsWebsocket() {
		return b.wsfeed.Open(src, hints)
	}
	return b.opencv.Open(src, hints)
}

func (b *autoBackend) Name() string { return BackendAuto }
