// Package capture provides camera device enumeration and a capture
// session that owns one open video source at a time, reads frames on a
// dedicated goroutine, and hands them to a consumer across the
// goroutine boundary.
//
// This package supports multiple backends:
//   - OpenCV (gocv) - Local camera devices and RTSP/file URLs
//   - WSFeed - Remote JPEG frame feeds over websocket
//   - Mock - CI/Testing without hardware
package capture

import (
	"time"
)

// Frame is an owned snapshot of one decoded video frame.
//
// Data holds raw interleaved pixel bytes (len == Width*Height*Channels).
// A Frame passed to a consumer callback is only valid for the duration
// of the call; consumers that retain it must copy Data.
type Frame struct {
	// Data contains the raw pixel bytes.
	Data []byte

	// Width and Height are the frame dimensions in pixels.
	Width  int
	Height int

	// Channels is the number of interleaved channels (3 for BGR).
	Channels int

	// Seq is the read sequence number within the current run,
	// starting at 1.
	Seq uint64

	// Timestamp is when the frame was read from the source.
	Timestamp time.Time
}

// Clone returns a deep copy of the frame that the caller may retain.
func (f Frame) Clone() Frame {
	c := f
	c.Data = make([]byte, len(f.Data))
	copy(c.Data, f.Data)
	return c
}

// Consumer receives frames and the terminal error from a capture
// session. Both methods are invoked from the session's dispatch
// goroutine, never concurrently with each other, in read order.
//
// Callbacks must not call back into Session.Stop or Session.Start;
// doing so would deadlock the dispatch goroutine.
type Consumer interface {
	// OnFrame is invoked once per delivered frame.
	OnFrame(Frame)

	// OnError is invoked at most once per run, when the acquisition
	// loop terminates on a read failure.
	OnError(error)
}

// ConsumerFuncs adapts plain functions to the Consumer interface.
// Nil funcs are skipped.
type ConsumerFuncs struct {
	Frame func(Frame)
	Error func(error)
}

func (c ConsumerFuncs) OnFrame(f Frame) {
	if c.Frame != nil {
		c.Frame(f)
	}
}

func (c ConsumerFuncs) OnError(err error) {
	if c.Error != nil {
		c.Error(err)
	}
}

// State describes the capture session lifecycle.
type State int32

const (
	// StateIdle means no source is open and no loop is running.
	StateIdle State = iota
	// StateOpening means Start is opening the underlying source.
	StateOpening
	// StateRunning means the acquisition loop is reading frames.
	StateRunning
	// StateStopping means Stop is tearing the run down.
	StateStopping
	// StateFailed means the acquisition loop exited on a read failure.
	// The source handle is already released; Stop returns the session
	// to StateIdle.
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stats contains counters for the current or most recent run.
type Stats struct {
	// FramesRead is the number of frames read from the source.
	FramesRead uint64 `json:"frames_read"`

	// FramesDelivered is the number of frames handed to the consumer.
	FramesDelivered uint64 `json:"frames_delivered"`

	// FramesDropped is the number of frames evicted from the delivery
	// queue because the consumer fell behind, plus frames discarded
	// during teardown.
	FramesDropped uint64 `json:"frames_dropped"`

	// State is the session state at the time of the call.
	State string `json:"state"`

	// Backend is the name of the capture backend.
	Backend string `json:"backend"`
}
