package capture

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// MockBackend is an in-memory capture backend for testing. It serves
// synthetic frames for a configurable set of device indices and stream
// URLs, and tracks handle accounting so tests can assert that probes
// and sessions never leak or overlap handles.
type MockBackend struct {
	logger *slog.Logger

	devices map[int]bool
	streams map[string]bool

	frameLimit int           // reads per handle before a read failure, 0 = unlimited
	readDelay  time.Duration // simulated per-read latency
	width      int
	height     int

	mu      sync.Mutex
	busy    map[string]bool // sources currently held open
	open    int             // handles currently open
	maxOpen int             // high-water mark of concurrently open handles

	opens  atomic.Int64
	closes atomic.Int64
}

// MockOption configures a MockBackend.
type MockOption func(*MockBackend)

// WithDevices sets the device indices that open successfully.
func WithDevices(indices ...int) MockOption {
	return func(m *MockBackend) {
		m.devices = make(map[int]bool, len(indices))
		for _, i := range indices {
			m.devices[i] = true
		}
	}
}

// WithStreams sets the stream URLs that open successfully.
func WithStreams(urls ...string) MockOption {
	return func(m *MockBackend) {
		m.streams = make(map[string]bool, len(urls))
		for _, u := range urls {
			m.streams[u] = true
		}
	}
}

// WithFrameLimit makes every handle fail its reads after n successful
// frames, simulating end-of-stream or a device disconnect.
func WithFrameLimit(n int) MockOption {
	return func(m *MockBackend) { m.frameLimit = n }
}

// WithReadDelay adds latency to each read, simulating a real sensor.
func WithReadDelay(d time.Duration) MockOption {
	return func(m *MockBackend) { m.readDelay = d }
}

// WithFrameSize sets the synthetic frame dimensions.
func WithFrameSize(width, height int) MockOption {
	return func(m *MockBackend) {
		m.width = width
		m.height = height
	}
}

// NewMockBackend creates a mock backend. By default device index 0 is
// openable, frames are 64x48 BGR, and reads never fail.
func NewMockBackend(logger *slog.Logger, opts ...MockOption) *MockBackend {
	if logger == nil {
		logger = slog.Default()
	}

	m := &MockBackend{
		logger:  logger,
		devices: map[int]bool{0: true},
		streams: map[string]bool{},
		width:   64,
		height:  48,
		busy:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockBackend) Name() string { return BackendMock }

// Open succeeds when the source is configured openable and not already
// held by another handle; a busy source fails the open, like a real
// camera driver.
func (m *MockBackend) Open(src Source, hints Hints) (Handle, error) {
	ok := false
	switch src.Kind() {
	case SourceDevice:
		ok = m.devices[src.Index()]
	case SourceStream:
		ok = m.streams[src.URL()]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOpenFailed, src)
	}

	key := src.String()

	m.mu.Lock()
	if m.busy[key] {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s: device busy", ErrOpenFailed, src)
	}
	m.busy[key] = true
	m.open++
	if m.open > m.maxOpen {
		m.maxOpen = m.open
	}
	m.mu.Unlock()

	m.opens.Add(1)

	width, height := m.width, m.height
	if hints.Width > 0 {
		width = hints.Width
	}
	if hints.Height > 0 {
		height = hints.Height
	}

	return &mockDevice{
		backend: m,
		key:     key,
		width:   width,
		height:  height,
	}, nil
}

func (m *MockBackend) release(key string) {
	m.mu.Lock()
	delete(m.busy, key)
	m.open--
	m.mu.Unlock()
	m.closes.Add(1)
}

// Opens returns the total number of successful opens.
func (m *MockBackend) Opens() int64 { return m.opens.Load() }

// Closes returns the total number of handle releases.
func (m *MockBackend) Closes() int64 { return m.closes.Load() }

// OpenHandles returns the number of currently open handles.
func (m *MockBackend) OpenHandles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// MaxOpenHandles returns the high-water mark of concurrently open
// handles since the backend was created.
func (m *MockBackend) MaxOpenHandles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxOpen
}

type mockDevice struct {
	backend *MockBackend
	key     string
	width   int
	height  int

	mu     sync.Mutex
	reads  int
	closed bool
}

// Read serves synthetic BGR frames, failing once the backend's frame
// limit is exhausted.
func (d *mockDevice) Read() (Frame, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return Frame{}, ErrClosed
	}
	limit := d.backend.frameLimit
	if limit > 0 && d.reads >= limit {
		d.mu.Unlock()
		return Frame{}, ErrReadFailed
	}
	d.reads++
	seq := uint64(d.reads)
	d.mu.Unlock()

	if d.backend.readDelay > 0 {
		time.Sleep(d.backend.readDelay)
	}

	data := make([]byte, d.width*d.height*3)
	// Seed the buffer so successive frames are distinguishable.
	for i := range data {
		data[i] = byte(seq)
	}

	return Frame{
		Data:      data,
		Width:     d.width,
		Height:    d.height,
		Channels:  3,
		Seq:       seq,
		Timestamp: time.Now(),
	}, nil
}

func (d *mockDevice) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.backend.release(d.key)
	return nil
}

// Ensure MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)
