package capture

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Config holds capture session configuration.
type Config struct {
	// QueueSize is the capacity of the frame delivery queue between
	// the acquisition goroutine and the dispatch goroutine. When the
	// consumer falls behind, the oldest queued frame is evicted so the
	// acquisition loop never blocks (drop-oldest policy). Default 8.
	QueueSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		QueueSize: 8,
	}
}

// Session owns at most one open video source at a time and streams its
// frames to a Consumer.
//
// Each Start creates fresh run state (handle, queue, goroutines);
// nothing is reused across stop/start cycles. Start and Stop are safe
// for concurrent use; frame and error delivery happens on a dedicated
// dispatch goroutine so a slow consumer cannot stall frame reads.
type Session struct {
	cfg      Config
	backend  Backend
	consumer Consumer
	logger   *slog.Logger

	mu  sync.Mutex // serializes Start and Stop
	run *run

	state  atomic.Int32
	source atomic.Value // Source of the active run

	framesRead      atomic.Uint64
	framesDelivered atomic.Uint64
	framesDropped   atomic.Uint64
}

// run is the per-start state of one acquisition cycle.
type run struct {
	id           string
	dev          Handle
	stop         chan struct{}
	events       chan event
	loopDone     chan struct{}
	dispatchDone chan struct{}
}

type event struct {
	frame Frame
	err   error
}

// NewSession creates a capture session. The consumer is required; a
// nil logger falls back to slog.Default.
func NewSession(cfg Config, backend Backend, consumer Consumer, logger *slog.Logger) *Session {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		cfg:      cfg,
		backend:  backend,
		consumer: consumer,
		logger:   logger,
	}
}

// Start opens the source and begins the acquisition loop. If a
// previous run is still active it is fully stopped first, so its
// handle is released before the new open is attempted. On an open
// failure the session stays idle, no loop is started and the error
// consumer is not invoked; the returned error is the only signal.
//
// Start returns promptly once the source is open; it does not block
// for the lifetime of streaming.
func (s *Session) Start(src Source, hints Hints) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Misuse policy: starting over a live run forces a synchronous
	// stop of the prior run, never a silent leak.
	s.stopLocked()

	s.state.Store(int32(StateOpening))

	dev, err := s.backend.Open(src, hints)
	if err != nil {
		s.state.Store(int32(StateIdle))
		s.logger.Warn("failed to open source", "source", src.String(), "error", err)
		return fmt.Errorf("start %s: %w", src, err)
	}

	r := &run{
		id:           uuid.NewString(),
		dev:          dev,
		stop:         make(chan struct{}),
		events:       make(chan event, s.cfg.QueueSize),
		loopDone:     make(chan struct{}),
		dispatchDone: make(chan struct{}),
	}

	s.run = r
	s.source.Store(src)
	s.framesRead.Store(0)
	s.framesDelivered.Store(0)
	s.framesDropped.Store(0)
	s.state.Store(int32(StateRunning))

	go s.acquisitionLoop(r)
	go s.dispatchLoop(r)

	s.logger.Info("capture started",
		"run_id", r.id,
		"source", src.String(),
		"width", hints.Width,
		"height", hints.Height,
		"fps", hints.FPS,
	)

	return nil
}

// Stop terminates the acquisition loop and blocks until the loop
// goroutine has exited and the source handle is released. After Stop
// returns no further frame or error is delivered. Stopping a session
// that is not running is a no-op.
//
// Stop must not be called from inside a consumer callback.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	r := s.run
	if r == nil {
		return
	}

	s.state.Store(int32(StateStopping))

	close(r.stop)
	<-r.loopDone // acquisition goroutine exited, handle released

	close(r.events) // safe: the only sender is done
	<-r.dispatchDone

	s.run = nil
	s.state.Store(int32(StateIdle))
	s.logger.Info("capture stopped", "run_id", r.id)
}

// acquisitionLoop reads frames until stopped or until a read fails.
// The device handle is released exactly once, here, on both exit
// paths, before the goroutine finishes.
func (s *Session) acquisitionLoop(r *run) {
	defer close(r.loopDone)
	defer r.dev.Close()

	var seq uint64
	for {
		select {
		case <-r.stop:
			return
		default:
		}

		f, err := r.dev.Read()
		if err != nil {
			select {
			case <-r.stop:
				// Stop raced the in-flight read; not a failure.
				return
			default:
			}

			s.state.Store(int32(StateFailed))
			s.logger.Warn("read failed, capture loop exiting",
				"run_id", r.id, "error", err)
			s.enqueue(r, event{err: err})
			return
		}

		seq++
		f.Seq = seq
		s.framesRead.Add(1)
		s.enqueue(r, event{frame: f})
	}
}

// enqueue hands an event to the dispatch goroutine without ever
// blocking: when the queue is full the oldest queued frame is evicted.
// With a single producer the send after an eviction cannot block, so
// the terminal error event is never lost.
func (s *Session) enqueue(r *run, ev event) {
	for {
		select {
		case r.events <- ev:
			return
		default:
		}

		select {
		case old := <-r.events:
			if old.err == nil {
				s.framesDropped.Add(1)
			}
		default:
		}
	}
}

// dispatchLoop delivers events to the consumer in queue order. Once a
// stop has been signalled everything still queued is discarded, so no
// delivery can happen after Stop returns.
func (s *Session) dispatchLoop(r *run) {
	defer close(r.dispatchDone)

	for ev := range r.events {
		select {
		case <-r.stop:
			if ev.err == nil {
				s.framesDropped.Add(1)
			}
			continue
		default:
		}

		if ev.err != nil {
			s.consumer.OnError(ev.err)
			continue
		}

		s.framesDelivered.Add(1)
		s.consumer.OnFrame(ev.frame)
	}
}

// State returns the current session state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Source returns the source of the active (or most recent) run and
// whether one exists.
func (s *Session) Source() (Source, bool) {
	v := s.source.Load()
	if v == nil {
		return Source{}, false
	}
	return v.(Source), true
}

// Stats returns counters for the current or most recent run.
func (s *Session) Stats() Stats {
	return Stats{
		FramesRead:      s.framesRead.Load(),
		FramesDelivered: s.framesDelivered.Load(),
		FramesDropped:   s.framesDropped.Load(),
		State:           s.State().String(),
		Backend:         s.backend.Name(),
	}
}
