package capture

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"
)

const wsHandshakeTimeout = 10 * time.Second

// wsFeedBackend reads frames from a remote relay that pushes one JPEG
// image per binary websocket message (the format the dashboard frame
// feed itself speaks).
type wsFeedBackend struct {
	logger *slog.Logger
}

func newWSFeedBackend(logger *slog.Logger) *wsFeedBackend {
	return &wsFeedBackend{logger: logger}
}

func (b *wsFeedBackend) Name() string { return BackendWSFeed }

// Open dials the feed URL. Hints are not forwarded: a relay decides
// its own encoding, so they are accepted and ignored rather than
// failing the open.
func (b *wsFeedBackend) Open(src Source, hints Hints) (Handle, error) {
	if src.Kind() != SourceStream {
		return nil, fmt.Errorf("%w: wsfeed requires a stream URL", ErrOpenFailed)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: wsHandshakeTimeout,
	}
	conn, _, err := dialer.Dial(src.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFailed, src, err)
	}

	b.logger.Debug("connected to frame feed", "url", src.URL())
	return &wsFeedDevice{conn: conn}, nil
}

type wsFeedDevice struct {
	conn *websocket.Conn

	mu     sync.Mutex
	seq    uint64
	closed bool
}

// Read waits for the next binary message and decodes it. Text
// messages (status chatter from the relay) are skipped.
func (d *wsFeedDevice) Read() (Frame, error) {
	for {
		msgType, data, err := d.conn.ReadMessage()
		if err != nil {
			return Frame{}, fmt.Errorf("%w: %v", ErrReadFailed, err)
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		mat, err := gocv.IMDecode(data, gocv.IMReadColor)
		if err != nil {
			return Frame{}, fmt.Errorf("%w: %v", ErrReadFailed, err)
		}
		if mat.Empty() {
			mat.Close()
			return Frame{}, ErrReadFailed
		}

		pixels, err := mat.ToBytes()
		width, height, channels := mat.Cols(), mat.Rows(), mat.Channels()
		mat.Close()
		if err != nil {
			return Frame{}, fmt.Errorf("%w: %v", ErrReadFailed, err)
		}

		d.mu.Lock()
		d.seq++
		seq := d.seq
		d.mu.Unlock()

		return Frame{
			Data:      pixels,
			Width:     width,
			Height:    height,
			Channels:  channels,
			Seq:       seq,
			Timestamp: time.Now(),
		}, nil
	}
}

func (d *wsFeedDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	// Best effort close frame; the peer may already be gone.
	d.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return d.conn.Close()
}
