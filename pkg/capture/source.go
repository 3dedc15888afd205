package capture

import (
	"fmt"
	"strings"
)

// SourceKind discriminates the two ways a source can be identified.
type SourceKind int

const (
	// SourceDevice identifies a local camera by non-negative index.
	SourceDevice SourceKind = iota
	// SourceStream identifies a network or file stream by URL.
	SourceStream
)

// Source identifies which camera or stream to open. It is a tagged
// variant: exactly one of the device index or the stream URL is set.
// A Source is immutable once passed to Start.
type Source struct {
	kind  SourceKind
	index int
	url   string
}

// Device returns a Source for the camera at the given index.
func Device(index int) Source {
	return Source{kind: SourceDevice, index: index}
}

// Stream returns a Source for a network or file stream. URL syntax is
// not validated here; the open attempt decides.
func Stream(url string) Source {
	return Source{kind: SourceStream, url: url}
}

// Kind returns the variant tag.
func (s Source) Kind() SourceKind { return s.kind }

// Index returns the device index. Only meaningful for SourceDevice.
func (s Source) Index() int { return s.index }

// URL returns the stream address. Only meaningful for SourceStream.
func (s Source) URL() string { return s.url }

// IsWebsocket reports whether the source is a stream with a
// websocket scheme, which routes to the wsfeed backend.
func (s Source) IsWebsocket() bool {
	if s.kind != SourceStream {
		return false
	}
	return strings.HasPrefix(s.url, "ws://") || strings.HasPrefix(s.url, "wss://")
}

// String returns a log-friendly identifier.
func (s Source) String() string {
	switch s.kind {
	case SourceDevice:
		return fmt.Sprintf("device:%d", s.index)
	case SourceStream:
		return s.url
	default:
		return "invalid"
	}
}

// ParseSource interprets a configuration value as a Source: a string of
// digits becomes a device index, anything else a stream URL.
func ParseSource(v string) Source {
	v = strings.TrimSpace(v)
	if v == "" {
		return Device(0)
	}
	idx := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return Stream(v)
		}
		idx = idx*10 + int(r-'0')
	}
	return Device(idx)
}
