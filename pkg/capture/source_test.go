package capture

import (
	"testing"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in    string
		kind  SourceKind
		index int
		url   string
	}{
		{"0", SourceDevice, 0, ""},
		{"3", SourceDevice, 3, ""},
		{"12", SourceDevice, 12, ""},
		{" 1 ", SourceDevice, 1, ""},
		{"", SourceDevice, 0, ""},
		{"rtsp://cam.local/stream", SourceStream, 0, "rtsp://cam.local/stream"},
		{"ws://relay:9000/ws/frames", SourceStream, 0, "ws://relay:9000/ws/frames"},
		{"/var/footage/entry.mp4", SourceStream, 0, "/var/footage/entry.mp4"},
	}

	for _, tt := range tests {
		got := ParseSource(tt.in)
		if got.Kind() != tt.kind {
			t.Errorf("ParseSource(%q): expected kind %v, got %v", tt.in, tt.kind, got.Kind())
			continue
		}
		if tt.kind == SourceDevice && got.Index() != tt.index {
			t.Errorf("ParseSource(%q): expected index %d, got %d", tt.in, tt.index, got.Index())
		}
		if tt.kind == SourceStream && got.URL() != tt.url {
			t.Errorf("ParseSource(%q): expected url %q, got %q", tt.in, tt.url, got.URL())
		}
	}
}

func TestSourceIsWebsocket(t *testing.T) {
	if !Stream("ws://relay/feed").IsWebsocket() {
		t.Error("ws:// stream should be websocket")
	}
	if !Stream("wss://relay/feed").IsWebsocket() {
		t.Error("wss:// stream should be websocket")
	}
	if Stream("rtsp://cam/feed").IsWebsocket() {
		t.Error("rtsp:// stream should not be websocket")
	}
	if Device(0).IsWebsocket() {
		t.Error("device source should not be websocket")
	}
}

func TestSourceString(t *testing.T) {
	if got := Device(2).String(); got != "device:2" {
		t.Errorf("expected device:2, got %q", got)
	}
	if got := Stream("rtsp://x").String(); got != "rtsp://x" {
		t.Errorf("expected rtsp://x, got %q", got)
	}
}

func TestFrameClone(t *testing.T) {
	f := Frame{Data: []byte{1, 2, 3}, Width: 1, Height: 1, Channels: 3, Seq: 9}
	c := f.Clone()

	c.Data[0] = 99
	if f.Data[0] != 1 {
		t.Error("Clone shares the underlying data")
	}
	if c.Seq != f.Seq || c.Width != f.Width {
		t.Error("Clone lost metadata")
	}
}
