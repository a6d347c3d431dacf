package fakes

import (
	"bytes"
	"testing"

	"github.com/gobwas/ws"
)

// WSFrames encodes frames as they arrive on the wire.
// Client frames are masked as RFC 6455 requires.
func WSFrames(t testing.TB, clientSide bool, frames ...ws.Frame) []byte {
	var buf bytes.Buffer
	for _, f := range frames {
		if clientSide {
			f = ws.MaskFrame(f)
		}
		if err := ws.WriteFrame(&buf, f); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

// ReadWSFrames decodes all frames in data and unmasks payloads.
func ReadWSFrames(t testing.TB, data []byte) []ws.Frame {
	var frames []ws.Frame
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		f, err := ws.ReadFrame(r)
		if err != nil {
			t.Fatal(err)
		}
		if f.Header.Masked {
			f = ws.UnmaskFrameInPlace(f)
		}
		frames = append(frames, f)
	}
	return frames
}
