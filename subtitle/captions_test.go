package subtitle

import (
	"testing"
	"time"
)

func TestCaptionBridgeChannelLookup(t *testing.T) {
	t.Parallel()

	b := NewCaptionBridge()
	b.Caption(time.Second, 1, "hello")
	b.Caption(3*time.Second, 1, "")
	b.Caption(4*time.Second, 1, "world")
	b.Caption(2*time.Second, 2, "other channel")

	ch1 := b.Channel(1)
	if text, ok := ch1.At(1500 * time.Millisecond); !ok || text != "hello" {
		t.Fatalf("channel 1 At(1.5s) = (%q, %v), want (\"hello\", true)", text, ok)
	}
	if _, ok := ch1.At(3500 * time.Millisecond); ok {
		t.Fatal("channel 1 should be cleared at 3.5s")
	}
	if text, ok := ch1.At(5 * time.Second); !ok || text != "world" {
		t.Fatalf("channel 1 At(5s) = (%q, %v), want (\"world\", true)", text, ok)
	}

	ch2 := b.Channel(2)
	if text, ok := ch2.At(2500 * time.Millisecond); !ok || text != "other channel" {
		t.Fatalf("channel 2 At(2.5s) = (%q, %v), want (\"other channel\", true)", text, ok)
	}
}

func TestCaptionBridgeUnknownChannelEmpty(t *testing.T) {
	t.Parallel()

	b := NewCaptionBridge()
	b.Caption(time.Second, 1, "hello")

	if _, ok := b.Channel(9).At(time.Second); ok {
		t.Fatal("unpopulated channel should never report a hit")
	}
}
