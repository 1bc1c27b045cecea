package subtitle

import (
	"testing"
	"time"
)

func TestIndexAtLookup(t *testing.T) {
	t.Parallel()

	idx := NewIndex([]Cue{
		{Start: 5 * time.Second, Duration: 2 * time.Second, Text: "second"},
		{Start: time.Second, Duration: 2 * time.Second, Text: "first"},
	})

	cases := []struct {
		at     time.Duration
		want   string
		wantOK bool
	}{
		{0, "", false},
		{1500 * time.Millisecond, "first", true},
		{3 * time.Second, "", false},
		{5500 * time.Millisecond, "second", true},
		{8 * time.Second, "", false},
	}

	for _, c := range cases {
		text, ok := idx.At(c.at)
		if ok != c.wantOK || (ok && text != c.want) {
			t.Errorf("At(%v) = (%q, %v), want (%q, %v)", c.at, text, ok, c.want, c.wantOK)
		}
	}
}

func TestIndexAtEmpty(t *testing.T) {
	t.Parallel()

	idx := NewIndex(nil)
	if _, ok := idx.At(time.Second); ok {
		t.Fatal("empty index should never report a hit")
	}
}

func TestFileOpenerRejectsUnsupportedExtension(t *testing.T) {
	t.Parallel()

	var o FileOpener
	if _, err := o.Open("captions.vtt"); err == nil {
		t.Fatal("expected an error opening an unsupported subtitle extension")
	}
}
