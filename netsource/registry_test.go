package netsource

import (
	"context"
	"testing"

	"github.com/zsiec/playcore/errs"
)

type fakeOpener struct {
	calledWith string
}

func (f *fakeOpener) Open(_ context.Context, rawURL string) (Stream, error) {
	f.calledWith = rawURL
	return nil, nil
}

func TestRegistryDispatchesByScheme(t *testing.T) {
	t.Parallel()
	r := &Registry{}
	fo := &fakeOpener{}
	r.Register("fake", fo)

	if _, err := r.Open(context.Background(), "fake://example/stream"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if fo.calledWith != "fake://example/stream" {
		t.Fatalf("opener called with %q, want full URL", fo.calledWith)
	}
}

func TestRegistryUnknownSchemeIsNotSupported(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	_, err := r.Open(context.Background(), "ftp://example/stream")
	if !errs.Is(err, errs.NotSupported) {
		t.Fatalf("Open with unregistered scheme: err = %v, want NotSupported", err)
	}
}

func TestNewRegistryRegistersDefaultSchemes(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	for _, scheme := range []string{"srt", "http", "https"} {
		if _, ok := r.openers[scheme]; !ok {
			t.Fatalf("NewRegistry did not register scheme %q", scheme)
		}
	}
}
