package main

import (
	"log/slog"
	"testing"

	"github.com/zsiec/playcore/controller"
	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/playlist"
	"github.com/zsiec/playcore/track"
)

// countingFactory always fails to open an item; the navigator tests only
// care about playlist index bookkeeping and delegation to Controller.SetTo,
// not about a working track-supplier stack.
type countingFactory struct {
	calls int
}

func (f *countingFactory) OpenItem(item playlist.Item) (track.Supplier, error) {
	f.calls++
	return nil, errs.New(errs.NotSupported, "stub factory never opens anything")
}

func newTestController(t *testing.T) (*controller.Controller, *countingFactory) {
	t.Helper()
	f := &countingFactory{}
	log := slog.New(slog.DiscardHandler)
	return controller.New(f, nil, log), f
}

func TestPlaylistNavigatorBoundaries(t *testing.T) {
	t.Parallel()

	list := playlist.New(slog.New(slog.DiscardHandler))
	defer list.Close()
	ctrl, factory := newTestController(t)
	defer ctrl.Close()
	nav := newPlaylistNavigator(list, ctrl)

	// Empty playlist: both directions refuse before ever touching Controller.
	if err := nav.Next(); !errs.Is(err, errs.BadIndex) {
		t.Fatalf("Next() on empty playlist = %v, want errs.BadIndex", err)
	}
	if err := nav.Prev(); !errs.Is(err, errs.BadIndex) {
		t.Fatalf("Prev() on empty playlist = %v, want errs.BadIndex", err)
	}
	if factory.calls != 0 {
		t.Fatalf("factory.calls = %d, want 0 (boundary checks happen before opening anything)", factory.calls)
	}

	list.AddItem(playlist.NewFileItem("/a.mp4"))
	list.AddItem(playlist.NewFileItem("/b.mp4"))
	list.SetCurrentItemIndex(0, false)

	if err := nav.Prev(); !errs.Is(err, errs.BadIndex) {
		t.Fatalf("Prev() at index 0 = %v, want errs.BadIndex", err)
	}

	// Next() from index 0 loads item 1; SetTo will fail against the stub
	// factory, but the index must still have moved.
	_ = nav.Next()
	if list.CurrentItemIndex() != 1 {
		t.Fatalf("CurrentItemIndex = %d, want 1", list.CurrentItemIndex())
	}
	if factory.calls != 1 {
		t.Fatalf("factory.calls = %d, want 1", factory.calls)
	}

	if err := nav.Next(); !errs.Is(err, errs.BadIndex) {
		t.Fatalf("Next() at last index = %v, want errs.BadIndex", err)
	}
}
