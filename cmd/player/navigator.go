package main

import (
	"github.com/zsiec/playcore/controller"
	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/playlist"
)

// playlistNavigator implements scripting.Navigator by composing a
// *playlist.Playlist with a *controller.Controller: Next/Prev is
// "move the playlist's current index, then load whatever lands there",
// the same two steps BWindow-level skip handlers perform against
// BPlaylist/Controller in the original (§4.7, §6 "Next"/"Prev").
type playlistNavigator struct {
	list *playlist.Playlist
	ctrl *controller.Controller
}

func newPlaylistNavigator(list *playlist.Playlist, ctrl *controller.Controller) *playlistNavigator {
	return &playlistNavigator{list: list, ctrl: ctrl}
}

func (n *playlistNavigator) Next() error { return n.skip(1) }
func (n *playlistNavigator) Prev() error { return n.skip(-1) }

func (n *playlistNavigator) skip(delta int) error {
	canPrev, canNext := n.list.GetSkipInfo()
	if delta > 0 && !canNext {
		return errs.New(errs.BadIndex, "no next playlist item")
	}
	if delta < 0 && !canPrev {
		return errs.New(errs.BadIndex, "no previous playlist item")
	}

	target := n.list.CurrentItemIndex() + delta
	if !n.list.SetCurrentItemIndex(target, false) {
		return errs.New(errs.BadIndex, "index %d out of range", target)
	}

	item := n.list.ItemAt(target)
	if item == nil {
		return errs.New(errs.EntryNotFound, "no item at index %d", target)
	}
	return n.ctrl.SetTo(item)
}
