package command

import (
	"math/rand"

	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/playlist"
)

// Randomize reorders the items at indices into a precomputed random
// permutation, grounded on RandomizePLItemsCommand: the permutation is
// computed once in the constructor (not re-rolled on redo), so undo/redo
// is deterministic (§8 "Command stack" testable property).
type Randomize struct {
	list        *playlist.Playlist
	items       []playlist.Item
	indices     []int
	permutation []int
}

// NewRandomize captures the items at indices (ascending order) and
// precomputes the permutation Perform will apply.
func NewRandomize(list *playlist.Playlist, indices []int) (*Randomize, error) {
	if len(indices) == 0 {
		return nil, errs.New(errs.NoInit, "randomize command has no items")
	}
	items := make([]playlist.Item, len(indices))
	for i, idx := range indices {
		item := list.ItemAt(idx)
		if item == nil {
			return nil, errs.New(errs.BadIndex, "randomize source index %d out of range", idx)
		}
		items[i] = item
	}

	permutation := rand.Perm(len(indices))

	return &Randomize{
		list:        list,
		items:       items,
		indices:     append([]int(nil), indices...),
		permutation: permutation,
	}, nil
}

func (r *Randomize) InitCheck() error {
	if len(r.items) < 2 {
		return errs.New(errs.NotSupported, "randomize is a no-op with fewer than two items")
	}
	return nil
}

func (r *Randomize) Perform() error { return r.apply(true) }
func (r *Randomize) Undo() error    { return r.apply(false) }

func (r *Randomize) apply(randomOrder bool) error {
	current := r.list.ItemAt(r.list.CurrentItemIndex())

	for i, idx := range r.indices {
		if _, err := r.list.RemoveItemKeepCurrent(idx - i); err != nil {
			return errs.Wrap(err, "randomize: remove item")
		}
	}

	for i, idx := range r.indices {
		item := r.items[i]
		if randomOrder {
			item = r.items[r.permutation[i]]
		}
		if !r.list.AddItemAt(item, idx) {
			return errs.New(errs.OutOfMemory, "randomize: failed to reinsert item")
		}
	}

	if current != nil {
		r.list.SetCurrentItemIndex(r.list.IndexOf(current), false)
	}
	return nil
}

func (r *Randomize) Name() string { return "Randomize Entries" }
