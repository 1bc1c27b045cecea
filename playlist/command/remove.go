package command

import (
	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/playlist"
)

// TrashMover optionally moves a removed FileItem's backing file to trash
// (and back), letting Remove support the original's "move into trash on
// remove, restore on undo" behavior without this package depending on a
// particular desktop trash implementation. A nil TrashMover makes Remove
// behave as a plain in-memory removal.
type TrashMover interface {
	MoveIntoTrash(path string) error
	RestoreFromTrash(path string) error
}

// Remove deletes the items at indices (ascending order) in one undoable
// step, optionally moving each FileItem's backing file to trash,
// grounded on RemovePLItemsCommand.
type Remove struct {
	list         *playlist.Playlist
	items        []playlist.Item
	indices      []int
	trash        TrashMover
	moveToTrash  bool
	itemsRemoved bool
	trashedPaths map[int]string
}

// NewRemove captures the items currently at indices for removal. When
// moveToTrash is true and trash is non-nil, Perform also moves each
// FileItem's file to trash and Undo restores it.
func NewRemove(list *playlist.Playlist, indices []int, moveToTrash bool, trash TrashMover) (*Remove, error) {
	items := make([]playlist.Item, len(indices))
	for i, idx := range indices {
		item := list.ItemAt(idx)
		if item == nil {
			return nil, errs.New(errs.BadIndex, "remove source index %d out of range", idx)
		}
		items[i] = item
	}
	return &Remove{
		list:        list,
		items:       items,
		indices:     append([]int(nil), indices...),
		trash:       trash,
		moveToTrash: moveToTrash && trash != nil,
	}, nil
}

func (r *Remove) InitCheck() error {
	if len(r.items) == 0 {
		return errs.New(errs.NoInit, "remove command has no items")
	}
	return nil
}

func (r *Remove) Perform() error {
	r.itemsRemoved = true

	lastRemoved := -1
	for i, idx := range r.indices {
		lastRemoved = idx - i
		if _, err := r.list.RemoveItem(lastRemoved); err != nil {
			return errs.Wrap(err, "remove: remove item")
		}
	}

	if r.list.CurrentItemIndex() == -1 {
		r.list.SetCurrentItemIndex(lastRemoved, true)
	}

	if r.moveToTrash {
		r.trashedPaths = make(map[int]string, len(r.items))
		for i, item := range r.items {
			fi, ok := item.(*playlist.FileItem)
			if !ok {
				continue
			}
			if err := r.trash.MoveIntoTrash(fi.Path); err != nil {
				continue
			}
			r.trashedPaths[i] = fi.Path
		}
	}

	return nil
}

func (r *Remove) Undo() error {
	r.itemsRemoved = false

	if r.moveToTrash {
		for i := range r.items {
			if path, ok := r.trashedPaths[i]; ok {
				_ = r.trash.RestoreFromTrash(path)
			}
		}
	}

	current := r.list.ItemAt(r.list.CurrentItemIndex())

	for i, item := range r.items {
		if !r.list.AddItemAt(item, r.indices[i]) {
			return errs.New(errs.OutOfMemory, "remove undo: failed to restore item")
		}
	}

	if current != nil {
		r.list.SetCurrentItemIndex(r.list.IndexOf(current), false)
	}
	return nil
}

func (r *Remove) Name() string {
	switch {
	case r.moveToTrash && len(r.items) > 1:
		return "Remove Entries into Trash"
	case r.moveToTrash:
		return "Remove Entry into Trash"
	case len(r.items) > 1:
		return "Remove Entries"
	default:
		return "Remove Entry"
	}
}
