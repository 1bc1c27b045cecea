package command

import (
	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/playlist"
)

// Move relocates the items at indices (ascending order) to toIndex in
// one undoable step, grounded on MovePLItemsCommand: the constructor
// captures each item pointer up front and pre-adjusts toIndex for items
// that will be removed ahead of it, so Perform/Undo can replay the same
// remove-then-insert sequence without re-deriving indices from a moving
// target.
type Move struct {
	list    *playlist.Playlist
	items   []playlist.Item
	indices []int
	toIndex int
}

// NewMove captures the items currently at indices (must be ascending)
// for a move to toIndex. Returns an error if any index is out of range.
func NewMove(list *playlist.Playlist, indices []int, toIndex int) (*Move, error) {
	items := make([]playlist.Item, len(indices))
	itemsBeforeIndex := 0
	for i, idx := range indices {
		item := list.ItemAt(idx)
		if item == nil {
			return nil, errs.New(errs.BadIndex, "move source index %d out of range", idx)
		}
		items[i] = item
		if idx < toIndex {
			itemsBeforeIndex++
		}
	}
	return &Move{
		list:    list,
		items:   items,
		indices: append([]int(nil), indices...),
		toIndex: toIndex - itemsBeforeIndex,
	}, nil
}

// InitCheck reports errs.NotSupported when the move is a no-op: the
// insertion point equals the first moved item's original index and the
// moved indices are already contiguous from there.
func (m *Move) InitCheck() error {
	if len(m.indices) == 0 {
		return errs.New(errs.NoInit, "move command has no items")
	}
	index := m.indices[0]
	if index != m.toIndex {
		return nil
	}
	for i := 1; i < len(m.indices); i++ {
		if m.indices[i] != index+1 {
			return nil
		}
		index = m.indices[i]
	}
	return errs.New(errs.NotSupported, "move is a no-op: already contiguous at the target index")
}

func (m *Move) Perform() error {
	current := m.list.ItemAt(m.list.CurrentItemIndex())

	for i, idx := range m.indices {
		if _, err := m.list.RemoveItemKeepCurrent(idx - i); err != nil {
			return errs.Wrap(err, "move: remove source item")
		}
	}
	index := m.toIndex
	for _, item := range m.items {
		if !m.list.AddItemAt(item, index) {
			return errs.New(errs.OutOfMemory, "move: failed to reinsert item")
		}
		index++
	}

	if current != nil {
		m.list.SetCurrentItemIndex(m.list.IndexOf(current), false)
	}
	return nil
}

func (m *Move) Undo() error {
	current := m.list.ItemAt(m.list.CurrentItemIndex())

	index := m.toIndex
	for range m.items {
		if _, err := m.list.RemoveItemKeepCurrent(index); err != nil {
			return errs.Wrap(err, "move undo: remove relocated item")
		}
	}
	for i, item := range m.items {
		if !m.list.AddItemAt(item, m.indices[i]) {
			return errs.New(errs.OutOfMemory, "move undo: failed to restore item")
		}
	}

	if current != nil {
		m.list.SetCurrentItemIndex(m.list.IndexOf(current), false)
	}
	return nil
}

func (m *Move) Name() string {
	if len(m.items) > 1 {
		return "Move Entries"
	}
	return "Move Entry"
}
