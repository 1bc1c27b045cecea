package playlist

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/notify"
)

// Special AppendItems index values (§4.9).
const (
	AppendReplace = -1 // empty the playlist first, then append at 0
	AppendLast    = -2 // append after the last existing item
)

// Listener receives asynchronous notification of playlist changes (§5
// "Listener/notifier plumbing"): fan-out happens off the Playlist's own
// lock via a notify.Queue, so a slow or reentrant listener never blocks
// an editor thread.
type Listener interface {
	ItemAdded(item Item, index int)
	ItemRemoved(index int)
	ItemsSorted()
	CurrentItemChanged(newIndex int, play bool)
	ImportFailed()
}

// Playlist is the ordered, observable collection of Items plus a current
// index (§3 "Playlist"). The zero value is not usable; use New.
type Playlist struct {
	mu   sync.Mutex
	log  *slog.Logger
	post *notify.Queue

	items   []Item
	current int // -1 iff len(items) == 0

	listenersMu sync.Mutex
	listeners   []Listener
}

// New returns an empty Playlist.
func New(log *slog.Logger) *Playlist {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "playlist")
	return &Playlist{
		log:     log,
		post:    notify.NewQueue(log),
		current: -1,
	}
}

// Close stops the playlist's notification dispatch goroutine. Call once
// the playlist is no longer needed.
func (p *Playlist) Close() { p.post.Close() }

// CountItems reports the number of items in the playlist.
func (p *Playlist) CountItems() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// IsEmpty reports whether the playlist has no items.
func (p *Playlist) IsEmpty() bool { return p.CountItems() == 0 }

// MakeEmpty removes every item, notifying for each removal in reverse
// order and then clearing the current index, matching the source's
// teardown order.
func (p *Playlist) MakeEmpty() {
	p.mu.Lock()
	items := p.items
	p.items = nil
	p.mu.Unlock()

	for i := len(items) - 1; i >= 0; i-- {
		p.notifyItemRemoved(i)
	}
	p.SetCurrentItemIndex(-1, true)
}

// Sort reorders items by URI (§4.9: "sort the whole playlist").
func (p *Playlist) Sort() {
	p.mu.Lock()
	sort.SliceStable(p.items, func(i, j int) bool { return p.items[i].URI() < p.items[j].URI() })
	p.mu.Unlock()
	p.notifyItemsSorted()
}

// AddItem appends item at the end of the playlist.
func (p *Playlist) AddItem(item Item) bool {
	return p.AddItemAt(item, p.CountItems())
}

// AddItemAt inserts item at index, shifting the current index forward if
// the insertion is at or before it (§4.9 `AddItem`).
func (p *Playlist) AddItemAt(item Item, index int) bool {
	p.mu.Lock()
	if index < 0 || index > len(p.items) {
		p.mu.Unlock()
		return false
	}
	p.items = append(p.items, nil)
	copy(p.items[index+1:], p.items[index:])
	p.items[index] = item

	shiftCurrent := index <= p.current
	if shiftCurrent {
		p.current++
	}
	p.mu.Unlock()

	p.notifyItemAdded(item, index)
	return true
}

// AdoptPlaylist moves every item from other into p at index, leaving
// other empty. It is a no-op returning false if other is p itself
// (mirrors the source's self-adopt guard, which exists because adopting
// from oneself would otherwise corrupt the backing slice mid-copy).
func (p *Playlist) AdoptPlaylist(other *Playlist, index int) bool {
	if other == p {
		return false
	}

	other.mu.Lock()
	moved := other.items
	other.items = nil
	other.current = -1
	other.mu.Unlock()

	if len(moved) == 0 {
		return true
	}

	p.mu.Lock()
	if index < 0 || index > len(p.items) {
		index = len(p.items)
	}
	p.items = append(p.items[:index:index], append(append([]Item{}, moved...), p.items[index:]...)...)
	shiftCurrent := index <= p.current
	newCurrent := p.current
	if shiftCurrent {
		newCurrent += len(moved)
		p.current = newCurrent
	}
	p.mu.Unlock()

	for i, item := range moved {
		p.notifyItemAdded(item, index+i)
	}
	// Unlike AddItemAt, the source notifies the current-index shift here
	// (SetCurrentItemIndex's default `notify` argument is true for this
	// caller), since adopting a whole sub-playlist is a bigger structural
	// change than inserting a single item.
	if shiftCurrent {
		p.notifyCurrentItemChanged(newCurrent, true)
	}
	return true
}

// RemoveItem removes and returns the item at index, adjusting the
// current index per §3's invariant rules: it decreases by one if the
// removed item was above it, advances in place if the removed item was
// the current one, and otherwise becomes count-1 or -1 when no items
// remain.
func (p *Playlist) RemoveItem(index int) (Item, error) {
	return p.removeItem(index, true)
}

// RemoveItemKeepCurrent removes and returns the item at index without
// touching the current index, for callers (package playlist/command)
// that reposition the current item themselves afterward — grounded on
// `MovePLItemsCommand::Perform`/`Undo` calling `RemoveItem(i, false)`
// and separately restoring `fPlaylist->SetCurrentItemIndex` once the
// whole move is complete.
func (p *Playlist) RemoveItemKeepCurrent(index int) (Item, error) {
	return p.removeItem(index, false)
}

func (p *Playlist) removeItem(index int, careAboutCurrent bool) (Item, error) {
	p.mu.Lock()
	if index < 0 || index >= len(p.items) {
		p.mu.Unlock()
		return nil, errs.New(errs.BadIndex, "playlist item index %d out of range [0,%d)", index, len(p.items))
	}
	item := p.items[index]
	p.items = append(p.items[:index], p.items[index+1:]...)

	newCurrent := p.current
	notifyCurrent := false
	if careAboutCurrent {
		switch {
		case index < p.current:
			newCurrent = p.current - 1
		case index == p.current:
			if newCurrent == len(p.items) {
				newCurrent--
			}
			notifyCurrent = true
		}
		p.current = newCurrent
	}
	p.mu.Unlock()

	p.notifyItemRemoved(index)
	if notifyCurrent {
		p.notifyCurrentItemChanged(newCurrent, true)
	}
	return item, nil
}

// IndexOf returns item's index, or -1 if it isn't in the playlist.
func (p *Playlist) IndexOf(item Item) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, it := range p.items {
		if it == item {
			return i
		}
	}
	return -1
}

// ItemAt returns the item at index, or nil if index is out of range.
func (p *Playlist) ItemAt(index int) Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.items) {
		return nil
	}
	return p.items[index]
}

// SetCurrentItemIndex sets the current item, clamping out-of-range
// values to -1 (below zero) or count-1 (at or above count) and reporting
// false when clamping occurred (§4.9 `SetCurrentItemIndex`). It notifies
// listeners whenever the index actually changes, or when notify is true
// even if it does not. An index at or above count clears notify, so
// clamping it down to the unchanged current index notifies no one.
func (p *Playlist) SetCurrentItemIndex(index int, notify bool) bool {
	p.mu.Lock()
	result := true
	count := len(p.items)
	if index >= count {
		index = count - 1
		result = false
		notify = false
	}
	if index < 0 {
		index = -1
		result = false
	}
	unchanged := index == p.current
	p.current = index
	p.mu.Unlock()

	if unchanged && !notify {
		return result
	}
	p.notifyCurrentItemChanged(index, notify)
	return result
}

// CurrentItemIndex returns the current index, or -1 if the playlist is
// empty.
func (p *Playlist) CurrentItemIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// GetSkipInfo reports whether skip-previous / skip-next are meaningful
// from the current position.
func (p *Playlist) GetSkipInfo() (canSkipPrevious, canSkipNext bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current > 0, p.current < len(p.items)-1
}

// AddListener registers l for future notifications, refusing a duplicate
// registration.
func (p *Playlist) AddListener(l Listener) bool {
	p.listenersMu.Lock()
	defer p.listenersMu.Unlock()
	for _, existing := range p.listeners {
		if existing == l {
			return false
		}
	}
	p.listeners = append(p.listeners, l)
	return true
}

// RemoveListener unregisters l. A no-op if l was never registered.
func (p *Playlist) RemoveListener(l Listener) {
	p.listenersMu.Lock()
	defer p.listenersMu.Unlock()
	for i, existing := range p.listeners {
		if existing == l {
			p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
			return
		}
	}
}

// snapshotListeners copies the listener set under lock, matching the
// teacher/source pattern of iterating a copy rather than the live slice
// so a listener adding/removing itself mid-callback can't corrupt the
// iteration (grounded on Playlist.cpp's `BList listeners(fListeners)`
// snapshot-then-iterate).
func (p *Playlist) snapshotListeners() []Listener {
	p.listenersMu.Lock()
	defer p.listenersMu.Unlock()
	return append([]Listener(nil), p.listeners...)
}

func (p *Playlist) notifyItemAdded(item Item, index int) {
	for _, l := range p.snapshotListeners() {
		l := l
		p.post.Post(func() { l.ItemAdded(item, index) })
	}
}

func (p *Playlist) notifyItemRemoved(index int) {
	for _, l := range p.snapshotListeners() {
		l := l
		p.post.Post(func() { l.ItemRemoved(index) })
	}
}

func (p *Playlist) notifyItemsSorted() {
	for _, l := range p.snapshotListeners() {
		l := l
		p.post.Post(func() { l.ItemsSorted() })
	}
}

func (p *Playlist) notifyCurrentItemChanged(newIndex int, play bool) {
	for _, l := range p.snapshotListeners() {
		l := l
		p.post.Post(func() { l.CurrentItemChanged(newIndex, play) })
	}
}

// NotifyImportFailed tells listeners that an AppendItems call could not
// import any of its requested entries.
func (p *Playlist) NotifyImportFailed() {
	for _, l := range p.snapshotListeners() {
		l := l
		p.post.Post(l.ImportFailed)
	}
}
