package playlist

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/zsiec/playcore/errs"
)

// AppendItems imports refs (file paths or directories; a playlist file
// or M3U/PLS file is parsed and adopted rather than added verbatim) at
// appendIndex, one of AppendReplace/AppendLast or a literal index
// (§4.9). When sortItems is true, the appended range is sorted before
// being spliced in; a playlist/M3U/PLS import additionally leaves the
// rest of the list untouched rather than re-sorting everything, matching
// the source's "don't screw up the saved playlist's ordering" rule.
func (p *Playlist) AppendItems(refs []string, appendIndex int, sortItems bool) error {
	if appendIndex == AppendLast {
		appendIndex = p.CountItems()
	}
	add := appendIndex != AppendReplace
	if !add {
		p.MakeEmpty()
		appendIndex = 0
	}

	startPlaying := p.IsEmpty()

	staging := New(p.log)
	defer staging.Close()

	target := staging
	if !add {
		target = p
	}

	for _, ref := range refs {
		kind := classifyExtension(ref)
		sub := New(p.log)

		switch kind {
		case kindTextPlaylist:
			if err := importTextPlaylist(sub, ref); err != nil {
				p.log.Warn("import text playlist", "ref", ref, "err", err)
			}
		case kindBinaryPlaylist:
			if err := importBinaryPlaylist(sub, ref); err != nil {
				p.log.Warn("import binary playlist", "ref", ref, "err", err)
			}
		default:
			if err := appendRecursive(target, ref); err != nil {
				p.log.Warn("import ref", "ref", ref, "err", err)
			}
			sub.Close()
			sub = nil
		}

		if sub != nil {
			if sortItems {
				sub.Sort()
			}
			target.AdoptPlaylist(sub, target.CountItems())
			sub.Close()
		}
	}

	if sortItems {
		if add {
			staging.Sort()
		} else {
			p.Sort()
		}
	}

	if add {
		p.AdoptPlaylist(staging, appendIndex)
	} else if p.IsEmpty() {
		p.NotifyImportFailed()
	}

	if startPlaying && !p.IsEmpty() {
		p.SetCurrentItemIndex(0, true)
	}

	return nil
}

// appendRecursive walks ref: directories are enumerated in sorted
// order and their children appended in turn; a media file is added with
// its extra media bound, unless target already holds another FileItem
// with the same path minus extension, in which case it is skipped and
// does not become its own item (§4.9).
func appendRecursive(target *Playlist, ref string) error {
	info, err := os.Stat(ref)
	if err != nil {
		return errs.Wrap(err, "stat %q", ref)
	}

	if info.IsDir() {
		entries, err := os.ReadDir(ref)
		if err != nil {
			return errs.Wrap(err, "read dir %q", ref)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, e := range entries {
			if err := appendRecursive(target, filepath.Join(ref, e.Name())); err != nil {
				target.log.Warn("import recursive entry", "ref", ref, "entry", e.Name(), "err", err)
			}
		}
		return nil
	}

	switch classifyExtension(ref) {
	case kindMedia:
		if extraMediaExists(target, ref) {
			return nil
		}
		item := NewFileItem(ref)
		bindExtraMedia(item, ref)
		target.AddItem(item)
	}
	return nil
}

// extraMediaExists reports whether target already contains a FileItem
// whose base name (minus extension) matches ref's, other than ref
// itself (§4.9 "checks for already-present extra media").
func extraMediaExists(target *Playlist, ref string) bool {
	want := exceptExtension(ref)
	n := target.CountItems()
	for i := 0; i < n; i++ {
		fi, ok := target.ItemAt(i).(*FileItem)
		if !ok {
			continue
		}
		if fi.Path != ref && exceptExtension(fi.Path) == want {
			return true
		}
	}
	return false
}

// bindExtraMedia scans ref's directory for siblings sharing its base
// name and binds media, image or subtitle files onto item as extra media
// (Playlist::_BindExtraMedia).
func bindExtraMedia(item *FileItem, ref string) {
	dir := filepath.Dir(ref)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	want := exceptExtension(ref)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		candidate := filepath.Join(dir, e.Name())
		if candidate == ref || exceptExtension(candidate) != want {
			continue
		}
		switch classifyExtension(candidate) {
		case kindMedia, kindImage, kindSubtitle:
			item.AddExtraMedia(candidate)
		}
	}
}
