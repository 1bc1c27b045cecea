package subtitle

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zsiec/playcore/errs"
	"github.com/zsiec/playcore/track"
)

// Index is a sorted, binary-searchable set of cues implementing
// track.SubtitleIndex (§4.8). It is immutable after construction.
type Index struct {
	cues []Cue
}

var _ track.SubtitleIndex = (*Index)(nil)

// NewIndex builds an Index from cues, which need not already be sorted.
func NewIndex(cues []Cue) *Index {
	sorted := make([]Cue, len(cues))
	copy(sorted, cues)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return &Index{cues: sorted}
}

// At returns the cue text active at t, if any (§4.8 "SubTitleAt"). When
// two cues overlap, the one with the later start wins, matching the
// source's last-match-wins linear scan collapsed into a binary search:
// find the last cue whose Start is <= t, then confirm t also falls
// before its end.
func (idx *Index) At(t time.Duration) (text string, ok bool) {
	if len(idx.cues) == 0 {
		return "", false
	}

	i := sort.Search(len(idx.cues), func(i int) bool { return idx.cues[i].Start > t })
	for i > 0 {
		i--
		c := idx.cues[i]
		if t < c.Start+c.Duration {
			return c.Text, true
		}
		// An earlier cue with a shorter span than its gap to the next one
		// doesn't cover t; keep walking back only while starts tie at the
		// same instant (overlapping cues authored at an identical time).
		if i == 0 || idx.cues[i-1].Start != c.Start {
			break
		}
	}
	return "", false
}

// Len reports the number of cues in the index.
func (idx *Index) Len() int { return len(idx.cues) }

// CueAt returns the i-th cue in start-time order.
func (idx *Index) CueAt(i int) Cue { return idx.cues[i] }

// FileOpener implements mediafile.SubtitleOpener for on-disk subtitle
// files, dispatching on extension (§4.8: only SRT is grounded on the
// original source; other formats are reported as unsupported rather than
// silently ignored).
type FileOpener struct{}

// Open parses the subtitle file at path and returns a borrowed lookup
// index built from it.
func (FileOpener) Open(path string) (track.SubtitleIndex, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		f, err := os.Open(path)
		if err != nil {
			return nil, errs.Wrap(err, "open subtitle file %q", path)
		}
		defer f.Close()

		cues, _, err := ParseSRT(f)
		if err != nil {
			return nil, errs.Wrap(err, "parse subtitle file %q", path)
		}
		return NewIndex(cues), nil
	default:
		return nil, errs.New(errs.NotSupported, "unsupported subtitle file extension %q", filepath.Ext(path))
	}
}
