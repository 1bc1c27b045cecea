// Package cache implements the ten-slot LRU audio track cache that sits
// between a container-decoded track and the audio adapter (§4.3). It
// absorbs the seek-and-decode cost of keyframe-aligned container reads so
// that overlapping reads (e.g. a user scrubbing back a few hundred
// milliseconds) don't re-decode data still held from the previous read.
package cache

import (
	"sort"
	"time"

	"github.com/zsiec/playcore/audio"
	"github.com/zsiec/playcore/format"
)

const slotCount = 10

// readDeadline bounds how long a cache miss may spend decoding from the
// container before the remainder of the request is filled with silence
// (§4.3, §5).
const readDeadline = 10 * time.Millisecond

// Source is the container-decoded track the cache wraps: a sequential
// reader plus keyframe-aware backward seek.
type Source interface {
	audio.Reader
	// SeekToKeyframeBefore seeks to the closest keyframe at or before pos
	// and returns the frame index actually reached. It returns an error
	// (errs.EntryNotFound) if the container rejects the seek or lands past
	// pos, per §4.3 "If the container rejects a backward seek... return
	// silence for the range; do not retry."
	SeekToKeyframeBefore(pos int64) (int64, error)
}

type slot struct {
	data      []byte
	offset    int64 // frame offset, -1 if empty
	size      int64 // frames held
	timestamp int64 // logical touch counter; higher is more recent
}

// Cache is the ten-slot LRU audio track cache.
type Cache struct {
	source     Source
	f          format.RawAudioFormat
	slotFrames int64
	countFrame int64 // total track length in frames, for end-of-track silence
	cursor     int64 // source's current sequential-read cursor, -1 if unknown
	clock      int64 // monotonically increasing touch counter
	slots      [slotCount]slot

	now func() time.Time
}

// New creates a Cache over source, with bufferSize bytes per slot (the
// negotiated 16 KiB or container minimum, per §4.3) and countFrames total
// frames in the track (frames at or beyond this index always read as
// silence, never an error).
func New(source Source, f format.RawAudioFormat, bufferSize int, countFrames int64) *Cache {
	frameSize := f.FrameSize()
	slotFrames := int64(bufferSize / frameSize)
	if slotFrames < 1 {
		slotFrames = 1
	}
	c := &Cache{
		source:     source,
		f:          f,
		slotFrames: slotFrames,
		countFrame: countFrames,
		cursor:     -1,
		now:        time.Now,
	}
	for i := range c.slots {
		c.slots[i].offset = -1
	}
	return c
}

func (c *Cache) Format() format.RawAudioFormat { return c.f }

func (c *Cache) InitialLatency() time.Duration { return c.source.InitialLatency() }

// Read fills buffer with exactly frames frames starting at pos, serving
// from cached slots where possible and falling back to a keyframe-aligned
// container read for any uncached range (§4.3).
func (c *Cache) Read(buffer []byte, pos int64, frames int) error {
	frameSize := c.f.FrameSize()
	end := pos + int64(frames)

	// Frames at or past the track end are always silence (§4.3 invariant),
	// and a request straddling the end splits into in-range + silence.
	readEnd := end
	if c.countFrame > 0 && readEnd > c.countFrame {
		readEnd = c.countFrame
	}
	if readEnd < pos {
		readEnd = pos
	}

	filled := make([]bool, frames) // which output frames have been satisfied

	type overlap struct {
		idx    int
		offset int64
		end    int64
	}
	var overlaps []overlap
	for i := range c.slots {
		s := &c.slots[i]
		if s.offset < 0 || s.size == 0 {
			continue
		}
		oStart := max64(s.offset, pos)
		oEnd := min64(s.offset+s.size, readEnd)
		if oStart < oEnd {
			overlaps = append(overlaps, overlap{i, oStart, oEnd})
		}
	}
	sort.Slice(overlaps, func(i, j int) bool { return overlaps[i].offset < overlaps[j].offset })

	touch := func(idx int) {
		c.clock++
		c.slots[idx].timestamp = c.clock
	}

	for _, ov := range overlaps {
		s := &c.slots[ov.idx]
		srcOff := (ov.offset - s.offset) * int64(frameSize)
		dstOff := (ov.offset - pos) * int64(frameSize)
		length := (ov.end - ov.offset) * int64(frameSize)
		copy(buffer[dstOff:dstOff+length], s.data[srcOff:srcOff+length])
		for f := ov.offset; f < ov.end; f++ {
			filled[f-pos] = true
		}
		touch(ov.idx)
	}

	// Past-track-end region is silence, not a hole to decode.
	if readEnd < end {
		audio.ReadSilence(c.f, buffer[(readEnd-pos)*int64(frameSize):], int(end-readEnd))
		for f := readEnd; f < end; f++ {
			filled[f-pos] = true
		}
	}

	// Find contiguous unfilled holes within [pos, readEnd) and decode them.
	deadline := c.now().Add(readDeadline)
	i := 0
	for i < int(readEnd-pos) {
		if filled[i] {
			i++
			continue
		}
		j := i
		for j < int(readEnd-pos) && !filled[j] {
			j++
		}
		holeStart := pos + int64(i)
		holeEnd := pos + int64(j)
		c.fillHole(buffer, pos, frameSize, holeStart, holeEnd, deadline)
		i = j
	}

	return nil
}

// fillHole decodes [holeStart, holeEnd) from the container, seeking
// backward to the nearest keyframe first if the cursor isn't already
// there, and installs each decoded chunk as a fresh cache slot.
func (c *Cache) fillHole(buffer []byte, reqPos int64, frameSize int, holeStart, holeEnd int64, deadline time.Time) {
	if c.cursor != holeStart {
		kf, err := c.source.SeekToKeyframeBefore(holeStart)
		if err != nil {
			audio.ReadSilence(c.f, buffer[(holeStart-reqPos)*int64(frameSize):], int(holeEnd-holeStart))
			return
		}
		c.cursor = kf
	}

	for c.cursor < holeEnd {
		if c.now().After(deadline) {
			remaining := holeEnd - c.cursor
			if remaining > 0 {
				dstOff := (c.cursor - reqPos) * int64(frameSize)
				audio.ReadSilence(c.f, buffer[dstOff:], int(remaining))
			}
			return
		}

		n := c.slotFrames
		chunk := make([]byte, n*int64(frameSize))
		if err := c.source.Read(chunk, c.cursor, int(n)); err != nil {
			audio.ReadSilence(c.f, buffer[(max64(c.cursor, reqPos)-reqPos)*int64(frameSize):], int(holeEnd-max64(c.cursor, reqPos)))
			return
		}

		overlapStart := max64(c.cursor, holeStart)
		overlapEnd := min64(c.cursor+n, holeEnd)
		if overlapStart < overlapEnd {
			srcOff := (overlapStart - c.cursor) * int64(frameSize)
			dstOff := (overlapStart - reqPos) * int64(frameSize)
			length := (overlapEnd - overlapStart) * int64(frameSize)
			copy(buffer[dstOff:dstOff+length], chunk[srcOff:srcOff+length])
		}

		c.installSlot(c.cursor, n, chunk)
		c.cursor += n
	}
}

// installSlot stores a freshly-decoded chunk in a cache slot, preferring
// (in order): a slot whose offset already equals the new chunk's offset,
// an empty slot, or the least-recently-touched slot (§4.3).
func (c *Cache) installSlot(offset, size int64, data []byte) {
	idx := -1
	for i := range c.slots {
		if c.slots[i].offset == offset {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i := range c.slots {
			if c.slots[i].offset < 0 {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		idx = 0
		oldest := c.slots[0].timestamp
		for i := 1; i < slotCount; i++ {
			if c.slots[i].timestamp < oldest {
				oldest = c.slots[i].timestamp
				idx = i
			}
		}
	}
	c.clock++
	c.slots[idx] = slot{data: data, offset: offset, size: size, timestamp: c.clock}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
