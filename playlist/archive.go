package playlist

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/zsiec/playcore/errs"
)

// binaryPlaylistMagic is the 4-byte little-endian magic 'MPPL' prefixing
// a flattened binary playlist file (§6 "Playlist binary file").
const binaryPlaylistMagic uint32 = 0x4C50504D

const binaryPlaylistExtension = ".mppl"

// archivedItem is the flattened on-disk shape of one playlist item: just
// enough to reconstruct it via NewFileItem/NewURLItem (§4.9 "archives its
// class tag and enough state to reconstruct").
type archivedItem struct {
	isURL bool
	uri   string
}

// Flatten writes the binary archive format to w: the magic, an item
// count, then each item's class tag and URI (§6). It does not persist
// attributes or extra-media bindings, matching the source's comment that
// archiving exists to restore the playable set, not derived metadata.
func (p *Playlist) Flatten(w io.Writer) error {
	p.mu.Lock()
	items := append([]Item(nil), p.items...)
	p.mu.Unlock()

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, binaryPlaylistMagic); err != nil {
		return errs.Wrap(err, "write playlist magic")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(items))); err != nil {
		return errs.Wrap(err, "write playlist item count")
	}
	for _, item := range items {
		_, isURL := item.(*URLItem)
		if err := writeArchivedItem(bw, archivedItem{isURL: isURL, uri: item.URI()}); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeArchivedItem(w *bufio.Writer, a archivedItem) error {
	var tag byte
	if a.isURL {
		tag = 1
	}
	if err := w.WriteByte(tag); err != nil {
		return errs.Wrap(err, "write item class tag")
	}
	uriBytes := []byte(a.uri)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(uriBytes))); err != nil {
		return errs.Wrap(err, "write item URI length")
	}
	if _, err := w.Write(uriBytes); err != nil {
		return errs.Wrap(err, "write item URI")
	}
	return nil
}

// Unflatten replaces the playlist's contents by reading the binary
// archive format from r (§6). An entry whose class tag isn't recognized
// is dropped and the rest continue (§4.9 "unknown item classes cause
// that entry to be dropped").
func (p *Playlist) Unflatten(r io.Reader) error {
	br := bufio.NewReader(r)

	var magic uint32
	if err := binary.Read(br, binary.LittleEndian, &magic); err != nil {
		return errs.Wrap(err, "read playlist magic")
	}
	if magic != binaryPlaylistMagic {
		return errs.New(errs.BadFormat, "not a playlist file: bad magic %#x", magic)
	}

	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return errs.Wrap(err, "read playlist item count")
	}

	p.MakeEmpty()
	for i := uint32(0); i < count; i++ {
		tag, err := br.ReadByte()
		if err != nil {
			return errs.Wrap(err, "read item %d class tag", i)
		}
		var uriLen uint32
		if err := binary.Read(br, binary.LittleEndian, &uriLen); err != nil {
			return errs.Wrap(err, "read item %d URI length", i)
		}
		uriBytes := make([]byte, uriLen)
		if _, err := io.ReadFull(br, uriBytes); err != nil {
			return errs.Wrap(err, "read item %d URI", i)
		}

		switch tag {
		case 0:
			p.AddItem(NewFileItem(string(uriBytes)))
		case 1:
			p.AddItem(NewURLItem(string(uriBytes)))
		default:
			p.log.Warn("dropping playlist entry with unknown class tag", "tag", tag)
		}
	}
	return nil
}

// importBinaryPlaylist unflattens path's binary archive directly into
// target (§4.9, called from AppendItems for a `.mppl` ref).
func importBinaryPlaylist(target *Playlist, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.Wrap(err, "open binary playlist %q", path)
	}
	defer f.Close()
	return target.Unflatten(f)
}

// importTextPlaylist parses an M3U/M3U8/PLS file into target (§6
// "Playlist text file"). PLS's `[playlist]` header selects the
// File<n>=/Title<n>=/Length<n>= key-group format; anything else is
// treated as plain M3U: one URI or path per non-comment line, with
// `#EXTINF` lines tolerated and ignored.
func importTextPlaylist(target *Playlist, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(err, "read text playlist %q", path)
	}

	if isPLS(data) {
		return parsePLS(target, data)
	}
	return parseM3U(target, data)
}

func isPLS(data []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return strings.EqualFold(line, "[playlist]")
	}
	return false
}

func parseM3U(target *Playlist, data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "file://")
		target.AddItem(refItemForLine(line))
	}
	return scanner.Err()
}

func refItemForLine(line string) Item {
	if strings.Contains(line, "://") {
		return NewURLItem(line)
	}
	return NewFileItem(line)
}

// parsePLS implements the `[playlist]` / `File<n>=` / `Title<n>=` /
// `Length<n>=` group format (§6). `NumberOfEntries` and `Version` are
// not read: like any other unmatched key they are skipped; a `Length` of -1 marks an infinite/streaming item and sets no
// duration.
func parsePLS(target *Playlist, data []byte) error {
	files := map[int]string{}
	titles := map[int]string{}
	lengths := map[int]int64{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key, value := line[:eq], line[eq+1:]

		switch {
		case strings.HasPrefix(key, "File"):
			n, err := strconv.Atoi(strings.TrimPrefix(key, "File"))
			if err == nil {
				files[n] = value
			}
		case strings.HasPrefix(key, "Title"):
			n, err := strconv.Atoi(strings.TrimPrefix(key, "Title"))
			if err == nil {
				titles[n] = value
			}
		case strings.HasPrefix(key, "Length"):
			n, err := strconv.Atoi(strings.TrimPrefix(key, "Length"))
			if err == nil {
				length, err := strconv.ParseInt(value, 10, 64)
				if err == nil {
					lengths[n] = length
				}
			}
		}
		// NumberOfEntries and Version are parsed implicitly as unmatched
		// keys and simply ignored, matching the source's "stored but
		// unused" bookkeeping fields.
	}
	if err := scanner.Err(); err != nil {
		return errs.Wrap(err, "scan PLS playlist")
	}

	indices := make([]int, 0, len(files))
	for n := range files {
		indices = append(indices, n)
	}
	sort.Ints(indices)

	for _, n := range indices {
		item := refItemForLine(files[n])
		if title, ok := titles[n]; ok {
			item.SetAttribute(AttrTitle, title)
		}
		if length, ok := lengths[n]; ok && length != -1 {
			item.SetAttribute(AttrDuration, length)
		}
		target.AddItem(item)
	}
	return nil
}
