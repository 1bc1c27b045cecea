// Package subtitle implements the SRT subtitle file parser and the sorted
// interval index used for subtitle lookup (§4.8), plus a bridge that
// presents embedded CEA-608/708 closed captions through the same
// track.SubtitleIndex surface a controller selects from (§6.2 DOMAIN
// STACK: ccx captions merged into the subtitle-sink API).
package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/zsiec/playcore/errs"
)

// Cue is one subtitle entry: a half-open time span and its text, sorted
// into an Index by start time (§3 "Subtitle track").
type Cue struct {
	Start     time.Duration
	Duration  time.Duration
	Text      string
	Placement [2]float64 // negative X/Y means "no explicit placement"
}

// parseState walks an SRT file's three-line-kind block structure (§6
// "Subtitle file (SRT)").
type parseState int

const (
	expectSequenceNumber parseState = iota
	expectTimeCode
	expectText
)

// ParseSRT reads an SRT file from r and returns its cues sorted by start
// time, ready to build an Index. Out-of-order sequence numbers produce a
// warning (returned in warnings, not an error); malformed time codes abort
// parsing with an error, matching the source's behavior of stopping at
// the first broken block rather than skipping it.
func ParseSRT(r io.Reader) (cues []Cue, warnings []string, err error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errs.Wrap(err, "read SRT file")
	}

	decoded, decErr := decodeText(raw)
	if decErr != nil {
		decoded = string(raw)
	}

	scanner := bufio.NewScanner(strings.NewReader(decoded))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	state := expectSequenceNumber
	lastSeq := int64(0)
	lineNo := 0
	var cur Cue
	cur.Placement = [2]float64{-1, -1}
	var textLines []string

	flush := func() {
		if len(textLines) > 0 {
			cur.Text = strings.Join(textLines, "\n")
			cues = append(cues, cur)
		}
		cur = Cue{Placement: [2]float64{-1, -1}}
		textLines = nil
		state = expectSequenceNumber
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNo++

		switch state {
		case expectSequenceNumber:
			if strings.TrimSpace(line) == "" {
				continue
			}
			seq, convErr := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
			if convErr == nil && seq != lastSeq+1 {
				warnings = append(warnings, fmt.Sprintf("line %d: out-of-order sequence number %d, expected %d", lineNo, seq, lastSeq+1))
			}
			lastSeq = seq
			state = expectTimeCode

		case expectTimeCode:
			trimmed := strings.TrimSpace(line)
			sepIdx := strings.Index(trimmed, " --> ")
			if sepIdx < 0 {
				return cues, warnings, errs.New(errs.BadFormat, "line %d: expected SRT time code, got %q", lineNo, trimmed)
			}
			if sepIdx != 12 {
				warnings = append(warnings, fmt.Sprintf("line %d: time code start field is not 12 characters wide", lineNo))
			}
			start, startErr := parseSRTTimecode(trimmed[:sepIdx])
			if startErr != nil {
				return cues, warnings, errs.Wrap(startErr, "line %d: parse start time", lineNo)
			}
			end, endErr := parseSRTTimecode(trimmed[sepIdx+5:])
			if endErr != nil {
				return cues, warnings, errs.Wrap(endErr, "line %d: parse end time", lineNo)
			}
			cur.Start = start
			cur.Duration = end - start
			state = expectText

		case expectText:
			if strings.TrimSpace(line) == "" {
				flush()
				continue
			}
			textLines = append(textLines, line)
		}
	}
	flush()

	if scanErr := scanner.Err(); scanErr != nil {
		return cues, warnings, errs.Wrap(scanErr, "scan SRT file")
	}

	sort.SliceStable(cues, func(i, j int) bool { return cues[i].Start < cues[j].Start })

	return cues, warnings, nil
}

// parseSRTTimecode parses "HH:MM:SS,mmm" into a duration from file start.
func parseSRTTimecode(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	var h, m, sec, ms int
	n, err := fmt.Sscanf(s, "%d:%d:%d,%d", &h, &m, &sec, &ms)
	if err != nil || n != 4 {
		return 0, errs.New(errs.BadFormat, "malformed SRT time code %q", s)
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// decodeText guesses the subtitle file's encoding from its byte pattern
// (BOM, or fall back to UTF-8 validity / Latin-1) the way the source's
// BTextEncoding guesses from the first non-empty text line: once, for the
// whole file, rather than per-line (§4.8 "auto-detect encoding").
func decodeText(raw []byte) (string, error) {
	var enc encoding.Encoding
	switch {
	case len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF:
		return string(raw[3:]), nil
	case len(raw) >= 2 && raw[0] == 0xFF && raw[1] == 0xFE:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF:
		enc = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case utf8.Valid(raw):
		return string(raw), nil
	default:
		enc = charmap.ISO8859_1
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errs.Wrap(err, "decode subtitle text")
	}
	return string(decoded), nil
}
