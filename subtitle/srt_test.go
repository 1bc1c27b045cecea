package subtitle

import (
	"strings"
	"testing"
	"time"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:03,500
Hello there.

2
00:00:04,000 --> 00:00:06,000
Second line
continues here.

3
00:01:00,250 --> 00:01:02,000
Much later.
`

func TestParseSRTBasic(t *testing.T) {
	t.Parallel()

	cues, warnings, err := ParseSRT(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(cues) != 3 {
		t.Fatalf("got %d cues, want 3", len(cues))
	}

	if cues[0].Start != time.Second || cues[0].Duration != 2500*time.Millisecond {
		t.Fatalf("cue 0 span = %v+%v, want 1s+2.5s", cues[0].Start, cues[0].Duration)
	}
	if cues[0].Text != "Hello there." {
		t.Fatalf("cue 0 text = %q", cues[0].Text)
	}

	if want := "Second line\ncontinues here."; cues[1].Text != want {
		t.Fatalf("cue 1 text = %q, want %q", cues[1].Text, want)
	}

	wantStart := time.Minute + 250*time.Millisecond
	if cues[2].Start != wantStart {
		t.Fatalf("cue 2 start = %v, want %v", cues[2].Start, wantStart)
	}
}

func TestParseSRTOutOfOrderSequenceWarns(t *testing.T) {
	t.Parallel()

	src := `1
00:00:01,000 --> 00:00:02,000
First.

5
00:00:03,000 --> 00:00:04,000
Skipped ahead.
`
	cues, warnings, err := ParseSRT(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
}

func TestParseSRTMalformedTimecodeIsFatal(t *testing.T) {
	t.Parallel()

	src := `1
not-a-timecode
text
`
	_, _, err := ParseSRT(strings.NewReader(src))
	if err == nil {
		t.Fatal("expected an error for a malformed time code, got nil")
	}
}

func TestParseSRTSortsByStartTime(t *testing.T) {
	t.Parallel()

	src := `1
00:00:10,000 --> 00:00:11,000
Later.

2
00:00:01,000 --> 00:00:02,000
Earlier.
`
	cues, _, err := ParseSRT(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	if cues[0].Text != "Earlier." || cues[1].Text != "Later." {
		t.Fatalf("cues not sorted by start time: %+v", cues)
	}
}
