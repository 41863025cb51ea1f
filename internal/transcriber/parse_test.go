package transcriber

import (
	"testing"
	"time"
)

func TestParseCLIOutputTimedSegments(t *testing.T) {
	out := `
[00:00:00.000 --> 00:00:05.120]  Hello there.
[00:00:05.120 --> 00:00:09.500]  Second segment.
`
	segments := parseCLIOutput(out)
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}
	if segments[0].Text != "Hello there." {
		t.Fatalf("text = %q", segments[0].Text)
	}
	if segments[0].End != 5120*time.Millisecond {
		t.Fatalf("end = %v", segments[0].End)
	}
	if segments[1].Start != 5120*time.Millisecond {
		t.Fatalf("start = %v", segments[1].Start)
	}
}

func TestParseCLIOutputPlainTextFoldsIntoOneSegment(t *testing.T) {
	segments := parseCLIOutput("first line\nsecond line\n")
	if len(segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(segments))
	}
	if segments[0].Text != "first line second line" {
		t.Fatalf("text = %q", segments[0].Text)
	}
}

func TestParseCLIOutputSortsByStart(t *testing.T) {
	out := `[00:00:10.000 --> 00:00:12.000] later
[00:00:01.000 --> 00:00:03.000] earlier`
	segments := parseCLIOutput(out)
	if len(segments) != 2 || segments[0].Text != "earlier" {
		t.Fatalf("segments = %+v", segments)
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"00:00:00.000", 0},
		{"00:01:05.500", time.Minute + 5500*time.Millisecond},
		{"01:02:03.000", time.Hour + 2*time.Minute + 3*time.Second},
		{"garbage", 0},
		{"1:2", 0},
	}
	for _, tc := range cases {
		if got := parseClock(tc.in); got != tc.want {
			t.Errorf("parseClock(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestJoinSegments(t *testing.T) {
	segments := []Segment{
		{Text: " Hello "},
		{Text: ""},
		{Text: "world."},
	}
	if got := joinSegments(segments); got != "Hello world." {
		t.Fatalf("joined = %q", got)
	}
}
