package textproc

import (
	"strings"
	"testing"
	"time"

	"mediascribe/internal/transcriber"
)

func TestCleanSplitsAndCapitalizes(t *testing.T) {
	got := Clean("hello world. this is a test")
	want := "Hello world.\nThis is a test"
	if got != want {
		t.Fatalf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanNormalizesNoise(t *testing.T) {
	got := Clean("some  exam- ple   text (unintelligible) here.")
	want := "Some example text here."
	if got != want {
		t.Fatalf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"hello world. this is a test",
		"One sentence only",
		"Mr. Smith went to Washington. He arrived on Tuesday.",
		"exam- ple (unintelligible) text.  More   text!",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Fatalf("Clean not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestCleanEmpty(t *testing.T) {
	if got := Clean("   "); got != "" {
		t.Fatalf("Clean(blank) = %q, want empty", got)
	}
}

func TestFallbackSentences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "splits on period before capital",
			in:   "First one. Second one. Third",
			want: []string{"First one.", "Second one.", "Third"},
		},
		{
			name: "keeps abbreviations together",
			in:   "Ask Dr. Smith about it. He knows.",
			want: []string{"Ask Dr. Smith about it.", "He knows."},
		},
		{
			name: "splits before digits",
			in:   "It ended. 20 people stayed.",
			want: []string{"It ended.", "20 people stayed."},
		},
		{
			name: "question and exclamation marks",
			in:   "Really? Yes! Fine.",
			want: []string{"Really?", "Yes!", "Fine."},
		},
		{
			name: "no split on lowercase continuation",
			in:   "approx. one hour later",
			want: []string{"approx. one hour later"},
		},
		{
			name: "single sentence without terminator",
			in:   "no punctuation here",
			want: []string{"no punctuation here"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := fallbackSentences(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("sentences = %q, want %q", got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("sentence %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestFallbackNonEmptyAlwaysYieldsSentence(t *testing.T) {
	inputs := []string{".", "...", "a", "Hi. Hi. Hi.", "?!", "e.g."}
	for _, in := range inputs {
		if got := fallbackSentences(in); len(got) == 0 {
			t.Fatalf("fallbackSentences(%q) produced no sentences", in)
		}
	}
}

func TestCleanSegmentsTimestamps(t *testing.T) {
	segs := []transcriber.Segment{
		{Start: 0, End: 5 * time.Second, Text: "hello there"},
		{Start: 65 * time.Second, End: 70 * time.Second, Text: "  second segment "},
		{Start: 80 * time.Second, End: 81 * time.Second, Text: "   "},
		{Start: 3661 * time.Second, End: 3700 * time.Second, Text: "last words"},
	}

	got := CleanSegments(segs)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3 (blank segment skipped): %q", len(lines), got)
	}
	if lines[0] != "[00:00:00 - 00:00:05] Hello there" {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if lines[1] != "[00:01:05 - 00:01:10] Second segment" {
		t.Fatalf("line 1 = %q", lines[1])
	}
	if lines[2] != "[01:01:01 - 01:01:40] Last words" {
		t.Fatalf("line 2 = %q", lines[2])
	}

	// Every emitted line carries a time marker.
	for _, line := range lines {
		if !strings.HasPrefix(line, "[") {
			t.Fatalf("line missing timestamp: %q", line)
		}
	}
}

func TestFormatClock(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{90 * time.Minute, "01:30:00"},
		{-time.Second, "00:00:00"},
	}
	for _, tc := range cases {
		if got := FormatClock(tc.in); got != tc.want {
			t.Fatalf("FormatClock(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
