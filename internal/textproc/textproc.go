// Package textproc turns raw speech-recognition output into a readable
// transcript. Every function here is pure: no I/O, deterministic given the
// same tokenizer availability.
package textproc

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"mediascribe/internal/transcriber"
)

var (
	whitespaceRe     = regexp.MustCompile(`\s+`)
	hyphenSplitRe    = regexp.MustCompile(`(\w)- (\w)`)
	unintelligibleRe = regexp.MustCompile(`\(\s*[Uu]nintelligible\s*\)`)
)

// Clean normalizes raw recognized text into a transcript with one sentence
// per line: whitespace collapsed, hyphen-split words rejoined,
// "(unintelligible)" markers dropped, sentence starts capitalized.
// Idempotent on already-clean text.
func Clean(text string) string {
	sentences := Sentences(normalize(text))
	for i, s := range sentences {
		sentences[i] = capitalize(s)
	}
	return strings.Join(sentences, "\n")
}

// CleanSegments renders one line per segment, each prefixed with its
// [HH:MM:SS - HH:MM:SS] time span and cleaned of recognition noise. Empty
// segments are skipped.
func CleanSegments(segments []transcriber.Segment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := capitalize(normalize(seg.Text))
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s - %s] %s", FormatClock(seg.Start), FormatClock(seg.End), text))
	}
	return strings.Join(lines, "\n")
}

// FormatClock renders a duration as zero-padded HH:MM:SS.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// normalize applies the whitespace/hyphen/marker cleanup shared by both
// transcript shapes.
func normalize(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = hyphenSplitRe.ReplaceAllString(text, "$1$2")
	text = unintelligibleRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// capitalize upper-cases the first letter of s.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	upper := unicode.ToUpper(r)
	if upper == r {
		return s
	}
	return string(upper) + s[size:]
}
