package transcriber

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// parseCLIOutput turns whisper-cli stdout into segments. Lines look like
//
//	[00:00:00.000 --> 00:00:05.120]  Text here
//
// but plain text lines (older builds, --no-timestamps) are folded into a
// single untimed segment so nothing is lost.
func parseCLIOutput(text string) []Segment {
	var segments []Segment
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if end := strings.Index(line, "]"); end > 0 {
				parts := strings.Split(line[1:end], " --> ")
				if len(parts) == 2 {
					body := strings.TrimSpace(line[end+1:])
					if body != "" {
						segments = append(segments, Segment{
							Start: parseClock(parts[0]),
							End:   parseClock(parts[1]),
							Text:  body,
						})
					}
					continue
				}
			}
		}

		if len(segments) == 0 {
			segments = append(segments, Segment{Text: line})
		} else {
			segments[len(segments)-1].Text += " " + line
		}
	}

	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })
	return segments
}

// parseClock parses an HH:MM:SS.mmm timestamp; malformed input maps to 0.
func parseClock(s string) time.Duration {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0
	}

	var hours, minutes int
	var seconds float64
	fmt.Sscanf(parts[0], "%d", &hours)
	fmt.Sscanf(parts[1], "%d", &minutes)
	fmt.Sscanf(parts[2], "%f", &seconds)

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
}

// joinSegments rebuilds the full text from ordered segments.
func joinSegments(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}
	return b.String()
}
