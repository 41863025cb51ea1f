package textproc

import (
	"strings"
	"sync"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
)

// loadTokenizer builds the punkt tokenizer from the embedded English
// training data. A nil result routes everything through the fallback.
func loadTokenizer() *sentences.DefaultSentenceTokenizer {
	tokenizerOnce.Do(func() {
		t, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			return
		}
		tokenizer = t
	})
	return tokenizer
}

// Sentences splits cleaned text into sentences using the punkt tokenizer,
// falling back to a deterministic regex-style splitter when the trained
// data cannot be loaded. Non-empty input always yields at least one
// sentence.
func Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if t := loadTokenizer(); t != nil {
		var out []string
		for _, s := range t.Tokenize(text) {
			if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	return fallbackSentences(text)
}

// abbreviations are word endings the fallback splitter never breaks after.
var abbreviations = map[string]bool{
	"mr.":   true,
	"mrs.":  true,
	"dr.":   true,
	"st.":   true,
	"vs.":   true,
	"e.g.":  true,
	"i.e.":  true,
	"etc.":  true,
	"prof.": true,
	"jr.":   true,
	"sr.":   true,
}

// fallbackSentences splits after '.', '!' or '?' followed by whitespace and
// an upper-case letter or digit, refusing to split after known
// abbreviations. It always terminates and returns at least one sentence for
// non-empty input.
func fallbackSentences(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		// Peek past the punctuation run: need whitespace then a sentence
		// opener.
		j := i + 1
		for j < len(runes) && (runes[j] == '.' || runes[j] == '!' || runes[j] == '?') {
			j++
		}
		k := j
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k == j || k >= len(runes) {
			continue
		}
		if !unicode.IsUpper(runes[k]) && !unicode.IsDigit(runes[k]) {
			continue
		}
		if r == '.' && isAbbreviation(runes[start:j]) {
			continue
		}

		out = append(out, strings.TrimSpace(string(runes[start:j])))
		start = k
		i = k - 1
	}

	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		out = append(out, rest)
	}
	return out
}

// isAbbreviation reports whether the sentence candidate ends in a known
// abbreviation (final whitespace-delimited word, case-insensitive).
func isAbbreviation(candidate []rune) bool {
	s := string(candidate)
	if idx := strings.LastIndexFunc(s, unicode.IsSpace); idx >= 0 {
		s = s[idx+1:]
	}
	return abbreviations[strings.ToLower(s)]
}
