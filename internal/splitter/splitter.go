// Package splitter cuts extracted text into bounded, overlapping chunks,
// the unit stored and retrieved by the vector index.
package splitter

import (
	"iter"
	"strings"
)

const (
	// DefaultMaxChars bounds the length of a single chunk.
	DefaultMaxChars = 500
	// DefaultOverlap is how many characters consecutive chunks share, so
	// content spanning a chunk boundary stays retrievable.
	DefaultOverlap = 50
)

// Chunk is one bounded slice of a document's text with its provenance tag.
type Chunk struct {
	Content string
	Source  string
}

// Splitter produces overlapping chunks of at most MaxChars characters.
type Splitter struct {
	MaxChars int
	Overlap  int
}

// New creates a Splitter. Non-positive maxChars or overlap fall back to the
// defaults; an overlap that is not smaller than maxChars is clamped so the
// split always advances.
func New(maxChars, overlap int) *Splitter {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxChars {
		overlap = maxChars / 10
	}
	return &Splitter{MaxChars: maxChars, Overlap: overlap}
}

// Split returns a lazy, restartable sequence of chunks for the given text.
// Every chunk carries the source tag; empty or whitespace-only input yields
// nothing. Chunk boundaries prefer a paragraph break, then a sentence end,
// then a word boundary, before falling back to a hard cut at MaxChars.
func (s *Splitter) Split(text, source string) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		if strings.TrimSpace(text) == "" {
			return
		}

		runes := []rune(text)
		start := 0
		for start < len(runes) {
			end := start + s.MaxChars
			if end >= len(runes) {
				end = len(runes)
			} else {
				end = s.breakPoint(runes, start, end)
			}

			content := string(runes[start:end])
			if strings.TrimSpace(content) != "" {
				if !yield(Chunk{Content: content, Source: source}) {
					return
				}
			}

			if end == len(runes) {
				return
			}
			next := end - s.Overlap
			if next <= start {
				next = end
			}
			start = next
		}
	}
}

// Chunks collects the full split into a slice.
func (s *Splitter) Chunks(text, source string) []Chunk {
	var out []Chunk
	for c := range s.Split(text, source) {
		out = append(out, c)
	}
	return out
}

// breakPoint finds the best boundary in (floor, limit], scanning backward
// for a paragraph break, then a sentence end, then a word boundary. The
// floor at half a chunk keeps boundary-hunting from producing slivers.
func (s *Splitter) breakPoint(runes []rune, start, limit int) int {
	floor := start + s.MaxChars/2
	if floor >= limit {
		return limit
	}

	// Paragraph: break after a blank line.
	for i := limit - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}

	// Sentence: break after terminal punctuation followed by whitespace.
	for i := limit - 1; i > floor; i-- {
		if isSentenceEnd(runes[i-1]) && isSpace(runes[i]) {
			return i + 1
		}
	}

	// Word: break after whitespace.
	for i := limit - 1; i > floor; i-- {
		if isSpace(runes[i]) {
			return i + 1
		}
	}

	return limit
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
