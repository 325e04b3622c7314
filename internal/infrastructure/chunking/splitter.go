// Package chunking splits extracted document text into overlapping
// word-window chunks sized for the embedding model's context.
package chunking

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxWords keeps chunks comfortably inside the 512-token
	// window of MiniLM-class embedding models.
	DefaultMaxWords = 400

	// DefaultOverlapWords carries trailing context into the next chunk
	// so sentences cut at a boundary stay retrievable.
	DefaultOverlapWords = 80
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Splitter accumulates paragraphs into chunks of at most maxWords words.
// When a chunk fills up, the last overlapWords words seed the next one.
type Splitter struct {
	maxWords     int
	overlapWords int
}

func NewSplitter(maxWords, overlapWords int) *Splitter {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	if overlapWords < 0 {
		overlapWords = 0
	}
	if overlapWords >= maxWords {
		overlapWords = maxWords / 4
	}
	return &Splitter{maxWords: maxWords, overlapWords: overlapWords}
}

func (s *Splitter) Split(text string) []string {
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []string
	var current []string

	for _, paragraph := range paragraphs {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			continue
		}

		if len(current) > 0 && len(current)+len(words) > s.maxWords {
			chunks = append(chunks, strings.Join(current, " "))
			current = append(s.tail(current), words...)
			continue
		}
		current = append(current, words...)
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// tail returns a copy of the last overlapWords words of chunk.
func (s *Splitter) tail(chunk []string) []string {
	start := len(chunk) - s.overlapWords
	if start < 0 {
		start = 0
	}
	out := make([]string, 0, len(chunk)-start)
	return append(out, chunk[start:]...)
}

func splitParagraphs(text string) []string {
	var out []string
	for _, part := range paragraphBreak.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
