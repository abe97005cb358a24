// Package chunker splits document text into deterministic, overlapping
// chunks sized to fit an embedding model's context window.
package chunker

import (
	"strings"
	"unicode"
)

// Chunk is a single ordered slice of a document's text.
type Chunk struct {
	Ordinal    int
	Text       string
	TokenCount int
}

// Options configures the chunking window and overlap. Window and Overlap
// are expressed in whitespace-delimited words, which this package treats
// as its token unit — callers must keep this consistent with whatever
// unit their Embedder expects (§4.3).
type Options struct {
	Window  int
	Overlap int
}

// DefaultOptions returns the window/overlap used when a caller does not
// override them.
func DefaultOptions() Options {
	return Options{Window: 500, Overlap: 50}
}

// Split tokenizes text on whitespace and produces ordered, non-empty
// chunks where chunk i+1 overlaps chunk i by exactly Overlap tokens at
// the start, best-effort on the boundary. The last chunk may be shorter.
// Empty input produces zero chunks. Split is deterministic: identical
// input and options always produce byte-identical chunk texts.
func Split(text string, opts Options) []Chunk {
	if opts.Window <= 0 {
		opts.Window = DefaultOptions().Window
	}
	if opts.Overlap < 0 || opts.Overlap >= opts.Window {
		opts.Overlap = DefaultOptions().Overlap
		if opts.Overlap >= opts.Window {
			opts.Overlap = opts.Window / 10
		}
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	step := opts.Window - opts.Overlap
	if step <= 0 {
		step = opts.Window
	}

	var chunks []Chunk
	ordinal := 0
	for start := 0; start < len(tokens); start += step {
		end := start + opts.Window
		if end > len(tokens) {
			end = len(tokens)
		}

		chunkText := strings.Join(tokens[start:end], " ")
		chunks = append(chunks, Chunk{
			Ordinal:    ordinal,
			Text:       chunkText,
			TokenCount: end - start,
		})
		ordinal++

		if end == len(tokens) {
			break
		}
	}

	return chunks
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r)
	})
}
