// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package window splits document text into overlapping fixed-size windows
// for per-window extraction.
package window

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig reports windowing parameters that violate the
// size > overlap >= 0 precondition.
var ErrInvalidConfig = errors.New("invalid windowing configuration")

// Window is one contiguous slice of a source document. Offsets and lengths
// are measured in runes so multi-byte text never splits mid-character.
type Window struct {
	// Index is the window's position in document order, starting at 0.
	Index int

	// Start is the rune offset of the window within the source text.
	Start int

	// Text is the window content.
	Text string
}

// Split cuts text into the smallest ordered sequence of windows such that
// consecutive windows overlap by exactly overlap runes. Every window except
// the last has length exactly size; the last may be shorter. Text no longer
// than size yields a single window equal to the whole input.
//
// Split is a pure function: same input, same output, no side effects.
func Split(text string, size, overlap int) ([]Window, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d (need size > overlap >= 0)", ErrInvalidConfig, size, overlap)
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []Window{{Index: 0, Start: 0, Text: text}}, nil
	}

	step := size - overlap
	var windows []Window
	for start := 0; ; start += step {
		end := start + size
		if end >= len(runes) {
			windows = append(windows, Window{
				Index: len(windows),
				Start: start,
				Text:  string(runes[start:]),
			})
			return windows, nil
		}
		windows = append(windows, Window{
			Index: len(windows),
			Start: start,
			Text:  string(runes[start:end]),
		})
	}
}
