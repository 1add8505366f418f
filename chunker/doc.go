// Package chunker splits long-form document text into overlapping fragments
// sized for the embedding model's input limit.
//
// Splitting is a pure function of the input text and the configured window
// size and overlap: no I/O, no side effects. Window ends are snapped to
// sentence boundaries where one falls in the second half of the window, so
// fragments rarely cut mid-sentence.
package chunker
