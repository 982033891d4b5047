package record

import (
	"bufio"
	"fmt"
	"io"
	"iter"
)

// MaxLineSize bounds a single input line.
const MaxLineSize = 1 << 20

// Line is one raw input line with its 1-based number.
type Line struct {
	Number int
	Text   string
}

// ParseError reports an input line that could not be read.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Lines yields every line of r. A read failure is yielded once as a
// *ParseError and ends the sequence.
func Lines(r io.Reader) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

		n := 0
		for scanner.Scan() {
			n++
			if !yield(Line{Number: n, Text: scanner.Text()}, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Line{Number: n + 1}, &ParseError{Line: n + 1, Err: err})
		}
	}
}
