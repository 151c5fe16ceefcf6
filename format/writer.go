package format

import "strings"

// writer collects formatted output. Line breaks are held back until the
// next write so runs can be capped, breaks at the start of the document
// dropped and trailing whitespace removed from every line.
type writer struct {
	buf         []byte
	nl          string
	maxNewlines int
	pending     int
}

func (w *writer) WriteString(s string) {
	if s == "" {
		return
	}
	w.flush()
	w.buf = append(w.buf, s...)
}

// Newlines queues n line breaks.
func (w *writer) Newlines(n int) {
	w.pending += n
}

func (w *writer) flush() {
	if w.pending == 0 {
		return
	}
	n := min(w.pending, w.maxNewlines)
	w.pending = 0
	if len(w.buf) == 0 {
		return
	}
	w.trimLine()
	for range n {
		w.buf = append(w.buf, w.nl...)
	}
}

func (w *writer) trimLine() {
	end := len(w.buf)
	for end > 0 && (w.buf[end-1] == ' ' || w.buf[end-1] == '\t') {
		end--
	}
	w.buf = w.buf[:end]
}

// finish returns the output, ending with exactly one line break when
// finalNewline is set and with none otherwise.
func (w *writer) finish(finalNewline bool) string {
	w.pending = 0
	// verbatim regions cut short at the end of input may end in line breaks
	end := len(w.buf)
	for end > 0 && strings.IndexByte(" \t\r\n", w.buf[end-1]) >= 0 {
		end--
	}
	w.buf = w.buf[:end]
	if finalNewline && len(w.buf) > 0 {
		w.buf = append(w.buf, w.nl...)
	}
	return string(w.buf)
}
