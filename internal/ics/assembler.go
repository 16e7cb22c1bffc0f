package ics

import "bytes"

// LineAssembler reconstructs complete logical ICS lines from an
// arbitrarily-chunked byte stream. It implements io.Writer so a fetch layer
// can stream a response body straight into it; every CRLF- or LF-terminated
// line is handed to the callback exactly once, in order, with the line
// terminator stripped. A partial line is buffered across chunk boundaries.
type LineAssembler struct {
	emit func(line string) error
	buf  []byte
}

// NewLineAssembler returns an assembler feeding complete lines to emit.
func NewLineAssembler(emit func(line string) error) *LineAssembler {
	return &LineAssembler{emit: emit}
}

// Write consumes one chunk of the stream. It returns len(p) unless the line
// callback fails, in which case the assembler is no longer usable for this
// source.
func (a *LineAssembler) Write(p []byte) (int, error) {
	rest := p
	for {
		nl := bytes.IndexByte(rest, '\n')
		if nl < 0 {
			a.buf = append(a.buf, rest...)
			return len(p), nil
		}
		a.buf = append(a.buf, rest[:nl]...)
		line := a.buf
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		if err := a.emit(string(line)); err != nil {
			return len(p) - len(rest), err
		}
		a.buf = a.buf[:0]
		rest = rest[nl+1:]
	}
}

// Flush hands any buffered trailing bytes to the callback as a final line.
// Calendar sources are expected to end their last line with a terminator, so
// this is only a safety net for truncated streams.
func (a *LineAssembler) Flush() error {
	if len(a.buf) == 0 {
		return nil
	}
	err := a.emit(string(a.buf))
	a.buf = a.buf[:0]
	return err
}
