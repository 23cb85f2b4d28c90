package xmlinput

import (
	"errors"
	"io"
	"unicode/utf8"

	"github.com/jacoelho/xmllex/pkg/utf8codec"
)

const (
	// EOF is returned by GetChar and PeekChar at the end of input.
	EOF rune = -1

	// MinBufferSize holds one worst-case UTF-8 sequence.
	MinBufferSize = utf8codec.UTFMax
	// DefaultBufferSize is used by callers that have no better estimate.
	DefaultBufferSize = 64 * 1024
	// MaxBufferSize is the absolute cap on the buffer size accepted by New.
	MaxBufferSize = 64 * 1024 * 1024

	maxConsecutiveEmptyReads = 100
)

// Reader decodes scalar values from a byte source through a fixed buffer.
// A Reader is not safe for concurrent use.
type Reader struct {
	src       io.Reader
	err       error
	buf       []byte
	pos       int
	end       int
	total     int64
	bomSize   int
	line      uint32
	column    uint32
	peekRune  rune
	peekWidth int
	encoding  Encoding
	eof       bool
	pendingCR bool
	peekValid bool
}

// New returns a Reader over r with a buffer of exactly size bytes.
func New(r io.Reader, size int) (*Reader, error) {
	if r == nil {
		return nil, ErrNilSource
	}
	switch {
	case size == 0:
		return nil, ErrZeroBufferSize
	case size < MinBufferSize:
		return nil, ErrBufferTooSmall
	case size > MaxBufferSize:
		return nil, ErrBufferTooLarge
	}
	buf, err := allocate(size)
	if err != nil {
		return nil, err
	}
	rd := &Reader{src: r, buf: buf, line: 1, column: 1}
	rd.detectEncoding()
	return rd, nil
}

func allocate(size int) (buf []byte, err error) {
	defer func() {
		if recover() != nil {
			buf, err = nil, ErrOutOfMemory
		}
	}()
	return make([]byte, size), nil
}

func (r *Reader) detectEncoding() {
	r.EnsureAtLeast(len(bomUTF32LE))
	enc, skip := detectBOM(r.buf[r.pos:r.end])
	r.encoding = enc
	if skip == 0 {
		return
	}
	// the mark is not text: position and CR state stay untouched.
	r.bomSize = skip
	r.pos += skip
	r.total += int64(skip)
	r.peekValid = false
}

// Move transfers the reader state to a new Reader.
// The receiver becomes permanently inert: Valid reports false and every read
// behaves as end of input.
func (r *Reader) Move() *Reader {
	if r == nil {
		return nil
	}
	moved := *r
	*r = Reader{line: 1, column: 1}
	return &moved
}

// Valid reports whether the reader owns a buffer.
func (r *Reader) Valid() bool {
	return r != nil && len(r.buf) > 0
}

// GetChar consumes and returns the next scalar value, or EOF.
func (r *Reader) GetChar() rune {
	if !r.Valid() {
		return EOF
	}
	if r.peekValid {
		r.peekValid = false
		r.advance(r.peekRune, r.peekWidth)
		return r.peekRune
	}
	c, width := r.decode()
	if width == 0 {
		return EOF
	}
	r.advance(c, width)
	return c
}

// PeekChar returns the next scalar value without consuming it, or EOF.
func (r *Reader) PeekChar() rune {
	if !r.Valid() {
		return EOF
	}
	if r.peekValid {
		return r.peekRune
	}
	c, width := r.decode()
	if width == 0 {
		return EOF
	}
	r.peekRune = c
	r.peekWidth = width
	r.peekValid = true
	return c
}

// ReadWhile consumes scalars while pred holds and appends their UTF-8 bytes to dst.
// It stops at the first rejected scalar, at malformed input or at end of input.
func (r *Reader) ReadWhile(dst []byte, pred func(rune) bool) []byte {
	if !r.Valid() {
		return dst
	}
	for {
		if !r.peekValid {
			start := r.pos
			for r.pos < r.end {
				b := r.buf[r.pos]
				if b >= utf8.RuneSelf || !pred(rune(b)) {
					break
				}
				r.advance(rune(b), 1)
			}
			dst = append(dst, r.buf[start:r.pos]...)
			if r.pos < r.end && r.buf[r.pos] < utf8.RuneSelf {
				return dst
			}
		}
		c := r.PeekChar()
		if c == EOF || !pred(c) {
			return dst
		}
		dst = append(dst, r.buf[r.pos:r.pos+r.peekWidth]...)
		r.GetChar()
	}
}

// ReadUntil consumes scalars up to, not including, delim.
func (r *Reader) ReadUntil(dst []byte, delim rune) []byte {
	return r.ReadWhile(dst, func(c rune) bool { return c != delim })
}

// SkipWhitespace consumes spaces, tabs, carriage returns and line feeds.
// It reports whether anything was consumed.
func (r *Reader) SkipWhitespace() bool {
	consumed := false
	for {
		switch r.PeekChar() {
		case ' ', '\t', '\r', '\n':
			r.GetChar()
			consumed = true
		default:
			return consumed
		}
	}
}

// EnsureAtLeast makes at least n unread bytes available in the buffer.
// Unread bytes are moved to the front of the buffer before topping it up.
// It returns false when the source is exhausted and fewer than n bytes remain,
// or when n exceeds the buffer size.
func (r *Reader) EnsureAtLeast(n int) bool {
	if !r.Valid() {
		return false
	}
	if r.available() >= n {
		return true
	}
	r.compact()
	for r.available() < n && !r.eof && r.end < len(r.buf) {
		r.fill()
	}
	return r.available() >= n
}

// EOF reports whether the source has been exhausted and no buffered bytes remain.
func (r *Reader) EOF() bool {
	if !r.Valid() {
		return true
	}
	return r.available() == 0 && r.eof
}

// Err reports why input ended early: a source error, io.ErrUnexpectedEOF for
// a sequence cut off by the end of input, or ErrInvalidUTF8.
// It returns nil after a clean end of input.
func (r *Reader) Err() error {
	if r == nil {
		return nil
	}
	return r.err
}

// Line reports the 1-based line of the next unread scalar.
func (r *Reader) Line() uint32 {
	if r == nil {
		return 1
	}
	return r.line
}

// Column reports the 1-based column of the next unread scalar.
func (r *Reader) Column() uint32 {
	if r == nil {
		return 1
	}
	return r.column
}

// Offset reports the number of bytes consumed, excluding a UTF-8 byte order mark.
func (r *Reader) Offset() int64 {
	if r == nil {
		return 0
	}
	return r.total - int64(r.bomSize)
}

// Position reports the position of the next unread scalar.
func (r *Reader) Position() Position {
	if r == nil {
		return Position{Line: 1, Column: 1}
	}
	return Position{Offset: r.Offset(), Line: r.line, Column: r.column}
}

// Encoding reports the encoding signalled by a byte order mark, if any.
func (r *Reader) Encoding() Encoding {
	if r == nil {
		return UTF8NoBOM
	}
	return r.encoding
}

// BOMSize reports how many byte order mark bytes were skipped.
func (r *Reader) BOMSize() int {
	if r == nil {
		return 0
	}
	return r.bomSize
}

// Size reports the buffer capacity in bytes.
func (r *Reader) Size() int {
	if r == nil {
		return 0
	}
	return len(r.buf)
}

func (r *Reader) available() int {
	return r.end - r.pos
}

// decode returns the next scalar and its width; width 0 means end of input.
func (r *Reader) decode() (rune, int) {
	if !r.EnsureAtLeast(1) {
		return EOF, 0
	}
	res := utf8codec.Decode(r.buf[r.pos:r.end])
	if res.Status == utf8codec.NeedMore {
		if !r.EnsureAtLeast(res.Width) {
			r.setErr(io.ErrUnexpectedEOF)
			return EOF, 0
		}
		res = utf8codec.Decode(r.buf[r.pos:r.end])
	}
	if res.Status != utf8codec.OK {
		r.setErr(ErrInvalidUTF8)
		return EOF, 0
	}
	return res.Rune, res.Width
}

// advance consumes one scalar of the given width and updates line and column.
// A CR starts a new line; an LF directly after a CR belongs to the same break.
func (r *Reader) advance(c rune, width int) {
	r.pos += width
	r.total += int64(width)
	switch c {
	case '\r':
		r.line++
		r.column = 1
		r.pendingCR = true
	case '\n':
		if r.pendingCR {
			r.pendingCR = false
			return
		}
		r.line++
		r.column = 1
	default:
		r.column++
		r.pendingCR = false
	}
}

func (r *Reader) compact() {
	if r.pos == 0 {
		return
	}
	n := copy(r.buf, r.buf[r.pos:r.end])
	r.pos = 0
	r.end = n
}

// fill performs one successful read into the free tail of the buffer.
func (r *Reader) fill() {
	for range maxConsecutiveEmptyReads {
		n, err := r.src.Read(r.buf[r.end:])
		if n > 0 {
			r.end += n
		}
		if err != nil {
			r.eof = true
			if !errors.Is(err, io.EOF) {
				r.setErr(err)
			}
			return
		}
		if n > 0 {
			return
		}
	}
	r.eof = true
	r.setErr(io.ErrNoProgress)
}

func (r *Reader) setErr(err error) {
	if r.err == nil {
		r.err = err
	}
}
