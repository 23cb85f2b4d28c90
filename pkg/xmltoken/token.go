package xmltoken

import (
	"fmt"

	"github.com/jacoelho/xmllex/pkg/xmlinput"
)

// Position locates a token in the input.
type Position = xmlinput.Position

// Token is one lexical token. It is a plain value whose bytes alias
// tokenizer-owned storage; see the package documentation for lifetimes.
type Token struct {
	kind     Kind
	data     []byte
	pos      Position
	code     ErrorCode
	severity Severity
}

// Kind reports the token kind.
func (t Token) Kind() Kind {
	return t.kind
}

// Bytes returns the token payload: a name for tags and attribute names, the
// content for text-like tokens and the message for errors.
func (t Token) Bytes() []byte {
	return t.data
}

// Pos reports where the token starts.
func (t Token) Pos() Position {
	return t.pos
}

// Line reports the 1-based line where the token starts.
func (t Token) Line() uint32 {
	return t.pos.Line
}

// Column reports the 1-based column where the token starts.
func (t Token) Column() uint32 {
	return t.pos.Column
}

// Offset reports the byte offset where the token starts.
func (t Token) Offset() int64 {
	return t.pos.Offset
}

// Code reports the error code of an Error token.
func (t Token) Code() ErrorCode {
	return t.code
}

// Severity reports the severity of an Error token.
func (t Token) Severity() Severity {
	return t.severity
}

// Clone returns a copy of the token that owns its bytes.
func (t Token) Clone() Token {
	if t.data != nil {
		t.data = append([]byte(nil), t.data...)
	}
	return t
}

// String formats the token for debugging.
func (t Token) String() string {
	if t.kind == KindError {
		return fmt.Sprintf("%s %s(%s) %q", t.pos, t.kind, t.code, t.data)
	}
	return fmt.Sprintf("%s %s %q", t.pos, t.kind, t.data)
}

func clip(b []byte) []byte {
	return b[:len(b):len(b)]
}
