// Package xmllex tokenizes XML documents incrementally from a byte stream.
//
// A Lexer couples an xmlinput.Reader with an xmltoken.Tokenizer configured
// from one LexOptions value. Token bytes alias lexer-owned storage and stay
// valid only until the next call to Next.
package xmllex

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/xmllex/pkg/xmlinput"
	"github.com/jacoelho/xmllex/pkg/xmltoken"
)

// Token is one lexical token.
type Token = xmltoken.Token

// Lexer reads tokens from one document.
type Lexer struct {
	in     *xmlinput.Reader
	tok    *xmltoken.Tokenizer
	closer io.Closer
}

// New returns a Lexer over r.
func New(r io.Reader, opts LexOptions) (*Lexer, error) {
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("lex options: %w", err)
	}
	in, err := xmlinput.New(r, resolved.bufferSize)
	if err != nil {
		return nil, fmt.Errorf("create input reader: %w", err)
	}
	return &Lexer{in: in, tok: xmltoken.New(in, resolved.tokenizer)}, nil
}

// Open returns a Lexer over the file at path. Close releases the file.
func Open(path string, opts LexOptions) (*Lexer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open xml file %s: %w", path, err)
	}
	lx, err := New(f, opts)
	if err != nil {
		return nil, errors.Join(err, f.Close())
	}
	lx.closer = f
	return lx, nil
}

// Next stores the next token in tok and reports whether one was produced.
func (l *Lexer) Next(tok *Token) bool {
	return l.tok.NextToken(tok)
}

// Err returns the fatal diagnostic that stopped the lexer, or nil.
func (l *Lexer) Err() error {
	return l.tok.Err()
}

// Errors returns every diagnostic recorded so far.
func (l *Lexer) Errors() []xmltoken.Diagnostic {
	return l.tok.Errors()
}

// Stats reports the tokenizer counters.
func (l *Lexer) Stats() xmltoken.Stats {
	return l.tok.Stats()
}

// Encoding reports the encoding detected from the byte order mark.
func (l *Lexer) Encoding() xmlinput.Encoding {
	return l.in.Encoding()
}

// Tokenizer exposes the underlying tokenizer.
func (l *Lexer) Tokenizer() *xmltoken.Tokenizer {
	return l.tok
}

// Close releases the file opened by Open. It is a no-op for lexers built by New.
func (l *Lexer) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// Tokenize calls fn for every token of r. It stops at the first error
// returned by fn, and otherwise returns the fatal diagnostic, if any.
// The token passed to fn is only valid during the call.
func Tokenize(r io.Reader, opts LexOptions, fn func(Token) error) error {
	lx, err := New(r, opts)
	if err != nil {
		return err
	}
	var tok Token
	for lx.Next(&tok) {
		if err := fn(tok); err != nil {
			return err
		}
	}
	return lx.Err()
}
