// Package docstate checks document-level structure over a token stream:
// exactly one root element, and nothing but whitespace, comments and
// processing instructions around it.
package docstate

import (
	"fmt"

	"github.com/jacoelho/xmllex/pkg/xmltoken"
)

// Problem is a document-structure violation.
type Problem struct {
	Pos     xmltoken.Position
	Message string
}

func (p Problem) Error() string {
	return fmt.Sprintf("xml document error at line %d, column %d: %s", p.Pos.Line, p.Pos.Column, p.Message)
}

// DocumentState tracks document-boundary state across one token stream.
type DocumentState struct {
	problems    []Problem
	depth       int
	rootSeen    bool
	rootClosed  bool
	doctypeSeen bool
}

// New returns an initialized document-boundary state.
func New() DocumentState {
	return DocumentState{}
}

// RootSeen reports whether a root start element has been seen.
func (s *DocumentState) RootSeen() bool {
	return s != nil && s.rootSeen
}

// RootClosed reports whether the root element has been closed.
func (s *DocumentState) RootClosed() bool {
	return s != nil && s.rootClosed
}

// Depth reports the element depth implied by the tokens observed so far.
func (s *DocumentState) Depth() int {
	if s == nil {
		return 0
	}
	return s.depth
}

// Problems returns the violations found so far.
func (s *DocumentState) Problems() []Problem {
	if s == nil {
		return nil
	}
	return s.problems
}

// Observe advances the state for one token.
func (s *DocumentState) Observe(tok xmltoken.Token) {
	switch tok.Kind() {
	case xmltoken.KindStartTag:
		s.onStartElement(tok.Pos())
		s.depth++
	case xmltoken.KindEmptyTag:
		s.onStartElement(tok.Pos())
		if s.depth == 0 {
			s.rootClosed = true
		}
	case xmltoken.KindEndTag:
		if s.depth == 0 {
			return
		}
		s.depth--
		if s.depth == 0 {
			s.rootClosed = true
		}
	case xmltoken.KindText:
		if s.depth == 0 && !isIgnorableOutsideRoot(tok.Bytes()) {
			s.report(tok.Pos(), "character data outside root element")
		}
	case xmltoken.KindCDATA:
		if s.depth == 0 {
			s.report(tok.Pos(), "CDATA section outside root element")
		}
	case xmltoken.KindDoctype:
		switch {
		case s.doctypeSeen:
			s.report(tok.Pos(), "duplicate DOCTYPE declaration")
		case s.rootSeen:
			s.report(tok.Pos(), "DOCTYPE declaration after root element")
		}
		s.doctypeSeen = true
	case xmltoken.KindDocumentEnd:
		if !s.rootSeen {
			s.report(tok.Pos(), "no root element")
		}
	}
}

func (s *DocumentState) onStartElement(pos xmltoken.Position) {
	if s.depth > 0 {
		return
	}
	if s.rootClosed {
		s.report(pos, "element after root element")
	}
	s.rootSeen = true
}

func (s *DocumentState) report(pos xmltoken.Position, msg string) {
	s.problems = append(s.problems, Problem{Pos: pos, Message: msg})
}

func isIgnorableOutsideRoot(data []byte) bool {
	for _, b := range data {
		if b != ' ' && b != '\t' && b != '\n' && b != '\r' {
			return false
		}
	}
	return true
}
