package xmltoken

import (
	"bytes"
	"fmt"

	"github.com/jacoelho/xmllex/pkg/xmlinput"
)

// expect consumes lit scalar by scalar and reports whether all of it matched.
// The first mismatching scalar is left unread.
func (t *Tokenizer) expect(lit string) bool {
	for _, want := range lit {
		if t.in.PeekChar() != want {
			return false
		}
		t.in.GetChar()
	}
	return true
}

// markupError reports a malformed markup opening.
func (t *Tokenizer) markupError(code ErrorCode, what, msg string) {
	if t.in.PeekChar() == xmlinput.EOF {
		t.unterminated(code, what)
		return
	}
	t.syntaxError(CodeInvalidCharAfterLT, msg)
}

// scanBang dispatches on the scalar after "<!".
func (t *Tokenizer) scanBang() {
	t.state = StateAfterBang
	switch c := t.in.PeekChar(); c {
	case '-':
		t.scanComment()
	case '[':
		t.scanCDATA()
	case 'D':
		t.scanDoctype()
	case xmlinput.EOF:
		t.unterminated(CodeUnterminatedTag, "markup declaration")
	default:
		t.syntaxError(CodeInvalidCharAfterLT, fmt.Sprintf("invalid character %q after '<!'", c))
	}
}

func (t *Tokenizer) scanComment() {
	t.state = StateCommentStart1
	t.in.GetChar()
	t.state = StateCommentStart2
	if !t.expect("-") {
		t.markupError(CodeUnterminatedComment, "comment", "expected '<!--'")
		return
	}
	t.state = StateInComment
	t.text = t.text[:0]
	limit := t.limits.MaxCommentBytes
	reported := false
	notDash := func(c rune) bool { return c != '-' }
	for {
		var ok bool
		switch t.state {
		case StateInComment:
			var over bool
			t.text = t.in.ReadWhile(t.text, bounded(limit-len(t.text), &over, notDash))
			if over {
				t.failLimit("comment", "MaxCommentBytes", limit)
				return
			}
			if t.in.GetChar() == xmlinput.EOF {
				t.unterminated(CodeUnterminatedComment, "comment")
				return
			}
			t.state = StateCommentEnd1
			continue
		case StateCommentEnd1:
			switch c := t.in.GetChar(); c {
			case xmlinput.EOF:
				t.unterminated(CodeUnterminatedComment, "comment")
				return
			case '-':
				t.state = StateCommentEnd2
				continue
			default:
				t.text, ok = appendLimited(t.text, limit, '-', c)
				t.state = StateInComment
			}
		case StateCommentEnd2:
			c := t.in.GetChar()
			switch c {
			case '>':
				t.complete(Token{kind: KindComment, data: clip(t.text), pos: t.pendingStart})
				return
			case xmlinput.EOF:
				t.unterminated(CodeUnterminatedComment, "comment")
				return
			}
			if t.flags.Strict && !reported {
				reported = true
				t.deferError(CodeBadCommentDoubleDash, t.in.Position(), "'--' is not allowed inside a comment")
			}
			if c == '-' {
				t.text, ok = appendLimited(t.text, limit, '-')
			} else {
				t.text, ok = appendLimited(t.text, limit, '-', '-', c)
				t.state = StateInComment
			}
		}
		if !ok {
			t.failLimit("comment", "MaxCommentBytes", limit)
			return
		}
	}
}

func (t *Tokenizer) scanCDATA() {
	t.state = StateCDataStart
	if !t.expect("[CDATA[") {
		t.markupError(CodeUnterminatedCDATA, "CDATA section", "expected '<![CDATA['")
		return
	}
	t.state = StateInCData
	t.text = t.text[:0]
	limit := t.limits.MaxCDATABytes
	notBracket := func(c rune) bool { return c != ']' }
	for {
		var ok bool
		switch t.state {
		case StateInCData:
			var over bool
			t.text = t.in.ReadWhile(t.text, bounded(limit-len(t.text), &over, notBracket))
			if over {
				t.failLimit("CDATA section", "MaxCDATABytes", limit)
				return
			}
			if t.in.GetChar() == xmlinput.EOF {
				t.unterminated(CodeUnterminatedCDATA, "CDATA section")
				return
			}
			t.state = StateCDataEnd1
			continue
		case StateCDataEnd1:
			switch c := t.in.GetChar(); c {
			case xmlinput.EOF:
				t.unterminated(CodeUnterminatedCDATA, "CDATA section")
				return
			case ']':
				t.state = StateCDataEnd2
				continue
			default:
				t.text, ok = appendLimited(t.text, limit, ']', c)
				t.state = StateInCData
			}
		case StateCDataEnd2:
			switch c := t.in.GetChar(); c {
			case '>':
				t.complete(Token{kind: KindCDATA, data: clip(t.text), pos: t.pendingStart})
				return
			case xmlinput.EOF:
				t.unterminated(CodeUnterminatedCDATA, "CDATA section")
				return
			case ']':
				t.text, ok = appendLimited(t.text, limit, ']')
			default:
				t.text, ok = appendLimited(t.text, limit, ']', ']', c)
				t.state = StateInCData
			}
		}
		if !ok {
			t.failLimit("CDATA section", "MaxCDATABytes", limit)
			return
		}
	}
}

// scanDoctype reads the declaration body up to the '>' that is outside
// quotes and outside the internal subset.
func (t *Tokenizer) scanDoctype() {
	if !t.expect("DOCTYPE") {
		t.markupError(CodeUnterminatedDoctype, "DOCTYPE", "expected '<!DOCTYPE'")
		return
	}
	t.state = StateDoctypeBody
	if !t.in.SkipWhitespace() {
		t.markupError(CodeUnterminatedDoctype, "DOCTYPE", "expected whitespace after '<!DOCTYPE'")
		return
	}
	t.text = t.text[:0]
	limit := t.limits.MaxDoctypeBytes
	var quote rune
	subset := 0
	// skip is the closing delimiter of a comment or PI inside the internal
	// subset; skipFrom is where its body starts in t.text.
	var skip string
	skipFrom := 0
	for {
		c := t.in.GetChar()
		if c == xmlinput.EOF {
			t.unterminated(CodeUnterminatedDoctype, "DOCTYPE")
			return
		}
		if c == '>' && subset == 0 && quote == 0 && skip == "" {
			body := bytes.TrimRight(t.text, " \t\r\n")
			if t.flags.Strict {
				if r, bad := publicIDFault(body); bad {
					t.deferError(CodeInvalidCharInName, t.pendingStart, fmt.Sprintf("invalid character %q in public identifier", r))
				}
			}
			t.complete(Token{kind: KindDoctype, data: clip(body), pos: t.pendingStart})
			return
		}
		var ok bool
		if t.text, ok = appendLimited(t.text, limit, c); !ok {
			t.failLimit("DOCTYPE", "MaxDoctypeBytes", limit)
			return
		}
		switch {
		case skip != "":
			if len(t.text)-skipFrom >= len(skip) && bytes.HasSuffix(t.text, []byte(skip)) {
				skip = ""
			}
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case subset > 0 && bytes.HasSuffix(t.text, []byte("<!--")):
			skip, skipFrom = "-->", len(t.text)
		case subset > 0 && bytes.HasSuffix(t.text, []byte("<?")):
			skip, skipFrom = "?>", len(t.text)
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			subset++
		case c == ']' && subset > 0:
			subset--
		}
	}
}

// publicIDFault returns the first scalar of a PUBLIC literal that is not a
// PubidChar.
func publicIDFault(body []byte) (rune, bool) {
	i := bytes.IndexFunc(body, isSpace)
	if i < 0 {
		return 0, false
	}
	rest := bytes.TrimLeft(body[i:], " \t\r\n")
	rest, ok := bytes.CutPrefix(rest, []byte("PUBLIC"))
	if !ok {
		return 0, false
	}
	rest = bytes.TrimLeft(rest, " \t\r\n")
	if len(rest) == 0 || (rest[0] != '"' && rest[0] != '\'') {
		return 0, false
	}
	end := bytes.IndexByte(rest[1:], rest[0])
	if end < 0 {
		return 0, false
	}
	for _, r := range string(rest[1 : 1+end]) {
		if !isPubidChar(r) {
			return r, true
		}
	}
	return 0, false
}

// scanPI reads "target content?>" after "<?". The token holds everything
// between the delimiters.
func (t *Tokenizer) scanPI() {
	t.state = StatePITarget
	t.text = t.text[:0]
	if c := t.in.PeekChar(); !isNameStartChar(c) {
		if c == xmlinput.EOF {
			t.unterminated(CodeUnterminatedPI, "processing instruction")
			return
		}
		t.syntaxError(CodeInvalidCharInName, fmt.Sprintf("invalid character %q at start of processing instruction target", c))
		return
	}
	limit := t.limits.MaxTextRunBytes
	var over bool
	t.text = t.in.ReadWhile(t.text, bounded(min(t.limits.MaxNameBytes, limit), &over, isNameChar))
	if over {
		t.failLimit("processing instruction target", "MaxNameBytes", t.limits.MaxNameBytes)
		return
	}
	targetLen := len(t.text)

	t.state = StatePIContent
	switch c := t.in.PeekChar(); {
	case c == '?' || isSpace(c):
	case c == xmlinput.EOF:
		t.unterminated(CodeUnterminatedPI, "processing instruction")
		return
	default:
		t.syntaxError(CodeInvalidCharInName, fmt.Sprintf("invalid character %q in processing instruction target", c))
		return
	}
	notQuestion := func(c rune) bool { return c != '?' }
	for {
		t.text = t.in.ReadWhile(t.text, bounded(limit-len(t.text), &over, notQuestion))
		if over {
			t.failLimit("processing instruction", "MaxTextRunBytes", limit)
			return
		}
		if t.in.GetChar() == xmlinput.EOF {
			t.unterminated(CodeUnterminatedPI, "processing instruction")
			return
		}
		if t.in.PeekChar() == '>' {
			t.in.GetChar()
			break
		}
		var ok bool
		if t.text, ok = appendLimited(t.text, limit, '?'); !ok {
			t.failLimit("processing instruction", "MaxTextRunBytes", limit)
			return
		}
	}

	data := clip(t.text)
	if string(data[:targetLen]) == "xml" {
		if t.flags.Strict && t.pendingStart.Offset != 0 {
			t.deferError(CodeMisplacedXMLDecl, t.pendingStart, "XML declaration must be at the start of the document")
		}
		if !t.flags.ReportXMLDecl {
			t.state = StateContent
			t.flushDeferred()
			return
		}
	}
	t.complete(Token{kind: KindPI, data: data, pos: t.pendingStart})
}

// resync skips input up to and including the next '>'.
func (t *Tokenizer) resync() {
	for {
		c := t.in.GetChar()
		if c == '>' || c == xmlinput.EOF {
			break
		}
	}
	t.state = StateContent
}
