package xmltoken

import (
	"bytes"
	"fmt"

	"github.com/jacoelho/xmllex/pkg/xmlinput"
)

// scanMarkup dispatches on the scalar after '<'.
func (t *Tokenizer) scanMarkup() {
	t.markStart()
	t.state = StateTagOpen
	t.in.GetChar()
	switch c := t.in.PeekChar(); {
	case c == '/':
		t.in.GetChar()
		t.scanEndTag()
	case c == '!':
		t.in.GetChar()
		t.scanBang()
	case c == '?':
		t.in.GetChar()
		t.scanPI()
	case isNameStartChar(c):
		t.scanStartTag()
	case c == xmlinput.EOF:
		t.unterminated(CodeUnterminatedTag, "tag")
	default:
		t.syntaxError(CodeInvalidCharAfterLT, fmt.Sprintf("invalid character %q after '<'", c))
	}
}

// frameRoom returns how many bytes a run limited to soft may still write
// into f, and whether the tag buffer is the tighter bound.
func frameRoom(f *frame, soft int) (int, bool) {
	if room := f.room(); room < soft {
		return room, true
	}
	return soft, false
}

func (t *Tokenizer) failFrameLimit(perTag bool, what, name string, soft int) {
	if perTag {
		t.failLimit("tag", "MaxPerTagBytes", t.limits.MaxPerTagBytes)
		return
	}
	t.failLimit(what, name, soft)
}

// abortTag drops the frame of the tag being scanned and reports a syntax
// error, or an unterminated tag at end of input.
func (t *Tokenizer) abortTag(code ErrorCode, msg string) {
	t.popFrame()
	if t.in.PeekChar() == xmlinput.EOF {
		t.unterminated(CodeUnterminatedTag, "start tag")
		return
	}
	t.syntaxError(code, msg)
}

// readFrameName appends a name to the tag buffer. The first scalar has
// already been checked to be a NameStartChar.
func (t *Tokenizer) readFrameName(f *frame, what string) (off, n int, ok bool) {
	off = len(f.buf)
	room, perTag := frameRoom(f, t.limits.MaxNameBytes)
	var over bool
	f.buf = t.in.ReadWhile(f.buf, bounded(room, &over, isNameChar))
	if over {
		t.failFrameLimit(perTag, what+" name", "MaxNameBytes", t.limits.MaxNameBytes)
		return 0, 0, false
	}
	return off, len(f.buf) - off, true
}

// scanStartTag scans a whole start or empty-element tag into a new frame
// and queues its tokens.
func (t *Tokenizer) scanStartTag() {
	if t.depth >= t.limits.MaxDepth {
		t.fail(CodeLimitExceeded, fmt.Sprintf("element nesting exceeds MaxDepth (%d)", t.limits.MaxDepth))
		return
	}
	f := t.pushFrame(t.pendingStart)
	t.state = StateStartTagName
	var ok bool
	if f.nameOff, f.nameLen, ok = t.readFrameName(f, "element"); !ok {
		return
	}
	for {
		t.state = StateInTag
		spaced := t.in.SkipWhitespace()
		c := t.in.PeekChar()
		switch {
		case c == '>':
			t.in.GetChar()
			t.emitTag(f, false)
			return
		case c == '/':
			t.in.GetChar()
			if t.in.PeekChar() != '>' {
				t.abortTag(CodeUnterminatedTag, fmt.Sprintf("expected '>' after '/' in tag <%s>", f.name()))
				return
			}
			t.in.GetChar()
			t.emitTag(f, true)
			return
		case !isNameStartChar(c):
			t.abortTag(CodeInvalidCharInName, fmt.Sprintf("invalid character %q in tag <%s>", c, f.name()))
			return
		case !spaced:
			t.abortTag(CodeInvalidCharInName, fmt.Sprintf("missing whitespace before attribute in tag <%s>", f.name()))
			return
		}
		if !t.scanAttr(f) {
			return
		}
	}
}

// scanAttr scans name="value" into f.
func (t *Tokenizer) scanAttr(f *frame) bool {
	if len(f.attrs) >= t.limits.MaxAttrsPerElement {
		t.fail(CodeLimitExceeded, fmt.Sprintf("tag <%s> exceeds MaxAttrsPerElement (%d)", f.name(), t.limits.MaxAttrsPerElement))
		return false
	}
	t.state = StateAttrName
	a := attrSpan{namePos: t.in.Position()}
	var ok bool
	if a.nameOff, a.nameLen, ok = t.readFrameName(f, "attribute"); !ok {
		return false
	}
	name := f.buf[a.nameOff : a.nameOff+a.nameLen]

	t.state = StateAfterAttrName
	t.in.SkipWhitespace()
	if t.in.PeekChar() != '=' {
		t.abortTag(CodeExpectedEqualsAfterAttrName, fmt.Sprintf("expected '=' after attribute name %q", name))
		return false
	}
	t.in.GetChar()

	t.state = StateBeforeAttrValue
	t.in.SkipWhitespace()
	quote := t.in.PeekChar()
	if quote != '"' && quote != '\'' {
		t.abortTag(CodeExpectedQuoteForAttrValue, fmt.Sprintf("expected quote before value of attribute %q", name))
		return false
	}
	t.in.GetChar()

	t.state = StateAttrValueQuoted
	a.valuePos = t.in.Position()
	a.valueOff = len(f.buf)
	if !t.readAttrValue(f, quote, name) {
		return false
	}
	a.valueLen = len(f.buf) - a.valueOff
	f.attrs = append(f.attrs, a)
	return true
}

func (t *Tokenizer) readAttrValue(f *frame, quote rune, name []byte) bool {
	start := len(f.buf)
	soft := t.limits.MaxAttrValueBytes
	accept := func(c rune) bool {
		return c != quote && t.textChar(c)
	}
	for {
		room, perTag := frameRoom(f, soft-(len(f.buf)-start))
		var over bool
		f.buf = t.in.ReadWhile(f.buf, bounded(room, &over, accept))
		if over {
			t.failFrameLimit(perTag, "attribute value", "MaxAttrValueBytes", soft)
			return false
		}
		switch c := t.in.PeekChar(); c {
		case quote:
			t.in.GetChar()
			return true
		case '<':
			t.abortTag(CodeUnterminatedTag, fmt.Sprintf("'<' in value of attribute %q", name))
			return false
		case '&':
			at := t.in.Position()
			t.in.GetChar()
			room, perTag = frameRoom(f, soft-(len(f.buf)-start))
			var st refStatus
			f.buf, st = t.reference(f.buf, room, at)
			switch st {
			case refOver:
				t.failFrameLimit(perTag, "attribute value", "MaxAttrValueBytes", soft)
				return false
			case refFatal:
				return false
			}
		case '\r':
			t.in.GetChar()
			if t.in.PeekChar() == '\n' {
				t.in.GetChar()
			}
			room, perTag = frameRoom(f, soft-(len(f.buf)-start))
			if room < 1 {
				t.failFrameLimit(perTag, "attribute value", "MaxAttrValueBytes", soft)
				return false
			}
			f.buf = append(f.buf, '\n')
		default:
			t.abortTag(CodeUnterminatedTag, fmt.Sprintf("unterminated value of attribute %q", name))
			return false
		}
	}
}

// emitTag queues the tag token followed by its attribute tokens. An empty
// element's frame is popped once all of them have been returned.
func (t *Tokenizer) emitTag(f *frame, empty bool) {
	f.empty = empty
	kind := KindStartTag
	if empty {
		kind = KindEmptyTag
	}
	t.state = StateContent
	t.stats.peak(&t.stats.MaxTagArena, len(f.buf))
	t.queue.push(Token{kind: kind, data: f.name(), pos: f.start})
	for i, a := range f.attrs {
		t.queue.push(Token{kind: KindAttributeName, data: f.attrName(i), pos: a.namePos})
		t.queue.push(Token{kind: KindAttributeValue, data: f.attrValue(i), pos: a.valuePos})
	}
	t.flushDeferred()
}

// scanEndTag scans "name S? >" after "</". The name goes to the text arena.
func (t *Tokenizer) scanEndTag() {
	t.state = StateEndTagName
	t.text = t.text[:0]
	if isNameStartChar(t.in.PeekChar()) {
		var over bool
		t.text = t.in.ReadWhile(t.text, bounded(t.limits.MaxNameBytes, &over, isNameChar))
		if over {
			t.failLimit("end tag name", "MaxNameBytes", t.limits.MaxNameBytes)
			return
		}
	}
	t.in.SkipWhitespace()
	switch c := t.in.PeekChar(); c {
	case '>':
		t.in.GetChar()
	case xmlinput.EOF:
		t.unterminated(CodeUnterminatedTag, "end tag")
		return
	default:
		t.syntaxError(CodeInvalidCharInName, fmt.Sprintf("invalid character %q in end tag", c))
		return
	}

	name := clip(t.text)
	f := t.top()
	if f == nil {
		msg := fmt.Sprintf("end tag </%s> has no open element", name)
		t.state = StateContent
		t.push(t.record(CodeUnexpectedEndTag, t.structural(), t.pendingStart, msg, nil))
		return
	}
	// a zero-length name closes the innermost element.
	if len(name) > 0 && !bytes.Equal(name, f.name()) {
		msg := fmt.Sprintf("end tag </%s> does not match start tag <%s>", name, f.name())
		t.push(t.record(CodeMismatchedEndTag, t.structural(), t.pendingStart, msg, nil))
		if t.halted {
			return
		}
		// close the elements opened inside a matching ancestor.
		if i := t.openFrame(name); i >= 0 {
			for t.depth > i+1 {
				t.popFrame()
			}
		}
	}
	t.popFrame()
	t.complete(Token{kind: KindEndTag, data: name, pos: t.pendingStart})
}
