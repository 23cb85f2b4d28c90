package xmltoken

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/jacoelho/xmllex/pkg/utf8codec"
	"github.com/jacoelho/xmllex/pkg/xmlinput"
)

// maxRefBytes bounds the name of an entity or character reference.
const maxRefBytes = 64

type refStatus uint8

const (
	refDone refStatus = iota
	refOver
	refFatal
)

var predefinedEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"apos": "'",
	"quot": "\"",
}

// bounded wraps accept so that at most room bytes are taken. over is set
// when an accepted scalar did not fit.
func bounded(room int, over *bool, accept func(rune) bool) func(rune) bool {
	return func(c rune) bool {
		if !accept(c) {
			return false
		}
		n := utf8codec.RuneLen(c)
		if n > room {
			*over = true
			return false
		}
		room -= n
		return true
	}
}

// appendLimited appends runes to dst unless the result would exceed limit bytes.
func appendLimited(dst []byte, limit int, runes ...rune) ([]byte, bool) {
	n := 0
	for _, r := range runes {
		n += utf8codec.RuneLen(r)
	}
	if len(dst)+n > limit {
		return dst, false
	}
	for _, r := range runes {
		dst, _ = utf8codec.AppendRune(dst, r)
	}
	return dst, true
}

func (t *Tokenizer) textChar(c rune) bool {
	switch c {
	case '<':
		return false
	case '&':
		return !t.flags.ExpandInternalEntities
	case '\r':
		return !t.flags.NormalizeLineEndings
	default:
		return true
	}
}

func (t *Tokenizer) failLimit(what, name string, limit int) {
	t.fail(CodeLimitExceeded, fmt.Sprintf("%s exceeds %s (%s)", what, name, humanize.IBytes(uint64(limit))))
}

// scanText reads character data up to the next '<' or end of input.
func (t *Tokenizer) scanText() {
	t.markStart()
	t.text = t.text[:0]
	limit := t.limits.MaxTextRunBytes
	accept := t.textChar
scan:
	for {
		var over bool
		t.text = t.in.ReadWhile(t.text, bounded(limit-len(t.text), &over, accept))
		if over {
			t.failLimit("text run", "MaxTextRunBytes", limit)
			return
		}
		switch t.in.PeekChar() {
		case '\r':
			t.in.GetChar()
			if t.in.PeekChar() == '\n' {
				t.in.GetChar()
			}
			var ok bool
			if t.text, ok = appendLimited(t.text, limit, '\n'); !ok {
				t.failLimit("text run", "MaxTextRunBytes", limit)
				return
			}
		case '&':
			if !t.flags.CoalesceText && len(t.text) > 0 {
				break scan
			}
			at := t.in.Position()
			t.in.GetChar()
			var st refStatus
			t.text, st = t.reference(t.text, limit-len(t.text), at)
			switch st {
			case refOver:
				t.failLimit("text run", "MaxTextRunBytes", limit)
				return
			case refFatal:
				return
			}
			if !t.flags.CoalesceText {
				break scan
			}
		default:
			break scan
		}
	}
	if !t.flags.ReportIntertagWhitespace && isSpaceBytes(t.text) {
		t.flushDeferred()
		return
	}
	t.complete(Token{kind: KindText, data: clip(t.text), pos: t.pendingStart})
}

func isRefChar(c rune) bool {
	return c == '#' || isNameChar(c)
}

// reference consumes the rest of a reference whose '&' is already read and
// appends its expansion to dst, using at most room bytes. Unknown entities
// and malformed references are kept verbatim.
func (t *Tokenizer) reference(dst []byte, room int, at xmlinput.Position) ([]byte, refStatus) {
	var long bool
	t.ref = t.in.ReadWhile(t.ref[:0], bounded(maxRefBytes, &long, isRefChar))
	terminated := !long && t.in.PeekChar() == ';'
	if terminated {
		t.in.GetChar()
	}
	ref := t.ref
	malformed := true
	if terminated && len(ref) > 0 {
		switch {
		case ref[0] == '#':
			r, ok := parseCharRef(ref[1:])
			if !ok {
				break
			}
			if utf8codec.RuneLen(r) > room {
				return dst, refOver
			}
			out, res := utf8codec.AppendRune(dst, r)
			if res.Status != utf8codec.OK {
				t.fail(CodeInvalidUTF8, fmt.Sprintf("character reference &%s; is not a Unicode scalar value", ref))
				return dst, refFatal
			}
			return out, refDone
		default:
			if rep, ok := predefinedEntities[string(ref)]; ok {
				if len(rep) > room {
					return dst, refOver
				}
				return append(dst, rep...), refDone
			}
			malformed = !isName(ref)
		}
	}
	if malformed && t.flags.Strict {
		shown := "&" + string(ref)
		if terminated {
			shown += ";"
		}
		t.deferError(CodeMalformedEntity, at, fmt.Sprintf("malformed reference %q", shown))
	}
	n := 1 + len(ref)
	if terminated {
		n++
	}
	if n > room {
		return dst, refOver
	}
	dst = append(dst, '&')
	dst = append(dst, ref...)
	if terminated {
		dst = append(dst, ';')
	}
	return dst, refDone
}

// parseCharRef parses the digits of a character reference, without the
// leading '#'. Values above the Unicode range are returned as is so the
// encoder rejects them. ok is false for bad digits and non-XML characters.
func parseCharRef(digits []byte) (rune, bool) {
	base := rune(10)
	if len(digits) > 0 && digits[0] == 'x' {
		base = 16
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return 0, false
	}
	var value rune
	for _, b := range digits {
		var d rune
		switch {
		case b >= '0' && b <= '9':
			d = rune(b - '0')
		case base == 16 && b >= 'a' && b <= 'f':
			d = rune(b-'a') + 10
		case base == 16 && b >= 'A' && b <= 'F':
			d = rune(b-'A') + 10
		default:
			return 0, false
		}
		if value <= utf8codec.MaxRune {
			value = value*base + d
		}
	}
	if value > utf8codec.MaxRune || (value >= 0xD800 && value <= 0xDFFF) {
		return value, true
	}
	return value, isXMLChar(value)
}
