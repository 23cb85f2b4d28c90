package xmltoken

import (
	"unicode"
	"unicode/utf8"
)

var nameStartASCII = [utf8.RuneSelf]bool{
	':': true, '_': true,
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true,
	'H': true, 'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true,
	'O': true, 'P': true, 'Q': true, 'R': true, 'S': true, 'T': true, 'U': true,
	'V': true, 'W': true, 'X': true, 'Y': true, 'Z': true,
	'a': true, 'b': true, 'c': true, 'd': true, 'e': true, 'f': true, 'g': true,
	'h': true, 'i': true, 'j': true, 'k': true, 'l': true, 'm': true, 'n': true,
	'o': true, 'p': true, 'q': true, 'r': true, 's': true, 't': true, 'u': true,
	'v': true, 'w': true, 'x': true, 'y': true, 'z': true,
}

var nameASCII = func() (lut [utf8.RuneSelf]bool) {
	lut = nameStartASCII
	for _, b := range []byte("-.0123456789") {
		lut[b] = true
	}
	return lut
}()

// XML 1.0 fifth edition NameStartChar above ASCII.
var nameStartTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0xC0, Hi: 0xD6, Stride: 1},
		{Lo: 0xD8, Hi: 0xF6, Stride: 1},
		{Lo: 0xF8, Hi: 0x2FF, Stride: 1},
		{Lo: 0x370, Hi: 0x37D, Stride: 1},
		{Lo: 0x37F, Hi: 0x1FFF, Stride: 1},
		{Lo: 0x200C, Hi: 0x200D, Stride: 1},
		{Lo: 0x2070, Hi: 0x218F, Stride: 1},
		{Lo: 0x2C00, Hi: 0x2FEF, Stride: 1},
		{Lo: 0x3001, Hi: 0xD7FF, Stride: 1},
		{Lo: 0xF900, Hi: 0xFDCF, Stride: 1},
		{Lo: 0xFDF0, Hi: 0xFFFD, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x10000, Hi: 0xEFFFF, Stride: 1},
	},
	LatinOffset: 2,
}

// NameChar additions above ASCII.
var nameCharTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0xB7, Hi: 0xB7, Stride: 1},
		{Lo: 0x300, Hi: 0x36F, Stride: 1},
		{Lo: 0x203F, Hi: 0x2040, Stride: 1},
	},
	LatinOffset: 1,
}

func isNameStartChar(r rune) bool {
	if r < utf8.RuneSelf {
		return r >= 0 && nameStartASCII[r]
	}
	return unicode.Is(nameStartTable, r)
}

func isNameChar(r rune) bool {
	if r < utf8.RuneSelf {
		return r >= 0 && nameASCII[r]
	}
	return unicode.Is(nameStartTable, r) || unicode.Is(nameCharTable, r)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// isXMLChar reports whether r is a valid XML 1.0 character.
func isXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

// isPubidChar reports whether r may appear in a public identifier literal.
func isPubidChar(r rune) bool {
	switch {
	case r == ' ' || r == '\r' || r == '\n':
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case '-', '\'', '(', ')', '+', ',', '.', '/', ':', '=', '?', ';', '!', '*', '#', '@', '$', '_', '%':
		return true
	}
	return false
}

func isSpaceBytes(data []byte) bool {
	for _, b := range data {
		if !isSpace(rune(b)) {
			return false
		}
	}
	return true
}

func isName(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	for i, r := range string(data) {
		if i == 0 && !isNameStartChar(r) || !isNameChar(r) {
			return false
		}
	}
	return true
}
