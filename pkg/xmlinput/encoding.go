package xmlinput

import "bytes"

// Encoding identifies the byte order mark found at the start of the input.
// Only the UTF-8 variants are decoded.
type Encoding uint8

const (
	UTF8NoBOM Encoding = iota
	UTF8BOM
	UTF16LE
	UTF16BE
	UTF32LE
	UTF32BE
)

// String returns a stable name for the encoding, suitable for debugging.
func (e Encoding) String() string {
	switch e {
	case UTF8NoBOM:
		return "UTF-8"
	case UTF8BOM:
		return "UTF-8 (BOM)"
	case UTF16LE:
		return "UTF-16LE"
	case UTF16BE:
		return "UTF-16BE"
	case UTF32LE:
		return "UTF-32LE"
	case UTF32BE:
		return "UTF-32BE"
	default:
		return "Unknown"
	}
}

// Decodable reports whether the reader can decode text in this encoding.
func (e Encoding) Decodable() bool {
	return e == UTF8NoBOM || e == UTF8BOM
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// detectBOM returns the encoding signalled by the leading bytes of data and
// the number of bytes to skip. UTF-32 is checked first because its little
// endian mark starts with the UTF-16 one.
func detectBOM(data []byte) (Encoding, int) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return UTF8BOM, len(bomUTF8)
	case bytes.HasPrefix(data, bomUTF32LE):
		return UTF32LE, 0
	case bytes.HasPrefix(data, bomUTF32BE):
		return UTF32BE, 0
	case bytes.HasPrefix(data, bomUTF16LE):
		return UTF16LE, 0
	case bytes.HasPrefix(data, bomUTF16BE):
		return UTF16BE, 0
	default:
		return UTF8NoBOM, 0
	}
}
