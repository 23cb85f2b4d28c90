package utf8codec

const (
	// MaxRune is the largest Unicode scalar value.
	MaxRune = 0x10FFFF
	// UTFMax is the longest encoding of a scalar value.
	UTFMax = 4

	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

func isContinuation(b byte) bool {
	return b&0xC0 == 0x80
}

func isSurrogate(r rune) bool {
	return r >= surrogateMin && r <= surrogateMax
}

// Decode decodes the scalar value at the start of p.
func Decode(p []byte) DecodeResult {
	if len(p) == 0 {
		return DecodeResult{Width: 1, Status: NeedMore}
	}
	first := p[0]
	info := leadTable[first]
	if info.length == 1 {
		return DecodeResult{Rune: rune(first), Width: 1, Status: OK}
	}
	if info.length == 0 {
		return DecodeResult{Width: 1, Status: Invalid}
	}
	n := int(info.length)
	if len(p) < n {
		return DecodeResult{Width: n, Status: NeedMore}
	}

	r := rune(first&info.mask) << info.shift
	for i := 1; i < n; i++ {
		b := p[i]
		if !isContinuation(b) {
			return DecodeResult{Width: 1, Status: Invalid}
		}
		r |= rune(b&0x3F) << (6 * (n - 1 - i))
	}
	if r < info.minRune {
		return DecodeResult{Width: 1, Status: Invalid}
	}
	switch n {
	case 3:
		if isSurrogate(r) {
			return DecodeResult{Width: 1, Status: Invalid}
		}
	case 4:
		if r > MaxRune {
			return DecodeResult{Width: 1, Status: Invalid}
		}
	}
	return DecodeResult{Rune: r, Width: n, Status: OK}
}

// DecodeAt decodes the scalar value starting at buf[off].
// An offset at or past the end reports NeedMore with width 1.
func DecodeAt(buf []byte, off int) DecodeResult {
	if off < 0 || off >= len(buf) {
		return DecodeResult{Width: 1, Status: NeedMore}
	}
	return Decode(buf[off:])
}

// RuneLen reports the shortest encoding length of r, or -1 if r is not a scalar value.
func RuneLen(r rune) int {
	switch {
	case r < 0 || r > MaxRune || isSurrogate(r):
		return -1
	case r <= 0x7F:
		return 1
	case r <= 0x7FF:
		return 2
	case r <= 0xFFFF:
		return 3
	default:
		return 4
	}
}

// Encode writes the shortest UTF-8 form of r into p.
func Encode(p []byte, r rune) EncodeResult {
	need := RuneLen(r)
	if need < 0 {
		return EncodeResult{Width: 1, Status: Invalid}
	}
	if len(p) < need {
		return EncodeResult{Width: need, Status: NeedMore}
	}
	switch need {
	case 1:
		p[0] = byte(r)
	case 2:
		p[0] = 0xC0 | byte(r>>6)
		p[1] = 0x80 | byte(r)&0x3F
	case 3:
		p[0] = 0xE0 | byte(r>>12)
		p[1] = 0x80 | byte(r>>6)&0x3F
		p[2] = 0x80 | byte(r)&0x3F
	default:
		p[0] = 0xF0 | byte(r>>18)
		p[1] = 0x80 | byte(r>>12)&0x3F
		p[2] = 0x80 | byte(r>>6)&0x3F
		p[3] = 0x80 | byte(r)&0x3F
	}
	return EncodeResult{Width: need, Status: OK}
}

// AppendRune appends the encoding of r to dst.
// dst is returned unchanged when r is not a scalar value.
func AppendRune(dst []byte, r rune) ([]byte, EncodeResult) {
	if r >= 0 && r < 0x80 {
		return append(dst, byte(r)), EncodeResult{Width: 1, Status: OK}
	}
	var scratch [UTFMax]byte
	res := Encode(scratch[:], r)
	if res.Status != OK {
		return dst, res
	}
	return append(dst, scratch[:res.Width]...), res
}
