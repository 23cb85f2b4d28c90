package utf8codec

// seqInfo describes the sequence introduced by a leading byte.
// length 0 marks a byte that can never start a sequence.
type seqInfo struct {
	length  uint8
	mask    uint8
	shift   uint8
	minRune rune
}

var leadTable = func() [256]seqInfo {
	var lut [256]seqInfo
	for i := 0; i < len(lut); i++ {
		b := byte(i)
		switch {
		case b <= 0x7F:
			lut[i] = seqInfo{length: 1, mask: 0x7F}
		case b <= 0xC1:
			// continuation bytes and the overlong 2-byte leaders C0/C1
		case b <= 0xDF:
			lut[i] = seqInfo{length: 2, mask: 0x1F, shift: 6, minRune: 0x80}
		case b <= 0xEF:
			lut[i] = seqInfo{length: 3, mask: 0x0F, shift: 12, minRune: 0x800}
		case b <= 0xF4:
			lut[i] = seqInfo{length: 4, mask: 0x07, shift: 18, minRune: 0x10000}
		}
	}
	return lut
}()

// SequenceLength reports how many bytes the sequence starting with b occupies.
// It returns 0 when b cannot start a sequence.
func SequenceLength(b byte) int {
	return int(leadTable[b].length)
}
