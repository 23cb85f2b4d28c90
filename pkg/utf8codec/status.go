package utf8codec

// Status classifies the outcome of a decode or encode call.
type Status uint8

const (
	OK Status = iota
	NeedMore
	Invalid
)

// String returns a stable name for the status, suitable for debugging.
func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case NeedMore:
		return "NeedMore"
	case Invalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// DecodeResult reports one decoded scalar value.
// On NeedMore, Width is the total sequence length demanded by the leading byte.
// On Invalid, Width is always 1.
type DecodeResult struct {
	Rune   rune
	Width  int
	Status Status
}

// EncodeResult reports the bytes written by Encode.
// On NeedMore, Width is the number of bytes required.
type EncodeResult struct {
	Width  int
	Status Status
}
