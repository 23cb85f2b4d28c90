package xmltoken

// Limits are the soft resource ceilings of a Tokenizer.
// Byte limits count UTF-8 bytes after entity expansion.
type Limits struct {
	MaxNameBytes       int
	MaxAttrValueBytes  int
	MaxTextRunBytes    int
	MaxCommentBytes    int
	MaxCDATABytes      int
	MaxDoctypeBytes    int
	MaxAttrsPerElement int
	MaxPerTagBytes     int
	MaxDepth           int
}

// DefaultLimits returns the limits used when no option overrides them.
func DefaultLimits() Limits {
	return Limits{
		MaxNameBytes:       4 << 10,
		MaxAttrValueBytes:  1 << 20,
		MaxTextRunBytes:    8 << 20,
		MaxCommentBytes:    1 << 20,
		MaxCDATABytes:      8 << 20,
		MaxDoctypeBytes:    128 << 10,
		MaxAttrsPerElement: 1024,
		MaxPerTagBytes:     8 << 20,
		MaxDepth:           1024,
	}
}

// AbsoluteLimits returns the caps no configuration can exceed.
func AbsoluteLimits() Limits {
	return Limits{
		MaxNameBytes:       64 << 10,
		MaxAttrValueBytes:  64 << 20,
		MaxTextRunBytes:    64 << 20,
		MaxCommentBytes:    16 << 20,
		MaxCDATABytes:      64 << 20,
		MaxDoctypeBytes:    8 << 20,
		MaxAttrsPerElement: 65536,
		MaxPerTagBytes:     16 << 20,
		MaxDepth:           65536,
	}
}

// Clamp replaces non-positive fields with defaults and caps every field.
func (l Limits) Clamp() Limits {
	def := DefaultLimits()
	limit := AbsoluteLimits()
	return Limits{
		MaxNameBytes:       clampLimit(l.MaxNameBytes, def.MaxNameBytes, limit.MaxNameBytes),
		MaxAttrValueBytes:  clampLimit(l.MaxAttrValueBytes, def.MaxAttrValueBytes, limit.MaxAttrValueBytes),
		MaxTextRunBytes:    clampLimit(l.MaxTextRunBytes, def.MaxTextRunBytes, limit.MaxTextRunBytes),
		MaxCommentBytes:    clampLimit(l.MaxCommentBytes, def.MaxCommentBytes, limit.MaxCommentBytes),
		MaxCDATABytes:      clampLimit(l.MaxCDATABytes, def.MaxCDATABytes, limit.MaxCDATABytes),
		MaxDoctypeBytes:    clampLimit(l.MaxDoctypeBytes, def.MaxDoctypeBytes, limit.MaxDoctypeBytes),
		MaxAttrsPerElement: clampLimit(l.MaxAttrsPerElement, def.MaxAttrsPerElement, limit.MaxAttrsPerElement),
		MaxPerTagBytes:     clampLimit(l.MaxPerTagBytes, def.MaxPerTagBytes, limit.MaxPerTagBytes),
		MaxDepth:           clampLimit(l.MaxDepth, def.MaxDepth, limit.MaxDepth),
	}
}

func clampLimit(value, def, limit int) int {
	if value <= 0 {
		value = def
	}
	return min(value, limit)
}

// overlay copies the fields selected by mask from l onto base.
func (l Limits) overlay(base Limits, mask limitMask) Limits {
	if mask&setMaxNameBytes != 0 {
		base.MaxNameBytes = l.MaxNameBytes
	}
	if mask&setMaxAttrValueBytes != 0 {
		base.MaxAttrValueBytes = l.MaxAttrValueBytes
	}
	if mask&setMaxTextRunBytes != 0 {
		base.MaxTextRunBytes = l.MaxTextRunBytes
	}
	if mask&setMaxCommentBytes != 0 {
		base.MaxCommentBytes = l.MaxCommentBytes
	}
	if mask&setMaxCDATABytes != 0 {
		base.MaxCDATABytes = l.MaxCDATABytes
	}
	if mask&setMaxDoctypeBytes != 0 {
		base.MaxDoctypeBytes = l.MaxDoctypeBytes
	}
	if mask&setMaxAttrsPerElement != 0 {
		base.MaxAttrsPerElement = l.MaxAttrsPerElement
	}
	if mask&setMaxPerTagBytes != 0 {
		base.MaxPerTagBytes = l.MaxPerTagBytes
	}
	if mask&setMaxDepth != 0 {
		base.MaxDepth = l.MaxDepth
	}
	return base
}
