package xmltoken

import "bytes"

type attrSpan struct {
	nameOff  int
	nameLen  int
	valueOff int
	valueLen int
	namePos  Position
	valuePos Position
}

// frame is the record of one open element. buf is allocated at full
// capacity and never grown, so tokens slicing it stay valid until the frame
// is popped.
type frame struct {
	buf     []byte
	nameOff int
	nameLen int
	attrs   []attrSpan
	start   Position
	empty   bool
}

func (f *frame) name() []byte {
	return f.buf[f.nameOff : f.nameOff+f.nameLen : f.nameOff+f.nameLen]
}

func (f *frame) room() int {
	return cap(f.buf) - len(f.buf)
}

func (f *frame) attrName(i int) []byte {
	a := f.attrs[i]
	return f.buf[a.nameOff : a.nameOff+a.nameLen : a.nameOff+a.nameLen]
}

func (f *frame) attrValue(i int) []byte {
	a := f.attrs[i]
	return f.buf[a.valueOff : a.valueOff+a.valueLen : a.valueOff+a.valueLen]
}

// pushFrame opens a frame with a recycled or freshly allocated tag buffer.
func (t *Tokenizer) pushFrame(start Position) *frame {
	if t.depth == len(t.frames) {
		t.frames = append(t.frames, frame{})
	}
	f := &t.frames[t.depth]
	t.depth++
	buf, ok := t.free.get()
	if ok {
		t.stats.count(&t.stats.BuffersReused)
	} else {
		buf = make([]byte, 0, t.limits.MaxPerTagBytes)
		t.stats.count(&t.stats.BuffersAllocated)
	}
	*f = frame{buf: buf, attrs: f.attrs[:0], start: start}
	return f
}

// popFrame closes the innermost frame and recycles its buffer.
func (t *Tokenizer) popFrame() {
	if t.depth == 0 {
		return
	}
	t.depth--
	f := &t.frames[t.depth]
	t.free.put(f.buf)
	f.buf = nil
	clear(f.attrs)
	f.attrs = f.attrs[:0]
}

// openFrame returns the index of the innermost open frame named name, or -1.
func (t *Tokenizer) openFrame(name []byte) int {
	for i := t.depth - 1; i >= 0; i-- {
		if bytes.Equal(t.frames[i].name(), name) {
			return i
		}
	}
	return -1
}

func (t *Tokenizer) top() *frame {
	if t.depth == 0 {
		return nil
	}
	return &t.frames[t.depth-1]
}
