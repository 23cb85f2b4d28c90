package xmltoken

const errorChunkSize = 4 << 10

// errorArena stores diagnostic messages in fixed chunks.
// A chunk is never reallocated, so interned messages stay valid.
type errorArena struct {
	chunks [][]byte
	size   int
}

func (a *errorArena) intern(msg string) []byte {
	n := len(a.chunks)
	if n == 0 || cap(a.chunks[n-1])-len(a.chunks[n-1]) < len(msg) {
		a.chunks = append(a.chunks, make([]byte, 0, max(errorChunkSize, len(msg))))
		n++
	}
	chunk := a.chunks[n-1]
	start := len(chunk)
	chunk = append(chunk, msg...)
	a.chunks[n-1] = chunk
	a.size += len(msg)
	return chunk[start:len(chunk):len(chunk)]
}

// reset forgets every chunk. Messages handed out earlier keep their memory.
func (a *errorArena) reset() {
	clear(a.chunks)
	a.chunks = a.chunks[:0]
	a.size = 0
}

// freelist pools tag buffers of a single capacity under a byte budget.
type freelist struct {
	bufs     [][]byte
	capacity int
	bytes    int
	budget   int
}

// resize changes the pooled capacity. Buffers of the old size are dropped.
func (f *freelist) resize(capacity int) {
	if capacity == f.capacity {
		return
	}
	f.purge()
	f.capacity = capacity
}

func (f *freelist) get() ([]byte, bool) {
	n := len(f.bufs)
	if n == 0 {
		return nil, false
	}
	buf := f.bufs[n-1]
	f.bufs[n-1] = nil
	f.bufs = f.bufs[:n-1]
	f.bytes -= cap(buf)
	return buf[:0], true
}

func (f *freelist) put(buf []byte) bool {
	if buf == nil || cap(buf) != f.capacity || f.bytes+cap(buf) > f.budget {
		return false
	}
	f.bufs = append(f.bufs, buf[:0])
	f.bytes += cap(buf)
	return true
}

func (f *freelist) purge() {
	clear(f.bufs)
	f.bufs = f.bufs[:0]
	f.bytes = 0
}

// tokenQueue holds tokens produced ahead of the caller.
type tokenQueue struct {
	items []Token
	head  int
}

func (q *tokenQueue) push(tok Token) {
	q.items = append(q.items, tok)
}

func (q *tokenQueue) pop(tok *Token) bool {
	if q.head >= len(q.items) {
		return false
	}
	*tok = q.items[q.head]
	q.items[q.head] = Token{}
	q.head++
	if q.head == len(q.items) {
		q.reset()
	}
	return true
}

func (q *tokenQueue) empty() bool {
	return q.head >= len(q.items)
}

func (q *tokenQueue) reset() {
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
}
