package xmltoken

import (
	"strings"
	"testing"
)

func TestErrorArenaNeverRelocates(t *testing.T) {
	var a errorArena
	first := a.intern("first")
	firstPtr := &first[0]
	big := a.intern(strings.Repeat("b", errorChunkSize*2))
	for range 1000 {
		a.intern("filler message")
	}
	if string(first) != "first" || &first[0] != firstPtr {
		t.Fatalf("first message moved or changed: %q", first)
	}
	if len(big) != errorChunkSize*2 {
		t.Fatalf("oversized message length = %d", len(big))
	}
	if cap(first) != len(first) {
		t.Fatalf("interned message cap = %d, want clipped to %d", cap(first), len(first))
	}
	a.reset()
	if string(first) != "first" {
		t.Fatalf("message changed after reset: %q", first)
	}
	if a.size != 0 || len(a.chunks) != 0 {
		t.Fatalf("reset left size %d chunks %d", a.size, len(a.chunks))
	}
}

func TestFreelist(t *testing.T) {
	f := freelist{budget: 100}
	f.resize(40)
	if _, ok := f.get(); ok {
		t.Fatalf("get on empty freelist succeeded")
	}
	if !f.put(make([]byte, 3, 40)) || !f.put(make([]byte, 0, 40)) {
		t.Fatalf("put within budget rejected")
	}
	if f.put(make([]byte, 0, 40)) {
		t.Fatalf("put over budget accepted")
	}
	if f.put(make([]byte, 0, 20)) {
		t.Fatalf("put of foreign capacity accepted")
	}
	buf, ok := f.get()
	if !ok || len(buf) != 0 || cap(buf) != 40 {
		t.Fatalf("get = len %d cap %d ok %v, want empty 40-byte buffer", len(buf), cap(buf), ok)
	}
	if f.bytes != 40 {
		t.Fatalf("bytes = %d, want 40", f.bytes)
	}
	f.resize(40)
	if f.bytes != 40 {
		t.Fatalf("resize to same capacity purged the pool")
	}
	f.resize(80)
	if f.bytes != 0 || len(f.bufs) != 0 {
		t.Fatalf("resize kept %d bytes", f.bytes)
	}
}

func TestTokenQueue(t *testing.T) {
	var q tokenQueue
	if !q.empty() {
		t.Fatalf("new queue not empty")
	}
	q.push(Token{kind: KindStartTag})
	q.push(Token{kind: KindAttributeName})
	var tok Token
	for _, want := range []Kind{KindStartTag, KindAttributeName} {
		if !q.pop(&tok) || tok.Kind() != want {
			t.Fatalf("pop = %v, want %v", tok.Kind(), want)
		}
	}
	if q.pop(&tok) || !q.empty() || len(q.items) != 0 {
		t.Fatalf("queue not drained")
	}
}
