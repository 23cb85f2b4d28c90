// Package utf8codec implements a strict, table-driven UTF-8 decoder and encoder.
// Invalid input always reports a width of one byte so callers can resync by
// skipping a single byte and retrying.
package utf8codec
