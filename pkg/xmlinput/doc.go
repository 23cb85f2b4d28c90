// Package xmlinput provides a fixed-capacity buffered reader that decodes a
// byte source into Unicode scalar values while tracking byte offset, line and
// column.
//
// Malformed UTF-8 is treated as end of input: GetChar and PeekChar report EOF
// and Err reports ErrInvalidUTF8. Callers that need to distinguish a clean end
// from a truncated one must check Err.
package xmlinput
