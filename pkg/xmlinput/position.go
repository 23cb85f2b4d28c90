package xmlinput

import "fmt"

// Position locates a point in the input.
// Line and Column are 1-based; Column counts decoded scalar values.
// Offset is the byte offset net of any UTF-8 byte order mark.
type Position struct {
	Offset int64
	Line   uint32
	Column uint32
}

// String formats the position as line:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
