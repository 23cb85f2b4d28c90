package xmltoken

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jacoelho/xmllex/pkg/xmlinput"
)

// ErrorCode classifies a diagnostic. Codes are grouped by the high nibble.
type ErrorCode uint16

const CodeNone ErrorCode = 0

const (
	CodeUnexpectedEOF ErrorCode = 0x10 + iota
	CodeIOError
)

const (
	CodeInvalidCharAfterLT ErrorCode = 0x20 + iota
	CodeInvalidCharInName
	CodeUnterminatedTag
	CodeExpectedEqualsAfterAttrName
	CodeExpectedQuoteForAttrValue
	CodeMismatchedEndTag
	CodeUnexpectedEndTag
	CodeMisplacedXMLDecl
)

const (
	CodeInvalidUTF8 ErrorCode = 0x40 + iota
	CodeMalformedEntity
)

const (
	CodeUnterminatedComment ErrorCode = 0x50 + iota
	CodeBadCommentDoubleDash
	CodeUnterminatedCDATA
	CodeUnterminatedPI
	CodeUnterminatedDoctype
)

const CodeLimitExceeded ErrorCode = 0x60

var (
	ErrUnexpectedEOF        = errors.New("unexpected end of input")
	ErrIO                   = errors.New("input read failed")
	ErrSyntax               = errors.New("xml syntax error")
	ErrMismatchedEndTag     = errors.New("mismatched end tag")
	ErrUnexpectedEndTag     = errors.New("end tag without open element")
	ErrMisplacedXMLDecl     = errors.New("XML declaration not at start")
	ErrInvalidUTF8          = errors.New("invalid UTF-8")
	ErrMalformedEntity      = errors.New("malformed entity reference")
	ErrUnterminatedMarkup   = errors.New("unterminated markup")
	ErrBadCommentDoubleDash = errors.New("'--' inside comment")
	ErrLimitExceeded        = errors.New("limit exceeded")
)

// String returns a stable name for the code.
func (c ErrorCode) String() string {
	switch c {
	case CodeNone:
		return "None"
	case CodeUnexpectedEOF:
		return "UnexpectedEOF"
	case CodeIOError:
		return "IOError"
	case CodeInvalidCharAfterLT:
		return "InvalidCharAfterLT"
	case CodeInvalidCharInName:
		return "InvalidCharInName"
	case CodeUnterminatedTag:
		return "UnterminatedTag"
	case CodeExpectedEqualsAfterAttrName:
		return "ExpectedEqualsAfterAttrName"
	case CodeExpectedQuoteForAttrValue:
		return "ExpectedQuoteForAttrValue"
	case CodeMismatchedEndTag:
		return "MismatchedEndTag"
	case CodeUnexpectedEndTag:
		return "UnexpectedEndTag"
	case CodeMisplacedXMLDecl:
		return "MisplacedXMLDecl"
	case CodeInvalidUTF8:
		return "InvalidUTF8"
	case CodeMalformedEntity:
		return "MalformedEntity"
	case CodeUnterminatedComment:
		return "UnterminatedComment"
	case CodeBadCommentDoubleDash:
		return "BadCommentDoubleDash"
	case CodeUnterminatedCDATA:
		return "UnterminatedCDATA"
	case CodeUnterminatedPI:
		return "UnterminatedPI"
	case CodeUnterminatedDoctype:
		return "UnterminatedDoctype"
	case CodeLimitExceeded:
		return "LimitExceeded"
	default:
		return fmt.Sprintf("ErrorCode(%#x)", uint16(c))
	}
}

// Err returns the sentinel error matching the code's category.
func (c ErrorCode) Err() error {
	switch c {
	case CodeUnexpectedEOF:
		return ErrUnexpectedEOF
	case CodeIOError:
		return ErrIO
	case CodeMismatchedEndTag:
		return ErrMismatchedEndTag
	case CodeUnexpectedEndTag:
		return ErrUnexpectedEndTag
	case CodeMisplacedXMLDecl:
		return ErrMisplacedXMLDecl
	case CodeInvalidUTF8:
		return ErrInvalidUTF8
	case CodeMalformedEntity:
		return ErrMalformedEntity
	case CodeUnterminatedComment, CodeUnterminatedCDATA, CodeUnterminatedPI, CodeUnterminatedDoctype:
		return ErrUnterminatedMarkup
	case CodeBadCommentDoubleDash:
		return ErrBadCommentDoubleDash
	case CodeLimitExceeded:
		return ErrLimitExceeded
	case CodeNone:
		return nil
	default:
		return ErrSyntax
	}
}

// Severity ranks a diagnostic. Only Fatal ends the token stream.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityRecoverable
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityRecoverable:
		return "recoverable"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Diagnostic is one recorded tokenizer error.
// Message aliases the tokenizer error arena and never changes.
type Diagnostic struct {
	Code     ErrorCode
	Severity Severity
	Pos      xmlinput.Position
	Message  []byte

	cause error
}

// Error formats the diagnostic with its location.
func (d Diagnostic) Error() string {
	if d.Pos.Line > 0 && d.Pos.Column > 0 {
		return fmt.Sprintf("xml lexical error at line %d, column %d: %s", d.Pos.Line, d.Pos.Column, d.Message)
	}
	return fmt.Sprintf("xml lexical error at offset %d: %s", d.Pos.Offset, d.Message)
}

// Unwrap exposes the code sentinel and, for I/O failures, the source error.
func (d Diagnostic) Unwrap() []error {
	errs := make([]error, 0, 2)
	if err := d.Code.Err(); err != nil {
		errs = append(errs, err)
	}
	if d.cause != nil {
		errs = append(errs, d.cause)
	}
	return errs
}

// MarshalZerologObject writes the diagnostic fields to a log event.
func (d Diagnostic) MarshalZerologObject(e *zerolog.Event) {
	e.Stringer("code", d.Code).
		Stringer("severity", d.Severity).
		Uint32("line", d.Pos.Line).
		Uint32("column", d.Pos.Column).
		Int64("offset", d.Pos.Offset).
		Bytes("message", d.Message)
}
