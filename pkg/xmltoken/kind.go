package xmltoken

// Kind identifies the lexical kind of a token.
type Kind byte

const (
	KindNone Kind = iota
	KindDocumentStart
	KindDocumentEnd
	KindText
	KindStartTag
	KindEndTag
	KindEmptyTag
	KindAttributeName
	KindAttributeValue
	KindComment
	KindPI
	KindCDATA
	KindDoctype
	KindError
)

// String returns a stable name for the kind, suitable for debugging.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindDocumentStart:
		return "DocumentStart"
	case KindDocumentEnd:
		return "DocumentEnd"
	case KindText:
		return "Text"
	case KindStartTag:
		return "StartTag"
	case KindEndTag:
		return "EndTag"
	case KindEmptyTag:
		return "EmptyTag"
	case KindAttributeName:
		return "AttributeName"
	case KindAttributeValue:
		return "AttributeValue"
	case KindComment:
		return "Comment"
	case KindPI:
		return "PI"
	case KindCDATA:
		return "CDATA"
	case KindDoctype:
		return "DOCTYPE"
	case KindError:
		return "Error"
	default:
		return "Unknown"
	}
}
