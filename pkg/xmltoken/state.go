package xmltoken

// State is the lexical state of the tokenizer DFA.
// Element nesting is tracked separately by the frame stack.
type State uint8

const (
	StateContent State = iota
	StateTagOpen
	StateStartTagName
	StateEndTagName
	StateInTag
	StateAttrName
	StateAfterAttrName
	StateBeforeAttrValue
	StateAttrValueQuoted
	StateAfterBang
	StateCommentStart1
	StateCommentStart2
	StateInComment
	StateCommentEnd1
	StateCommentEnd2
	StateCDataStart
	StateInCData
	StateCDataEnd1
	StateCDataEnd2
	StatePITarget
	StatePIContent
	StateDoctypeBody
	StateResyncing
)

var stateNames = [...]string{
	StateContent:         "Content",
	StateTagOpen:         "TagOpen",
	StateStartTagName:    "StartTagName",
	StateEndTagName:      "EndTagName",
	StateInTag:           "InTag",
	StateAttrName:        "AttrName",
	StateAfterAttrName:   "AfterAttrName",
	StateBeforeAttrValue: "BeforeAttrValue",
	StateAttrValueQuoted: "AttrValueQuoted",
	StateAfterBang:       "AfterBang",
	StateCommentStart1:   "CommentStart1",
	StateCommentStart2:   "CommentStart2",
	StateInComment:       "InComment",
	StateCommentEnd1:     "CommentEnd1",
	StateCommentEnd2:     "CommentEnd2",
	StateCDataStart:      "CDataStart",
	StateInCData:         "InCData",
	StateCDataEnd1:       "CDataEnd1",
	StateCDataEnd2:       "CDataEnd2",
	StatePITarget:        "PITarget",
	StatePIContent:       "PIContent",
	StateDoctypeBody:     "DoctypeBody",
	StateResyncing:       "Resyncing",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}
