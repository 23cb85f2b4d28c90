package xmltoken

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/xmllex/pkg/xmlinput"
)

func TestHelloWorld(t *testing.T) {
	got := tokenize(t, "hello world")
	requireTokens(t, []tk{start(), text("hello world"), end()}, got)
}

func TestEmptyInput(t *testing.T) {
	requireTokens(t, []tk{start(), end()}, tokenize(t, ""))
	requireTokens(t, []tk{start(), end()}, drain(t, New(nil)))
}

func TestTextRunLimit(t *testing.T) {
	tz := newTokenizer(t, strings.Repeat("x", 100000), MaxTextRunBytes(1000))
	got := drain(t, tz)
	requireTokens(t, []tk{start(), errTok(CodeLimitExceeded)}, got)

	err := tz.Err()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrLimitExceeded)
	require.Len(t, tz.Errors(), 1)
	require.Equal(t, SeverityFatal, tz.Errors()[0].Severity)
	require.Contains(t, string(tz.Errors()[0].Message), "MaxTextRunBytes")
}

func TestTextRunExactlyAtLimit(t *testing.T) {
	input := strings.Repeat("x", 1000)
	got := tokenize(t, input, MaxTextRunBytes(1000))
	requireTokens(t, []tk{start(), text(input), end()}, got)

	got = tokenize(t, input+"y", MaxTextRunBytes(1000))
	requireTokens(t, []tk{start(), errTok(CodeLimitExceeded)}, got)
}

func TestNormalizeLineEndings(t *testing.T) {
	input := "line1\r\nline2\rline3\nline4"
	got := tokenize(t, input)
	requireTokens(t, []tk{start(), text("line1\nline2\nline3\nline4"), end()}, got)

	got = tokenize(t, input, NormalizeLineEndings(false))
	requireTokens(t, []tk{start(), text(input), end()}, got)
}

func TestNormalizeAttributeValue(t *testing.T) {
	got := tokenize(t, "<a v=\"1\r\n2\r3\"/>")
	requireTokens(t, []tk{start(), emptyTag("a"), attrName("v"), attrValue("1\n2\n3"), end()}, got)
}

func TestElements(t *testing.T) {
	got := tokenize(t, `<root a="1" b='two'><child/>text</root>`)
	requireTokens(t, []tk{
		start(),
		startTag("root"), attrName("a"), attrValue("1"), attrName("b"), attrValue("two"),
		emptyTag("child"),
		text("text"),
		endTag("root"),
		end(),
	}, got)
}

func TestAttributeWhitespaceAroundEquals(t *testing.T) {
	got := tokenize(t, "<a  x = \"1\"\n\ty\t=\t'2' ></a >")
	requireTokens(t, []tk{
		start(), startTag("a"), attrName("x"), attrValue("1"), attrName("y"), attrValue("2"), endTag("a"), end(),
	}, got)
}

func TestMultibyteNames(t *testing.T) {
	got := tokenize(t, `<café naïve="ü">€</café>`)
	requireTokens(t, []tk{
		start(), startTag("café"), attrName("naïve"), attrValue("ü"), text("€"), endTag("café"), end(),
	}, got)
}

func TestEntityExpansion(t *testing.T) {
	got := tokenize(t, "a &lt; b &amp; &#65;&#x42; &unknown;")
	requireTokens(t, []tk{start(), text("a < b & AB &unknown;"), end()}, got)

	got = tokenize(t, `<e v="&quot;x&quot; &#x20AC;&apos;&gt;"/>`)
	requireTokens(t, []tk{start(), emptyTag("e"), attrName("v"), attrValue(`"x" €'>`), end()}, got)
}

func TestEntityExpansionDisabled(t *testing.T) {
	input := "a &lt; b & c"
	got := tokenize(t, input, ExpandInternalEntities(false))
	requireTokens(t, []tk{start(), text(input), end()}, got)

	got = tokenize(t, `<e v="&amp;"/>`, ExpandInternalEntities(false))
	requireTokens(t, []tk{start(), emptyTag("e"), attrName("v"), attrValue("&amp;"), end()}, got)
}

func TestCoalesceTextDisabled(t *testing.T) {
	got := tokenize(t, "a&lt;b&amp;c", CoalesceText(false))
	requireTokens(t, []tk{start(), text("a"), text("<"), text("b"), text("&"), text("c"), end()}, got)

	got = tokenize(t, "a&lt;b&amp;c")
	requireTokens(t, []tk{start(), text("a<b&c"), end()}, got)
}

func TestMalformedEntity(t *testing.T) {
	got := tokenize(t, "a & b")
	requireTokens(t, []tk{start(), text("a & b"), errTok(CodeMalformedEntity), end()}, got)

	got = tokenize(t, "a & b", Strict(false))
	requireTokens(t, []tk{start(), text("a & b"), end()}, got)

	got = tokenize(t, "&#1;&#xZZ;")
	requireTokens(t, []tk{
		start(), text("&#1;&#xZZ;"), errTok(CodeMalformedEntity), errTok(CodeMalformedEntity), end(),
	}, got)

	tz := newTokenizer(t, "&#0; & b")
	drain(t, tz)
	require.Len(t, tz.Errors(), 2)
	require.Equal(t, `malformed reference "&#0;"`, string(tz.Errors()[0].Message))
	require.Equal(t, `malformed reference "&"`, string(tz.Errors()[1].Message))
}

func TestCharacterReferenceOutsideUnicode(t *testing.T) {
	for _, input := range []string{"x&#xD800;y", "x&#x110000;y", "x&#99999999999;y"} {
		t.Run(input, func(t *testing.T) {
			tz := newTokenizer(t, input, Strict(false))
			requireTokens(t, []tk{start(), errTok(CodeInvalidUTF8)}, drain(t, tz))
			require.ErrorIs(t, tz.Err(), ErrInvalidUTF8)
		})
	}
}

func TestMarkup(t *testing.T) {
	input := `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0//EN" "x.dtd" [<!ENTITY a "b>">]>` +
		`<?pi data?><!-- c --><r><![CDATA[<x>]]]]></r>`
	got := tokenize(t, input)
	requireTokens(t, []tk{
		start(),
		{Kind: KindDoctype, Data: `html PUBLIC "-//W3C//DTD XHTML 1.0//EN" "x.dtd" [<!ENTITY a "b>">]`},
		{Kind: KindPI, Data: "pi data"},
		{Kind: KindComment, Data: " c "},
		startTag("r"),
		{Kind: KindCDATA, Data: "<x>]]"},
		endTag("r"),
		end(),
	}, got)

	subsets := []struct {
		input string
		body  string
	}{
		{input: "<!DOCTYPE r [<!-- it's -->]><r/>", body: "r [<!-- it's -->]"},
		{input: "<!DOCTYPE r [<!-- ] -->]><r/>", body: "r [<!-- ] -->]"},
		{input: `<!DOCTYPE r [<!-- " > -->]><r/>`, body: `r [<!-- " > -->]`},
		{input: "<!DOCTYPE r [<?pi ']' ?>]><r/>", body: "r [<?pi ']' ?>]"},
	}
	for _, tt := range subsets {
		got := tokenize(t, tt.input)
		requireTokens(t, []tk{start(), {Kind: KindDoctype, Data: tt.body}, emptyTag("r"), end()}, got)
	}
}

func TestEmptyMarkupBodies(t *testing.T) {
	got := tokenize(t, "<!----><![CDATA[]]><?t?>")
	requireTokens(t, []tk{
		start(),
		{Kind: KindComment},
		{Kind: KindCDATA},
		{Kind: KindPI, Data: "t"},
		end(),
	}, got)
}

func TestPublicIdentifierCharacters(t *testing.T) {
	got := tokenize(t, `<!DOCTYPE a PUBLIC "bad{id" "x.dtd">`)
	requireTokens(t, []tk{
		start(), {Kind: KindDoctype, Data: `a PUBLIC "bad{id" "x.dtd"`}, errTok(CodeInvalidCharInName), end(),
	}, got)

	got = tokenize(t, `<!DOCTYPE a PUBLIC "bad{id" "x.dtd">`, Strict(false))
	requireTokens(t, []tk{start(), {Kind: KindDoctype, Data: `a PUBLIC "bad{id" "x.dtd"`}, end()}, got)
}

func TestCommentDoubleDash(t *testing.T) {
	got := tokenize(t, "<!-- a -- b -->")
	requireTokens(t, []tk{start(), {Kind: KindComment, Data: " a -- b "}, errTok(CodeBadCommentDoubleDash), end()}, got)

	got = tokenize(t, "<!-- a -- b -->", Strict(false))
	requireTokens(t, []tk{start(), {Kind: KindComment, Data: " a -- b "}, end()}, got)

	got = tokenize(t, "<!-- a --->", Strict(false))
	requireTokens(t, []tk{start(), {Kind: KindComment, Data: " a -"}, end()}, got)
}

func TestXMLDeclaration(t *testing.T) {
	decl := `<?xml version="1.0"?>`
	got := tokenize(t, decl+"<r/>")
	requireTokens(t, []tk{start(), {Kind: KindPI, Data: `xml version="1.0"`}, emptyTag("r"), end()}, got)

	got = tokenize(t, decl+"<r/>", ReportXMLDecl(false))
	requireTokens(t, []tk{start(), emptyTag("r"), end()}, got)

	got = tokenize(t, " "+decl)
	requireTokens(t, []tk{start(), text(" "), {Kind: KindPI, Data: `xml version="1.0"`}, errTok(CodeMisplacedXMLDecl), end()}, got)

	got = tokenize(t, " "+decl, Strict(false))
	requireTokens(t, []tk{start(), text(" "), {Kind: KindPI, Data: `xml version="1.0"`}, end()}, got)

	got = tokenize(t, "\xEF\xBB\xBF"+decl)
	requireTokens(t, []tk{start(), {Kind: KindPI, Data: `xml version="1.0"`}, end()}, got)
}

func TestIntertagWhitespace(t *testing.T) {
	input := "<a>\n  <b/>\n</a>"
	got := tokenize(t, input, ReportIntertagWhitespace(false))
	requireTokens(t, []tk{start(), startTag("a"), emptyTag("b"), endTag("a"), end()}, got)

	got = tokenize(t, input)
	requireTokens(t, []tk{start(), startTag("a"), text("\n  "), emptyTag("b"), text("\n"), endTag("a"), end()}, got)
}

func TestEndTagErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		strict bool
		want   []tk
	}{
		{
			name:   "mismatch strict",
			input:  "<a><b></a>",
			strict: true,
			want:   []tk{start(), startTag("a"), startTag("b"), errTok(CodeMismatchedEndTag)},
		},
		{
			name:  "mismatch closes up to the matching element",
			input: "<a><b><c></a>x",
			want: []tk{
				start(), startTag("a"), startTag("b"), startTag("c"), errTok(CodeMismatchedEndTag), endTag("a"),
				text("x"), end(),
			},
		},
		{
			name:  "mismatch without an open match closes innermost",
			input: "<a><b></c></a>",
			want: []tk{
				start(), startTag("a"), startTag("b"), errTok(CodeMismatchedEndTag), endTag("c"),
				endTag("a"), end(),
			},
		},
		{
			name:   "stray end tag strict",
			input:  "</a>",
			strict: true,
			want:   []tk{start(), errTok(CodeUnexpectedEndTag)},
		},
		{
			name:  "stray end tag recovers",
			input: "</a>x",
			want:  []tk{start(), errTok(CodeUnexpectedEndTag), text("x"), end()},
		},
		{
			name:   "unclosed strict",
			input:  "<a>",
			strict: true,
			want:   []tk{start(), startTag("a"), errTok(CodeUnexpectedEOF)},
		},
		{
			name:  "unclosed recovers",
			input: "<a>",
			want:  []tk{start(), startTag("a"), errTok(CodeUnexpectedEOF), end()},
		},
		{
			name:   "zero length end tag closes innermost",
			input:  "<a></>",
			strict: true,
			want:   []tk{start(), startTag("a"), endTag(""), end()},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireTokens(t, tt.want, tokenize(t, tt.input, Strict(tt.strict)))
		})
	}
}

func TestSyntaxErrorsRecover(t *testing.T) {
	tz := newTokenizer(t, "<a =x><b/></a>", Strict(false))
	var tok Token
	require.True(t, tz.NextToken(&tok))
	require.True(t, tz.NextToken(&tok))
	require.Equal(t, KindError, tok.Kind())
	require.Equal(t, CodeInvalidCharInName, tok.Code())
	require.Equal(t, SeverityRecoverable, tok.Severity())
	require.Equal(t, StateResyncing, tz.State())

	requireTokens(t, []tk{emptyTag("b"), errTok(CodeUnexpectedEndTag), end()}, drain(t, tz))
	require.NoError(t, tz.Err())
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		input string
		code  ErrorCode
	}{
		{input: "<>", code: CodeInvalidCharAfterLT},
		{input: "< a>", code: CodeInvalidCharAfterLT},
		{input: "<!x>", code: CodeInvalidCharAfterLT},
		{input: "<!-x>", code: CodeInvalidCharAfterLT},
		{input: "<![CDAT[x]]>", code: CodeInvalidCharAfterLT},
		{input: "<a b>", code: CodeExpectedEqualsAfterAttrName},
		{input: "<a b=c>", code: CodeExpectedQuoteForAttrValue},
		{input: `<a b="<">`, code: CodeUnterminatedTag},
		{input: `<a b="1"c="2">`, code: CodeInvalidCharInName},
		{input: "<a/ >", code: CodeUnterminatedTag},
		{input: "<a !>", code: CodeInvalidCharInName},
		{input: "<a></a b>", code: CodeInvalidCharInName},
		{input: "<?1?>", code: CodeInvalidCharInName},
		{input: "<?a!?>", code: CodeInvalidCharInName},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tz := newTokenizer(t, tt.input)
			got := drain(t, tz)
			require.Equal(t, errTok(tt.code), got[len(got)-1])
			require.Equal(t, SeverityFatal, tz.Errors()[0].Severity)
			require.Equal(t, uint32(1), tz.Errors()[0].Pos.Line)
		})
	}
}

func TestUnterminatedConstructs(t *testing.T) {
	tests := []struct {
		input string
		code  ErrorCode
	}{
		{input: "<", code: CodeUnterminatedTag},
		{input: "<!", code: CodeUnterminatedTag},
		{input: "<a", code: CodeUnterminatedTag},
		{input: `<a b="x`, code: CodeUnterminatedTag},
		{input: "<a b", code: CodeUnterminatedTag},
		{input: "</a", code: CodeUnterminatedTag},
		{input: "<!-- x", code: CodeUnterminatedComment},
		{input: "<!-- x -", code: CodeUnterminatedComment},
		{input: "<!-- x --", code: CodeUnterminatedComment},
		{input: "<!-", code: CodeUnterminatedComment},
		{input: "<![CDATA[x", code: CodeUnterminatedCDATA},
		{input: "<![CDATA[x]]", code: CodeUnterminatedCDATA},
		{input: "<![CDA", code: CodeUnterminatedCDATA},
		{input: "<?pi x", code: CodeUnterminatedPI},
		{input: "<?pi x?", code: CodeUnterminatedPI},
		{input: "<?", code: CodeUnterminatedPI},
		{input: "<!DOCTYPE x [", code: CodeUnterminatedDoctype},
		{input: "<!DOCTYPE x \"a>", code: CodeUnterminatedDoctype},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			requireTokens(t, []tk{start(), errTok(tt.code)}, tokenize(t, tt.input))

			tz := newTokenizer(t, tt.input, Strict(false))
			requireTokens(t, []tk{start(), errTok(tt.code), end()}, drain(t, tz))
			diag := tz.Errors()[0]
			require.Equal(t, SeverityRecoverable, diag.Severity)
			require.Equal(t, Position{Offset: 0, Line: 1, Column: 1}, diag.Pos)
		})
	}
}

func TestLimits(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    []Options
		message string
	}{
		{name: "depth", input: "<a><b><c>", opts: []Options{MaxDepth(2)}, message: "MaxDepth"},
		{name: "attrs", input: `<a x="1" y="2" z="3"/>`, opts: []Options{MaxAttrsPerElement(2)}, message: "MaxAttrsPerElement"},
		{name: "element name", input: "<abcde/>", opts: []Options{MaxNameBytes(4)}, message: "MaxNameBytes"},
		{name: "attribute name", input: `<a bcdef="1"/>`, opts: []Options{MaxNameBytes(4)}, message: "MaxNameBytes"},
		{name: "end tag name", input: "<a></abcde>", opts: []Options{MaxNameBytes(4)}, message: "MaxNameBytes"},
		{name: "attribute value", input: `<a k="1234"/>`, opts: []Options{MaxAttrValueBytes(3)}, message: "MaxAttrValueBytes"},
		{name: "attribute value entity", input: `<a k="12&amp;"/>`, opts: []Options{MaxAttrValueBytes(2)}, message: "MaxAttrValueBytes"},
		{name: "per tag", input: `<a k="0123456789abcdef"/>`, opts: []Options{MaxPerTagBytes(16)}, message: "MaxPerTagBytes (16 B)"},
		{name: "comment", input: "<!--12345-->", opts: []Options{MaxCommentBytes(4)}, message: "MaxCommentBytes"},
		{name: "comment dashes", input: "<!--123-4-->", opts: []Options{MaxCommentBytes(4)}, message: "MaxCommentBytes"},
		{name: "cdata", input: "<![CDATA[12345]]>", opts: []Options{MaxCDATABytes(4)}, message: "MaxCDATABytes"},
		{name: "doctype", input: "<!DOCTYPE abcde>", opts: []Options{MaxDoctypeBytes(4)}, message: "MaxDoctypeBytes"},
		{name: "pi", input: "<?a 12345?>", opts: []Options{MaxTextRunBytes(4)}, message: "MaxTextRunBytes"},
		{name: "text entity", input: "abc&amp;", opts: []Options{MaxTextRunBytes(3)}, message: "MaxTextRunBytes"},
		{name: "text cr", input: "abc\r", opts: []Options{MaxTextRunBytes(3)}, message: "MaxTextRunBytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tz := newTokenizer(t, tt.input, tt.opts...)
			got := drain(t, tz)
			require.Equal(t, errTok(CodeLimitExceeded), got[len(got)-1])
			require.ErrorIs(t, tz.Err(), ErrLimitExceeded)
			require.Contains(t, string(tz.Errors()[0].Message), tt.message)
		})
	}
}

func TestLimitsAtBoundary(t *testing.T) {
	got := tokenize(t, `<abcd k="123"/><!--1234--><![CDATA[1234]]>`,
		MaxNameBytes(4), MaxAttrValueBytes(3), MaxCommentBytes(4), MaxCDATABytes(4))
	requireTokens(t, []tk{
		start(), emptyTag("abcd"), attrName("k"), attrValue("123"),
		{Kind: KindComment, Data: "1234"}, {Kind: KindCDATA, Data: "1234"}, end(),
	}, got)
}

func TestTokenPositions(t *testing.T) {
	tz := newTokenizer(t, "<a>\n  <b x=\"1\"/>\n</a>")
	type at struct {
		kind   Kind
		line   uint32
		column uint32
	}
	want := []at{
		{KindDocumentStart, 1, 1},
		{KindStartTag, 1, 1},
		{KindText, 1, 4},
		{KindEmptyTag, 2, 3},
		{KindAttributeName, 2, 6},
		{KindAttributeValue, 2, 9},
		{KindText, 2, 13},
		{KindEndTag, 3, 1},
		{KindDocumentEnd, 3, 5},
	}
	var got []at
	var tok Token
	for tz.NextToken(&tok) {
		got = append(got, at{tok.Kind(), tok.Line(), tok.Column()})
	}
	require.Equal(t, want, got)
}

func TestFrameLifetime(t *testing.T) {
	tz := newTokenizer(t, `<a x="1">hello<!--c-->world</a><b/>`, MaxPerTagBytes(256))
	var tok Token
	next := func(kind Kind) []byte {
		t.Helper()
		require.True(t, tz.NextToken(&tok))
		require.Equal(t, kind, tok.Kind())
		return tok.Bytes()
	}
	next(KindDocumentStart)
	name := next(KindStartTag)
	attr := next(KindAttributeName)
	value := next(KindAttributeValue)
	next(KindText)
	next(KindComment)
	next(KindText)
	require.Equal(t, "a", string(name))
	require.Equal(t, "x", string(attr))
	require.Equal(t, "1", string(value))
	require.Equal(t, 1, tz.Depth())

	require.Equal(t, "a", string(next(KindEndTag)))
	require.Equal(t, 0, tz.Depth())
	require.Equal(t, "b", string(next(KindEmptyTag)))
	require.Equal(t, uint64(1), tz.Stats().BuffersAllocated)
	require.Equal(t, uint64(1), tz.Stats().BuffersReused)
}

func TestEmptyTagFramePoppedAfterAttributes(t *testing.T) {
	tz := newTokenizer(t, `<a><b k="v" l="w"/></a>`, MaxPerTagBytes(64))
	var tok Token
	depths := map[Kind][]int{}
	for tz.NextToken(&tok) {
		depths[tok.Kind()] = append(depths[tok.Kind()], tz.Depth())
	}
	require.Equal(t, []int{2}, depths[KindEmptyTag])
	require.Equal(t, []int{2, 2}, depths[KindAttributeName])
	require.Equal(t, []int{2, 2}, depths[KindAttributeValue])
	require.Equal(t, []int{0}, depths[KindEndTag])
}

func TestFreelistBudget(t *testing.T) {
	tz := newTokenizer(t, "<a><b></b></a>", MaxPerTagBytes(64), FreelistBudget(64))
	drain(t, tz)
	require.Equal(t, 64, tz.free.bytes)
	require.Len(t, tz.free.bufs, 1)

	tz = newTokenizer(t, "<a/>", MaxPerTagBytes(64), FreelistBudget(0))
	drain(t, tz)
	require.Zero(t, tz.free.bytes)
}

func TestReset(t *testing.T) {
	tz := newTokenizer(t, "<a><b>", MaxPerTagBytes(64))
	var tok Token
	for tok.Kind() != KindStartTag || string(tok.Bytes()) != "b" {
		require.True(t, tz.NextToken(&tok))
	}
	require.Equal(t, 2, tz.Depth())

	in, err := xmlinput.New(strings.NewReader("<c/>"), 16)
	require.NoError(t, err)
	tz.Reset(in)
	require.Equal(t, 0, tz.Depth())
	require.Equal(t, 128, tz.free.bytes)
	requireTokens(t, []tk{start(), emptyTag("c"), end()}, drain(t, tz))
	require.Equal(t, uint64(1), tz.Stats().BuffersReused)

	in, err = xmlinput.New(strings.NewReader("x"), 16)
	require.NoError(t, err)
	tz.Reset(in)
	require.Equal(t, 128, tz.free.bytes)

	tz.Reset(in, MaxPerTagBytes(128))
	require.Zero(t, tz.free.bytes)
	require.Equal(t, 128, tz.Limits().MaxPerTagBytes)
	requireTokens(t, []tk{start(), text("x"), end()}, drain(t, tz))
}

func TestResetClearsTerminalState(t *testing.T) {
	tz := newTokenizer(t, "</a>")
	drain(t, tz)
	require.Error(t, tz.Err())

	in, err := xmlinput.New(strings.NewReader("ok"), 16)
	require.NoError(t, err)
	tz.Reset(in)
	require.NoError(t, tz.Err())
	require.Empty(t, tz.Errors())
	requireTokens(t, []tk{start(), text("ok"), end()}, drain(t, tz))
}

func TestEmitError(t *testing.T) {
	tz := newTokenizer(t, "abc")
	var tok Token

	require.True(t, tz.EmitError(&tok, CodeIOError, SeverityWarning, ""))
	require.Equal(t, "tokenizer error", string(tok.Bytes()))
	require.Equal(t, Position{Line: 1, Column: 1}, tok.Pos())

	tz.in.GetChar()
	tz.markStart()
	tz.in.GetChar()
	tz.EmitError(&tok, CodeMalformedEntity, SeverityRecoverable, "marked")
	require.Equal(t, uint32(2), tok.Column())

	require.True(t, tz.NextToken(&tok))
	require.Equal(t, KindDocumentStart, tok.Kind())
	tz.EmitError(&tok, CodeMalformedEntity, SeverityRecoverable, "unmarked")
	require.Equal(t, uint32(3), tok.Column())

	require.Len(t, tz.Errors(), 3)
	require.NoError(t, tz.Err())
}

func TestEmitErrorMessagesStayValid(t *testing.T) {
	tz := newTokenizer(t, "")
	var tok Token
	tz.EmitError(&tok, CodeIOError, SeverityWarning, "first message")
	first := tok.Bytes()
	for i := range 5000 {
		tz.EmitError(&tok, CodeIOError, SeverityWarning, strings.Repeat("m", i%100))
	}
	require.Equal(t, "first message", string(first))
	require.Equal(t, "first message", string(tz.Errors()[0].Message))
	require.Greater(t, len(tz.errs.chunks), 1)

	tz.ClearErrors()
	require.Empty(t, tz.Errors())
	require.Equal(t, "first message", string(first))
}

func TestEmitFatalErrorEndsStream(t *testing.T) {
	tz := newTokenizer(t, "<a/>")
	var tok Token
	require.True(t, tz.NextToken(&tok))
	require.True(t, tz.EmitError(&tok, CodeIOError, SeverityFatal, "stop"))
	require.False(t, tz.NextToken(&tok))
	require.ErrorIs(t, tz.Err(), ErrIO)
	require.EqualError(t, tz.Err(), "xml lexical error at line 1, column 1: stop")
}

func TestSourceFailure(t *testing.T) {
	boom := errors.New("boom")
	in, err := xmlinput.New(io.MultiReader(strings.NewReader("<a>text"), iotest.ErrReader(boom)), 64)
	require.NoError(t, err)
	tz := New(in)
	requireTokens(t, []tk{start(), startTag("a"), text("text"), errTok(CodeIOError)}, drain(t, tz))
	require.ErrorIs(t, tz.Err(), ErrIO)
	require.ErrorIs(t, tz.Err(), boom)
}

func TestMalformedUTF8EndsInput(t *testing.T) {
	tz := newTokenizer(t, "ab\xffcd")
	requireTokens(t, []tk{start(), text("ab"), errTok(CodeInvalidUTF8), end()}, drain(t, tz))
	require.Equal(t, SeverityWarning, tz.Errors()[0].Severity)
	require.NoError(t, tz.Err())
}

func TestLoggerReceivesDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	drain(t, newTokenizer(t, "hello", MaxTextRunBytes(4), WithLogger(logger)))
	out := buf.String()
	require.Contains(t, out, `"code":"LimitExceeded"`)
	require.Contains(t, out, `"severity":"fatal"`)
	require.Contains(t, out, `"level":"warn"`)
}

func TestStats(t *testing.T) {
	tz := newTokenizer(t, "hello world")
	drain(t, tz)
	stats := tz.Stats()
	require.Equal(t, int64(11), stats.BytesConsumed)
	require.Equal(t, uint64(3), stats.TokensEmitted)
	require.Zero(t, stats.ErrorsEmitted)
	require.Equal(t, 11, stats.MaxTextArena)
}

func TestTokenClone(t *testing.T) {
	tz := newTokenizer(t, "one<a/>two")
	var tok Token
	require.True(t, tz.NextToken(&tok))
	require.True(t, tz.NextToken(&tok))
	kept := tok.Clone()
	for tz.NextToken(&tok) {
	}
	require.Equal(t, "one", string(kept.Bytes()))
	require.Equal(t, KindText, kept.Kind())
}

func BenchmarkTokenizeDocument(b *testing.B) {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0"?><catalog>`)
	for i := range 2000 {
		sb.WriteString(`<item id="`)
		sb.WriteString(strings.Repeat("7", i%5+1))
		sb.WriteString(`" kind="book">Title &amp; more<!-- note --></item>`)
	}
	sb.WriteString(`</catalog>`)
	doc := sb.String()
	b.SetBytes(int64(len(doc)))
	var tok Token
	for b.Loop() {
		in, err := xmlinput.New(strings.NewReader(doc), xmlinput.DefaultBufferSize)
		if err != nil {
			b.Fatal(err)
		}
		tz := New(in, MaxPerTagBytes(4096))
		for tz.NextToken(&tok) {
		}
	}
}

func TestLineEndingsAcrossRefill(t *testing.T) {
	tests := []struct {
		input string
		want  []tk
	}{
		{input: "a\r\nb", want: []tk{start(), text("a\nb"), end()}},
		{input: "a\rb\r", want: []tk{start(), text("a\nb\n"), end()}},
		{input: "<a v=\"1\r\n2\"/>", want: []tk{start(), emptyTag("a"), attrName("v"), attrValue("1\n2"), end()}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			in, err := xmlinput.New(iotest.OneByteReader(strings.NewReader(tt.input)), xmlinput.MinBufferSize)
			require.NoError(t, err)
			requireTokens(t, tt.want, drain(t, New(in)))
		})
	}
}
