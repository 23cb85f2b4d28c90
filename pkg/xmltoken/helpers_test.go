package xmltoken

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/xmllex/pkg/xmlinput"
)

type tk struct {
	Kind Kind
	Data string
	Code ErrorCode
}

func start() tk                { return tk{Kind: KindDocumentStart} }
func end() tk                  { return tk{Kind: KindDocumentEnd} }
func text(s string) tk         { return tk{Kind: KindText, Data: s} }
func startTag(s string) tk     { return tk{Kind: KindStartTag, Data: s} }
func emptyTag(s string) tk     { return tk{Kind: KindEmptyTag, Data: s} }
func endTag(s string) tk       { return tk{Kind: KindEndTag, Data: s} }
func attrName(s string) tk     { return tk{Kind: KindAttributeName, Data: s} }
func attrValue(s string) tk    { return tk{Kind: KindAttributeValue, Data: s} }
func errTok(code ErrorCode) tk { return tk{Kind: KindError, Code: code} }

func newTokenizer(t testing.TB, input string, opts ...Options) *Tokenizer {
	t.Helper()
	in, err := xmlinput.New(strings.NewReader(input), 64)
	require.NoError(t, err)
	return New(in, opts...)
}

// drain collects every token; error payloads are left out so expectations
// compare codes rather than message wording.
func drain(t testing.TB, tz *Tokenizer) []tk {
	t.Helper()
	var out []tk
	var tok Token
	for tz.NextToken(&tok) {
		item := tk{Kind: tok.Kind(), Data: string(tok.Bytes())}
		if tok.Kind() == KindError {
			item.Data = ""
			item.Code = tok.Code()
		}
		out = append(out, item)
		require.Less(t, len(out), 100000, "tokenizer did not terminate")
	}
	for range 3 {
		require.False(t, tz.NextToken(&tok), "NextToken after the end must keep reporting false")
	}
	return out
}

func tokenize(t testing.TB, input string, opts ...Options) []tk {
	t.Helper()
	return drain(t, newTokenizer(t, input, opts...))
}

func requireTokens(t testing.TB, want, got []tk) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}
