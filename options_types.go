package xmllex

import (
	"github.com/rs/zerolog"

	"github.com/jacoelho/xmllex/pkg/xmltoken"
)

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved() int {
	if !o.set {
		return 0
	}
	return o.value
}

type boolOption struct {
	value bool
	set   bool
}

func (o boolOption) apply(opt func(bool) xmltoken.Options) xmltoken.Options {
	if !o.set {
		return xmltoken.Options{}
	}
	return opt(o.value)
}

// LexOptions configures a Lexer. The zero value is valid and selects the
// defaults of every layer.
type LexOptions struct {
	logger                   *zerolog.Logger
	bufferSize               intOption
	freelistBudget           intOption
	coalesceText             boolOption
	strict                   boolOption
	normalizeLineEndings     boolOption
	expandInternalEntities   boolOption
	reportXMLDecl            boolOption
	reportIntertagWhitespace boolOption
	limits                   lexLimitOptions
}

type lexLimitOptions struct {
	maxNameBytes       intOption
	maxAttrValueBytes  intOption
	maxTextRunBytes    intOption
	maxCommentBytes    intOption
	maxCDATABytes      intOption
	maxDoctypeBytes    intOption
	maxAttrsPerElement intOption
	maxPerTagBytes     intOption
	maxDepth           intOption
}

type resolvedLexOptions struct {
	tokenizer  xmltoken.Options
	limits     xmltoken.Limits
	bufferSize int
}
