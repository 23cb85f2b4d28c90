package xmllex

import (
	"cmp"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jacoelho/xmllex/pkg/xmlinput"
	"github.com/jacoelho/xmllex/pkg/xmltoken"
)

// NewLexOptions returns a default, valid options value.
func NewLexOptions() LexOptions {
	return LexOptions{}
}

// Validate validates option values.
func (o LexOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

// WithBufferSize sets the input buffer size in bytes (0 uses default).
func (o LexOptions) WithBufferSize(value int) LexOptions {
	o.bufferSize = intOption{value: value, set: true}
	return o
}

// WithLogger sets the logger that receives tokenizer diagnostics.
func (o LexOptions) WithLogger(logger zerolog.Logger) LexOptions {
	o.logger = &logger
	return o
}

// WithFreelistBudget bounds the bytes kept by recycled tag buffers.
func (o LexOptions) WithFreelistBudget(value int) LexOptions {
	o.freelistBudget = intOption{value: value, set: true}
	return o
}

// WithStrict controls whether structural errors stop tokenization.
func (o LexOptions) WithStrict(value bool) LexOptions {
	o.strict = boolOption{value: value, set: true}
	return o
}

// WithCoalesceText controls whether a text run is returned as one token.
func (o LexOptions) WithCoalesceText(value bool) LexOptions {
	o.coalesceText = boolOption{value: value, set: true}
	return o
}

// WithNormalizeLineEndings controls CRLF and CR folding.
func (o LexOptions) WithNormalizeLineEndings(value bool) LexOptions {
	o.normalizeLineEndings = boolOption{value: value, set: true}
	return o
}

// WithExpandInternalEntities controls predefined and character reference expansion.
func (o LexOptions) WithExpandInternalEntities(value bool) LexOptions {
	o.expandInternalEntities = boolOption{value: value, set: true}
	return o
}

// WithReportXMLDecl controls whether the XML declaration is returned as a PI token.
func (o LexOptions) WithReportXMLDecl(value bool) LexOptions {
	o.reportXMLDecl = boolOption{value: value, set: true}
	return o
}

// WithReportIntertagWhitespace controls whether whitespace-only text is returned.
func (o LexOptions) WithReportIntertagWhitespace(value bool) LexOptions {
	o.reportIntertagWhitespace = boolOption{value: value, set: true}
	return o
}

// WithLimits sets every limit at once (0 fields use defaults).
func (o LexOptions) WithLimits(value xmltoken.Limits) LexOptions {
	o.limits = lexLimitOptions{
		maxNameBytes:       intOption{value: value.MaxNameBytes, set: true},
		maxAttrValueBytes:  intOption{value: value.MaxAttrValueBytes, set: true},
		maxTextRunBytes:    intOption{value: value.MaxTextRunBytes, set: true},
		maxCommentBytes:    intOption{value: value.MaxCommentBytes, set: true},
		maxCDATABytes:      intOption{value: value.MaxCDATABytes, set: true},
		maxDoctypeBytes:    intOption{value: value.MaxDoctypeBytes, set: true},
		maxAttrsPerElement: intOption{value: value.MaxAttrsPerElement, set: true},
		maxPerTagBytes:     intOption{value: value.MaxPerTagBytes, set: true},
		maxDepth:           intOption{value: value.MaxDepth, set: true},
	}
	return o
}

// WithMaxNameBytes sets the name length limit (0 uses default).
func (o LexOptions) WithMaxNameBytes(value int) LexOptions {
	o.limits.maxNameBytes = intOption{value: value, set: true}
	return o
}

// WithMaxAttrValueBytes sets the attribute value length limit (0 uses default).
func (o LexOptions) WithMaxAttrValueBytes(value int) LexOptions {
	o.limits.maxAttrValueBytes = intOption{value: value, set: true}
	return o
}

// WithMaxTextRunBytes sets the text run length limit (0 uses default).
func (o LexOptions) WithMaxTextRunBytes(value int) LexOptions {
	o.limits.maxTextRunBytes = intOption{value: value, set: true}
	return o
}

// WithMaxCommentBytes sets the comment length limit (0 uses default).
func (o LexOptions) WithMaxCommentBytes(value int) LexOptions {
	o.limits.maxCommentBytes = intOption{value: value, set: true}
	return o
}

// WithMaxCDATABytes sets the CDATA section length limit (0 uses default).
func (o LexOptions) WithMaxCDATABytes(value int) LexOptions {
	o.limits.maxCDATABytes = intOption{value: value, set: true}
	return o
}

// WithMaxDoctypeBytes sets the DOCTYPE body length limit (0 uses default).
func (o LexOptions) WithMaxDoctypeBytes(value int) LexOptions {
	o.limits.maxDoctypeBytes = intOption{value: value, set: true}
	return o
}

// WithMaxAttrsPerElement sets the attribute count limit (0 uses default).
func (o LexOptions) WithMaxAttrsPerElement(value int) LexOptions {
	o.limits.maxAttrsPerElement = intOption{value: value, set: true}
	return o
}

// WithMaxPerTagBytes sets the per-tag buffer size (0 uses default).
func (o LexOptions) WithMaxPerTagBytes(value int) LexOptions {
	o.limits.maxPerTagBytes = intOption{value: value, set: true}
	return o
}

// WithMaxDepth sets the element nesting limit (0 uses default).
func (o LexOptions) WithMaxDepth(value int) LexOptions {
	o.limits.maxDepth = intOption{value: value, set: true}
	return o
}

func (o LexOptions) withDefaults() (resolvedLexOptions, error) {
	bufferSize := o.bufferSize.resolved()
	if bufferSize < 0 {
		return resolvedLexOptions{}, fmt.Errorf("buffer size must be >= 0")
	}
	bufferSize = cmp.Or(bufferSize, xmlinput.DefaultBufferSize)
	if bufferSize < xmlinput.MinBufferSize || bufferSize > xmlinput.MaxBufferSize {
		return resolvedLexOptions{}, fmt.Errorf("buffer size %d out of range [%d, %d]",
			bufferSize, xmlinput.MinBufferSize, xmlinput.MaxBufferSize)
	}
	if o.freelistBudget.resolved() < 0 {
		return resolvedLexOptions{}, fmt.Errorf("freelist budget must be >= 0")
	}
	limits, err := o.limits.resolve()
	if err != nil {
		return resolvedLexOptions{}, fmt.Errorf("xml limits: %w", err)
	}

	opts := []xmltoken.Options{
		xmltoken.WithLimits(limits),
		o.coalesceText.apply(xmltoken.CoalesceText),
		o.strict.apply(xmltoken.Strict),
		o.normalizeLineEndings.apply(xmltoken.NormalizeLineEndings),
		o.expandInternalEntities.apply(xmltoken.ExpandInternalEntities),
		o.reportXMLDecl.apply(xmltoken.ReportXMLDecl),
		o.reportIntertagWhitespace.apply(xmltoken.ReportIntertagWhitespace),
	}
	if o.logger != nil {
		opts = append(opts, xmltoken.WithLogger(*o.logger))
	}
	if o.freelistBudget.set {
		opts = append(opts, xmltoken.FreelistBudget(o.freelistBudget.value))
	}
	return resolvedLexOptions{
		tokenizer:  xmltoken.JoinOptions(opts...),
		limits:     limits,
		bufferSize: bufferSize,
	}, nil
}
