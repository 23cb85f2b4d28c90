package xmltoken

import "github.com/rs/zerolog"

// Flags are the resolved behavior switches of a Tokenizer.
type Flags struct {
	// CoalesceText emits one Text token per run between markup.
	// When false, runs are split at entity references.
	CoalesceText bool
	// Strict makes structural errors fatal and enables entity and comment checks.
	Strict bool
	// NormalizeLineEndings rewrites CR and CRLF to LF in text and attribute values.
	NormalizeLineEndings bool
	// ExpandInternalEntities expands the predefined entities and character references.
	ExpandInternalEntities bool
	// ReportXMLDecl emits the XML declaration as a PI token.
	ReportXMLDecl bool
	// ReportIntertagWhitespace emits whitespace-only text runs.
	ReportIntertagWhitespace bool
}

// DefaultFlags returns the flags used when no option overrides them.
func DefaultFlags() Flags {
	return Flags{
		CoalesceText:             true,
		Strict:                   true,
		NormalizeLineEndings:     true,
		ExpandInternalEntities:   true,
		ReportXMLDecl:            true,
		ReportIntertagWhitespace: true,
	}
}

// DefaultFreelistBudget bounds the bytes held by recycled tag buffers.
const DefaultFreelistBudget = 64 << 20

// Options holds tokenizer configuration values.
// The zero value means no overrides.
type Options struct {
	logger                   zerolog.Logger
	coalesceText             bool
	strict                   bool
	normalizeLineEndings     bool
	expandInternalEntities   bool
	reportXMLDecl            bool
	reportIntertagWhitespace bool
	limits                   Limits
	freelistBudget           int

	loggerSet                   bool
	coalesceTextSet             bool
	strictSet                   bool
	normalizeLineEndingsSet     bool
	expandInternalEntitiesSet   bool
	reportXMLDeclSet            bool
	reportIntertagWhitespaceSet bool
	limitsSet                   limitMask
	freelistBudgetSet           bool
}

type limitMask uint16

const (
	setMaxNameBytes limitMask = 1 << iota
	setMaxAttrValueBytes
	setMaxTextRunBytes
	setMaxCommentBytes
	setMaxCDATABytes
	setMaxDoctypeBytes
	setMaxAttrsPerElement
	setMaxPerTagBytes
	setMaxDepth
)

// JoinOptions combines multiple option sets into one in declaration order.
// Later options override earlier ones when set.
func JoinOptions(srcs ...Options) Options {
	var merged Options
	for _, src := range srcs {
		merged.merge(src)
	}
	return merged
}

func (opts *Options) merge(src Options) {
	if src.loggerSet {
		opts.logger = src.logger
		opts.loggerSet = true
	}
	if src.coalesceTextSet {
		opts.coalesceText = src.coalesceText
		opts.coalesceTextSet = true
	}
	if src.strictSet {
		opts.strict = src.strict
		opts.strictSet = true
	}
	if src.normalizeLineEndingsSet {
		opts.normalizeLineEndings = src.normalizeLineEndings
		opts.normalizeLineEndingsSet = true
	}
	if src.expandInternalEntitiesSet {
		opts.expandInternalEntities = src.expandInternalEntities
		opts.expandInternalEntitiesSet = true
	}
	if src.reportXMLDeclSet {
		opts.reportXMLDecl = src.reportXMLDecl
		opts.reportXMLDeclSet = true
	}
	if src.reportIntertagWhitespaceSet {
		opts.reportIntertagWhitespace = src.reportIntertagWhitespace
		opts.reportIntertagWhitespaceSet = true
	}
	if src.freelistBudgetSet {
		opts.freelistBudget = src.freelistBudget
		opts.freelistBudgetSet = true
	}
	if src.limitsSet != 0 {
		opts.limits = src.limits.overlay(opts.limits, src.limitsSet)
		opts.limitsSet |= src.limitsSet
	}
}

// WithLogger sets the logger that receives recorded diagnostics.
func WithLogger(logger zerolog.Logger) Options {
	return Options{logger: logger, loggerSet: true}
}

// CoalesceText controls whether a text run is reported as a single token.
func CoalesceText(value bool) Options {
	return Options{coalesceText: value, coalesceTextSet: true}
}

// Strict controls whether structural errors end the token stream.
func Strict(value bool) Options {
	return Options{strict: value, strictSet: true}
}

// NormalizeLineEndings controls CR and CRLF folding in content.
func NormalizeLineEndings(value bool) Options {
	return Options{normalizeLineEndings: value, normalizeLineEndingsSet: true}
}

// ExpandInternalEntities controls expansion of predefined entities and
// character references.
func ExpandInternalEntities(value bool) Options {
	return Options{expandInternalEntities: value, expandInternalEntitiesSet: true}
}

// ReportXMLDecl controls whether the XML declaration is emitted as a PI token.
func ReportXMLDecl(value bool) Options {
	return Options{reportXMLDecl: value, reportXMLDeclSet: true}
}

// ReportIntertagWhitespace controls whether whitespace-only text is emitted.
func ReportIntertagWhitespace(value bool) Options {
	return Options{reportIntertagWhitespace: value, reportIntertagWhitespaceSet: true}
}

// WithFlags sets every behavior switch at once.
func WithFlags(flags Flags) Options {
	return JoinOptions(
		CoalesceText(flags.CoalesceText),
		Strict(flags.Strict),
		NormalizeLineEndings(flags.NormalizeLineEndings),
		ExpandInternalEntities(flags.ExpandInternalEntities),
		ReportXMLDecl(flags.ReportXMLDecl),
		ReportIntertagWhitespace(flags.ReportIntertagWhitespace),
	)
}

// WithLimits sets every limit at once. Zero fields select the default.
func WithLimits(limits Limits) Options {
	return Options{limits: limits, limitsSet: setMaxNameBytes | setMaxAttrValueBytes |
		setMaxTextRunBytes | setMaxCommentBytes | setMaxCDATABytes | setMaxDoctypeBytes |
		setMaxAttrsPerElement | setMaxPerTagBytes | setMaxDepth}
}

// MaxNameBytes limits element, attribute and PI target names.
func MaxNameBytes(value int) Options {
	return Options{limits: Limits{MaxNameBytes: value}, limitsSet: setMaxNameBytes}
}

// MaxAttrValueBytes limits a single attribute value after expansion.
func MaxAttrValueBytes(value int) Options {
	return Options{limits: Limits{MaxAttrValueBytes: value}, limitsSet: setMaxAttrValueBytes}
}

// MaxTextRunBytes limits a text run and a processing instruction.
// Runs exactly MaxTextRunBytes long are allowed.
func MaxTextRunBytes(value int) Options {
	return Options{limits: Limits{MaxTextRunBytes: value}, limitsSet: setMaxTextRunBytes}
}

// MaxCommentBytes limits comment bodies.
func MaxCommentBytes(value int) Options {
	return Options{limits: Limits{MaxCommentBytes: value}, limitsSet: setMaxCommentBytes}
}

// MaxCDATABytes limits CDATA section bodies.
func MaxCDATABytes(value int) Options {
	return Options{limits: Limits{MaxCDATABytes: value}, limitsSet: setMaxCDATABytes}
}

// MaxDoctypeBytes limits the document type declaration body.
func MaxDoctypeBytes(value int) Options {
	return Options{limits: Limits{MaxDoctypeBytes: value}, limitsSet: setMaxDoctypeBytes}
}

// MaxAttrsPerElement limits the number of attributes on one tag.
func MaxAttrsPerElement(value int) Options {
	return Options{limits: Limits{MaxAttrsPerElement: value}, limitsSet: setMaxAttrsPerElement}
}

// MaxPerTagBytes sets the tag buffer capacity, which bounds a tag's name and
// attributes together.
func MaxPerTagBytes(value int) Options {
	return Options{limits: Limits{MaxPerTagBytes: value}, limitsSet: setMaxPerTagBytes}
}

// MaxDepth limits element nesting depth.
func MaxDepth(value int) Options {
	return Options{limits: Limits{MaxDepth: value}, limitsSet: setMaxDepth}
}

// FreelistBudget bounds the bytes kept by recycled tag buffers.
// Zero disables recycling.
func FreelistBudget(value int) Options {
	return Options{freelistBudget: value, freelistBudgetSet: true}
}

type config struct {
	logger         zerolog.Logger
	flags          Flags
	limits         Limits
	freelistBudget int
}

func (opts Options) resolve() config {
	cfg := config{
		logger:         zerolog.Nop(),
		flags:          DefaultFlags(),
		limits:         DefaultLimits(),
		freelistBudget: DefaultFreelistBudget,
	}
	if opts.loggerSet {
		cfg.logger = opts.logger
	}
	if opts.coalesceTextSet {
		cfg.flags.CoalesceText = opts.coalesceText
	}
	if opts.strictSet {
		cfg.flags.Strict = opts.strict
	}
	if opts.normalizeLineEndingsSet {
		cfg.flags.NormalizeLineEndings = opts.normalizeLineEndings
	}
	if opts.expandInternalEntitiesSet {
		cfg.flags.ExpandInternalEntities = opts.expandInternalEntities
	}
	if opts.reportXMLDeclSet {
		cfg.flags.ReportXMLDecl = opts.reportXMLDecl
	}
	if opts.reportIntertagWhitespaceSet {
		cfg.flags.ReportIntertagWhitespace = opts.reportIntertagWhitespace
	}
	if opts.freelistBudgetSet {
		cfg.freelistBudget = max(opts.freelistBudget, 0)
	}
	cfg.limits = opts.limits.overlay(cfg.limits, opts.limitsSet).Clamp()
	return cfg
}
