package xmltoken

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/jacoelho/xmllex/pkg/xmlinput"
)

const defaultErrorMessage = "tokenizer error"

// Tokenizer produces XML lexical tokens from an xmlinput.Reader.
// A Tokenizer is not safe for concurrent use.
type Tokenizer struct {
	in     *xmlinput.Reader
	opts   Options
	log    zerolog.Logger
	flags  Flags
	limits Limits

	state  State
	frames []frame
	depth  int

	text     []byte
	ref      []byte
	queue    tokenQueue
	deferred []Token
	errs     errorArena
	diags    []Diagnostic
	fatal    *Diagnostic
	free     freelist
	stats    Stats

	pendingStart      Position
	pendingStartValid bool

	started  bool
	halted   bool
	done     bool
	inputErr bool
}

// New returns a Tokenizer reading from in.
// A nil or moved-from reader behaves as empty input.
func New(in *xmlinput.Reader, opts ...Options) *Tokenizer {
	t := &Tokenizer{}
	t.configure(in, JoinOptions(opts...))
	return t
}

func (t *Tokenizer) configure(in *xmlinput.Reader, opts Options) {
	cfg := opts.resolve()
	t.in = in
	t.opts = opts
	t.log = cfg.logger
	t.flags = cfg.flags
	t.limits = cfg.limits
	t.free.budget = cfg.freelistBudget
	t.free.resize(cfg.limits.MaxPerTagBytes)
	for t.free.bytes > t.free.budget {
		t.free.get()
	}
}

// Reset prepares the Tokenizer for a new document read from in.
// Options given here are applied on top of the ones already in effect.
// Tag buffers are recycled unless the per-tag capacity changed.
func (t *Tokenizer) Reset(in *xmlinput.Reader, opts ...Options) {
	for t.depth > 0 {
		t.popFrame()
	}
	t.configure(in, JoinOptions(append([]Options{t.opts}, opts...)...))

	t.state = StateContent
	t.text = t.text[:0]
	t.ref = t.ref[:0]
	t.queue.reset()
	clear(t.deferred)
	t.deferred = t.deferred[:0]
	t.errs.reset()
	t.diags = nil
	t.fatal = nil
	t.stats = Stats{}
	t.pendingStartValid = false
	t.started = false
	t.halted = false
	t.done = false
	t.inputErr = false
}

// NextToken fills tok with the next token and reports whether one was
// produced. After DocumentEnd or a fatal error it reports false forever.
func (t *Tokenizer) NextToken(tok *Token) bool {
	if tok == nil {
		tok = new(Token)
	}
	if t.done {
		return false
	}
	t.pendingStartValid = false
	if f := t.top(); f != nil && f.empty && t.queue.empty() {
		t.popFrame()
	}
	for t.queue.empty() {
		if t.halted {
			t.done = true
			return false
		}
		t.step()
	}
	t.queue.pop(tok)
	t.stats.count(&t.stats.TokensEmitted)
	if tok.kind == KindError {
		t.stats.count(&t.stats.ErrorsEmitted)
	}
	return true
}

// step advances the DFA until it queues at least one token or halts.
func (t *Tokenizer) step() {
	if !t.started {
		t.started = true
		t.queue.push(Token{kind: KindDocumentStart, pos: t.in.Position()})
		return
	}
	switch t.state {
	case StateResyncing:
		t.resync()
		return
	case StateContent:
	default:
		t.state = StateContent
	}
	switch t.in.PeekChar() {
	case xmlinput.EOF:
		t.finish()
	case '<':
		t.scanMarkup()
	default:
		t.scanText()
	}
}

// finish handles end of input in content.
func (t *Tokenizer) finish() {
	if t.checkInput() {
		return
	}
	if f := t.top(); f != nil {
		msg := fmt.Sprintf("unexpected end of input: element <%s> is not closed", f.name())
		t.push(t.record(CodeUnexpectedEOF, t.structural(), t.in.Position(), msg, nil))
		if t.halted {
			return
		}
	}
	t.queue.push(Token{kind: KindDocumentEnd, pos: t.in.Position()})
	t.halted = true
}

// checkInput reports a reader failure once. It returns true when the failure
// was fatal.
func (t *Tokenizer) checkInput() bool {
	err := t.in.Err()
	if err == nil || t.inputErr {
		return t.halted
	}
	t.inputErr = true
	pos := t.in.Position()
	if errors.Is(err, xmlinput.ErrInvalidUTF8) || errors.Is(err, io.ErrUnexpectedEOF) {
		t.push(t.record(CodeInvalidUTF8, SeverityWarning, pos, "input truncated at malformed UTF-8", nil))
		return false
	}
	t.push(t.record(CodeIOError, SeverityFatal, pos, "read failed: "+err.Error(), err))
	return true
}

// unterminated reports input ending inside a construct started at the marked
// position. A source failure takes precedence over the syntax error.
func (t *Tokenizer) unterminated(code ErrorCode, what string) {
	if t.checkInput() {
		return
	}
	t.syntaxError(code, "unexpected end of input in "+what)
}

// syntaxError records a structural error. Outside strict mode the
// tokenizer skips to the next '>' and carries on.
func (t *Tokenizer) syntaxError(code ErrorCode, msg string) {
	sev := t.structural()
	t.push(t.record(code, sev, t.errorPos(), msg, nil))
	if sev != SeverityFatal {
		t.state = StateResyncing
	}
}

// fail records a fatal error at the marked position.
func (t *Tokenizer) fail(code ErrorCode, msg string) {
	t.push(t.record(code, SeverityFatal, t.errorPos(), msg, nil))
}

func (t *Tokenizer) structural() Severity {
	if t.flags.Strict {
		return SeverityFatal
	}
	return SeverityRecoverable
}

// push queues tok followed by any diagnostics deferred while scanning it.
func (t *Tokenizer) push(tok Token) {
	t.queue.push(tok)
	t.flushDeferred()
}

// complete queues a scanned token and returns the DFA to content.
func (t *Tokenizer) complete(tok Token) {
	t.state = StateContent
	t.stats.peak(&t.stats.MaxTextArena, len(t.text))
	t.push(tok)
}

func (t *Tokenizer) flushDeferred() {
	for _, d := range t.deferred {
		t.queue.push(d)
	}
	clear(t.deferred)
	t.deferred = t.deferred[:0]
}

// deferError holds a non-fatal diagnostic until the token being scanned is queued.
func (t *Tokenizer) deferError(code ErrorCode, pos Position, msg string) {
	t.deferred = append(t.deferred, t.record(code, SeverityRecoverable, pos, msg, nil))
}

func (t *Tokenizer) markStart() {
	t.pendingStart = t.in.Position()
	t.pendingStartValid = true
}

func (t *Tokenizer) errorPos() Position {
	if t.pendingStartValid {
		return t.pendingStart
	}
	return t.in.Position()
}

// record interns msg, appends a Diagnostic and returns the Error token.
// A fatal record halts the tokenizer.
func (t *Tokenizer) record(code ErrorCode, sev Severity, pos Position, msg string, cause error) Token {
	if msg == "" {
		msg = defaultErrorMessage
	}
	d := Diagnostic{Code: code, Severity: sev, Pos: pos, Message: t.errs.intern(msg), cause: cause}
	t.diags = append(t.diags, d)
	t.stats.peak(&t.stats.ErrorArenaBytes, t.errs.size)
	if sev == SeverityFatal {
		t.halted = true
		if t.fatal == nil {
			t.fatal = &d
		}
		t.log.Warn().EmbedObject(d).Msg("xml tokenizer stopped")
	} else {
		t.log.Debug().EmbedObject(d).Msg("xml diagnostic")
	}
	return Token{kind: KindError, data: d.Message, pos: pos, code: code, severity: sev}
}

// EmitError records a diagnostic and fills tok with the matching Error token.
// The position is the start of the token being scanned when one is marked,
// else the current input position. A fatal error ends the stream and drops
// tokens not yet returned.
func (t *Tokenizer) EmitError(tok *Token, code ErrorCode, sev Severity, msg string) bool {
	e := t.record(code, sev, t.errorPos(), msg, nil)
	if sev == SeverityFatal {
		t.queue.reset()
		t.done = true
	}
	t.stats.count(&t.stats.TokensEmitted)
	t.stats.count(&t.stats.ErrorsEmitted)
	if tok != nil {
		*tok = e
	}
	return true
}

// Errors returns the diagnostics recorded since the last ClearErrors.
func (t *Tokenizer) Errors() []Diagnostic {
	return t.diags[:len(t.diags):len(t.diags)]
}

// ClearErrors forgets recorded diagnostics. Error messages already returned
// stay valid.
func (t *Tokenizer) ClearErrors() {
	t.diags = nil
}

// Err returns the first fatal diagnostic, or nil.
func (t *Tokenizer) Err() error {
	if t.fatal == nil {
		return nil
	}
	return *t.fatal
}

// Position reports the input position of the next unread scalar.
func (t *Tokenizer) Position() Position {
	return t.in.Position()
}

// Depth reports the number of open elements, including an EmptyTag whose
// attribute tokens are still being returned.
func (t *Tokenizer) Depth() int {
	return t.depth
}

// State reports the lexical state.
func (t *Tokenizer) State() State {
	return t.state
}

// Options reports the resolved flags.
func (t *Tokenizer) Options() Flags {
	return t.flags
}

// Limits reports the clamped limits in effect.
func (t *Tokenizer) Limits() Limits {
	return t.limits
}

// Stats reports the counters collected so far.
func (t *Tokenizer) Stats() Stats {
	s := t.stats
	s.BytesConsumed = t.in.Offset()
	return s
}
