// Package xmltoken turns the scalar stream of an xmlinput.Reader into XML
// lexical tokens.
//
// The Tokenizer is pull based: each NextToken call fills one Token. Token
// payloads alias storage owned by the Tokenizer, so their lifetime depends on
// the kind:
//
//   - Text, Comment, CDATA, PI, DOCTYPE and EndTag bytes are valid until the
//     next NextToken call.
//   - StartTag, EmptyTag, AttributeName and AttributeValue bytes live in the
//     element's tag buffer and stay valid until the element is closed. For an
//     EmptyTag the element closes at the start of the call after its last
//     attribute token.
//   - Error message bytes stay valid for the lifetime of the Tokenizer.
//
// Every byte ceiling is a soft limit clamped to an absolute cap when the
// Tokenizer is constructed. Exceeding a limit is fatal: the Tokenizer emits an
// Error token and NextToken reports false from then on.
package xmltoken
