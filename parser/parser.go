/*
Package parser implements a recursive-descent parser with Pratt-style
operator-precedence expressions for the KSL shading language.

The parser converts the lexer's token stream into an abstract syntax tree
held in an ast.Context arena. It handles:
  - global declarations (functions, buffers, structs, uniforms) with
    '@name(args)' attributes
  - statements (var, if, for, while, return, break, expression statements)
  - expressions with the full KSL precedence table, including member access
    and the index accessor as binary operators

Every grammar rule returns a three-way Result: no-match (the rule did not
apply, try the next alternative), match, or error (the rule committed and
failed). Errors are formatted "PARSER ERROR (line:col): message", reported
through the configured error callback, and collected. After a failed global
declaration the parser synchronizes to the next '}' and keeps going; when
any error reached end of input, Parse returns the absent handle.
*/
package parser

import (
	"fmt"

	"github.com/tsumiki/ksl/ast"
	"github.com/tsumiki/ksl/lexer"
)

// Options configures a Parser.
type Options struct {
	// ErrorCallback receives every formatted parser diagnostic.
	// May be nil.
	ErrorCallback func(message string)
}

// Parser holds the token cursor and the arena the AST is built into.
type Parser struct {
	Lex     lexer.Lexer // Lexer instance producing the token stream
	Errors  []string    // Collected diagnostics, in emission order
	ctx     *ast.Context
	options Options

	// offset indexes the most recently consumed token; -1 before the
	// first token is consumed.
	offset int

	// globalDecls accumulates module-level declarations. Anonymous
	// struct types are lifted here by expectType while a declaration
	// is still being parsed.
	globalDecls []ast.Ref

	// privCount numbers the synthetic names given to lifted anonymous
	// struct types.
	privCount int
}

// NewParser creates a parser that builds nodes into ctx.
func NewParser(ctx *ast.Context, options Options) *Parser {
	return &Parser{
		ctx:     ctx,
		options: options,
		offset:  -1,
	}
}

// Context returns the arena the parser builds into.
func (par *Parser) Context() *ast.Context {
	return par.ctx
}

// Parse tokenizes the source and parses a module. It returns the module
// handle, or ast.Nil plus an error when lexing failed or any declaration
// could not be parsed.
func (par *Parser) Parse(source string) (ast.Ref, error) {
	par.Lex = lexer.NewLexer(source)

	if err := par.Lex.Tokenize(); err != nil {
		if par.options.ErrorCallback != nil {
			par.options.ErrorCallback(err.Error())
		}
		return ast.Nil, err
	}

	par.offset = -1
	par.globalDecls = par.globalDecls[:0]
	par.Errors = par.Errors[:0]

	failed := false

	for par.shouldContinue() {
		decl := par.parseGlobalDeclaration()

		if decl.Errored || !decl.Matched {
			if !decl.Errored {
				par.error("invalid global declaration.")
			}

			// Abandon the current declaration and synchronize to
			// the next '}' so the following globals still parse.
			failed = true
			par.syncTo(lexer.RIGHT_BRACE)
			continue
		}

		par.globalDecls = append(par.globalDecls, decl.Value)
	}

	if failed {
		return ast.Nil, fmt.Errorf("parsing failed with %d error(s)", len(par.Errors))
	}

	return par.ctx.Make(&ast.Module{Decls: par.globalDecls}), nil
}

// HasErrors returns true if any diagnostics were emitted.
func (par *Parser) HasErrors() bool {
	return len(par.Errors) > 0
}

// GetErrors returns all diagnostics collected during parsing.
func (par *Parser) GetErrors() []string {
	return par.Errors
}

// advance consumes one token.
func (par *Parser) advance() {
	if par.offset+1 < par.Lex.TokenCount() {
		par.offset++
	}
}

// peek looks n tokens ahead of the most recently consumed one without
// consuming anything. peek(1) is the next unconsumed token. Returns nil
// past the end of the stream.
func (par *Parser) peek(n int) *lexer.Token {
	if par.offset+n < par.Lex.TokenCount() && par.offset+n >= 0 {
		return par.Lex.At(par.offset + n)
	}
	return nil
}

// current returns the most recently consumed token. Before any token was
// consumed it returns the first token of the stream, so error locations
// are always in range.
func (par *Parser) current() *lexer.Token {
	if par.offset < 0 {
		return par.Lex.At(0)
	}
	if par.offset >= par.Lex.TokenCount() {
		return par.Lex.At(par.Lex.TokenCount() - 1)
	}
	return par.Lex.At(par.offset)
}

// matches consumes and returns the next token when it has the given type,
// or returns nil leaving the cursor alone.
func (par *Parser) matches(tokenType lexer.TokenType) *lexer.Token {
	next := par.peek(1)
	if next == nil || !next.Is(tokenType) {
		return nil
	}
	par.advance()
	return par.current()
}

// matchesIdent consumes and returns the next token when it is the
// identifier with the given text. Keywords are matched this way.
func (par *Parser) matchesIdent(text string) *lexer.Token {
	next := par.peek(1)
	if next == nil || !next.IsIdent(text) {
		return nil
	}
	par.advance()
	return par.current()
}

// shouldContinue reports whether unconsumed, non-EOF input remains.
func (par *Parser) shouldContinue() bool {
	next := par.peek(1)
	return next != nil && !next.Is(lexer.EOF_TYPE)
}

// syncTo advances the cursor until a token of the given type is consumed
// or the input runs out. Used for error recovery between globals.
func (par *Parser) syncTo(tokenType lexer.TokenType) {
	for par.shouldContinue() {
		if par.matches(tokenType) != nil {
			return
		}
		par.advance()
	}
}

// error formats and records a diagnostic at the current token's location
// and hands it to the error callback.
func (par *Parser) error(format string, args ...any) {
	tok := par.current()

	composed := fmt.Sprintf("PARSER ERROR (%d:%d): %s",
		tok.Line, tok.Column, fmt.Sprintf(format, args...))

	par.Errors = append(par.Errors, composed)

	if par.options.ErrorCallback != nil {
		par.options.ErrorCallback(composed)
	}
}
