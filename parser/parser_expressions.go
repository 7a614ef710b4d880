package parser

import (
	"github.com/tsumiki/ksl/ast"
	"github.com/tsumiki/ksl/lexer"
)

// parseExpr parses a full expression: a primary form followed by any number
// of binary operators, grouped by the precedence-climbing loop.
func (par *Parser) parseExpr() Result[ast.Ref] {
	expr := par.primaryExpr()

	if expr.Matched {
		if next := par.peek(1); next != nil && isOperator(next) {
			return par.parseExpression1(expr.Value, 0)
		}
	}

	return expr
}

// parseExpression1 is the precedence-climbing loop. lhs is the already
// parsed left operand; operators below minPrecedence are left for the
// caller. The index accessor '[' is treated as a binary operator whose
// right operand is a full expression and whose ']' is consumed here.
func (par *Parser) parseExpression1(lhs ast.Ref, minPrecedence int) Result[ast.Ref] {
	lookahead := par.peek(1)

	for lookahead != nil && isOperator(lookahead) && getPrecedence(lookahead) >= minPrecedence {
		op := *lookahead
		par.advance()

		var rhs ast.Ref

		if op.Is(lexer.LEFT_BRACKET) {
			// Index accessor: the bracketed index is a full
			// expression, closed by ']'. Nothing binds tighter
			// than the accessor level, so no climbing is needed.
			index := par.parseExpr()

			if index.Errored || !index.Matched {
				return fail[ast.Ref](par, "missing index expression after '['.")
			}

			if par.matches(lexer.RIGHT_BRACKET) == nil {
				return fail[ast.Ref](par, "missing ']' after index expression.")
			}

			rhs = index.Value
		} else {
			rhsExpr := par.primaryExpr()

			if rhsExpr.Errored || !rhsExpr.Matched {
				return fail[ast.Ref](par, "error while parsing expression.")
			}

			rhs = rhsExpr.Value

			lookahead = par.peek(1)

			for lookahead != nil && isOperator(lookahead) &&
				(getPrecedence(lookahead) > getPrecedence(&op) ||
					(getAssociativity(lookahead) == assocRight &&
						getPrecedence(lookahead) == getPrecedence(&op))) {

				bump := 0
				if getPrecedence(lookahead) > getPrecedence(&op) {
					bump = 1
				}

				inner := par.parseExpression1(rhs, getPrecedence(&op)+bump)

				if inner.Errored || !inner.Matched {
					return fail[ast.Ref](par, "error while parsing expression.")
				}

				rhs = inner.Value
				lookahead = par.peek(1)
			}
		}

		opType, ok := binaryOpForToken(op.Type)
		if !ok {
			return fail[ast.Ref](par, "invalid operator.")
		}

		lhs = par.ctx.Make(&ast.BinaryExpr{
			Lhs: lhs,
			Op:  opType,
			Rhs: rhs,
		})

		lookahead = par.peek(1)
	}

	return match(lhs)
}

// primaryExpr parses one primary form: a unary expression, a call, a
// literal, an identifier, or an array literal, tried in that order.
func (par *Parser) primaryExpr() Result[ast.Ref] {
	expr := par.unaryExpr()
	if expr.Matched || expr.Errored {
		return expr
	}

	expr = par.callExpr()
	if expr.Matched || expr.Errored {
		return expr
	}

	expr = par.literalExpr()
	if expr.Matched || expr.Errored {
		return expr
	}

	expr = par.identifierExpr()
	if expr.Matched || expr.Errored {
		return expr
	}

	expr = par.arrayExpr()
	if expr.Matched || expr.Errored {
		return expr
	}

	return noMatch[ast.Ref]()
}

// unaryExpr parses '-', '+', '!' or '~' followed by a primary form.
func (par *Parser) unaryExpr() Result[ast.Ref] {
	var op ast.UnaryOp

	switch {
	case par.matches(lexer.MINUS_OP) != nil:
		op = ast.UnaryMinus
	case par.matches(lexer.PLUS_OP) != nil:
		op = ast.UnaryPlus
	case par.matches(lexer.NOT_OP) != nil:
		op = ast.UnaryNot
	case par.matches(lexer.BIT_NOT_OP) != nil:
		op = ast.UnaryFlip
	default:
		return noMatch[ast.Ref]()
	}

	operand := par.primaryExpr()

	if operand.Errored {
		return errored[ast.Ref]()
	}

	if !operand.Matched {
		return fail[ast.Ref](par, "missing expression after unary '%s'.", op)
	}

	return match(par.ctx.Make(&ast.UnaryExpr{Op: op, Operand: operand.Value}))
}

// callExpr parses 'name(args)'. Whether the name is a type constructor or
// a function is the resolver's business.
func (par *Parser) callExpr() Result[ast.Ref] {
	id := par.peek(1)
	paren := par.peek(2)

	if id == nil || paren == nil || !id.Is(lexer.IDENTIFIER_ID) || !paren.Is(lexer.LEFT_PAREN) {
		return noMatch[ast.Ref]()
	}

	identifier := par.identifierExpr()

	par.matches(lexer.LEFT_PAREN)

	args := par.parseExpressionList()

	if args.Errored {
		return errored[ast.Ref]()
	}

	if par.matches(lexer.RIGHT_PAREN) == nil {
		return fail[ast.Ref](par, "missing ')' after function call argument list.")
	}

	return match(par.ctx.Make(&ast.CallExpr{
		ID:   identifier.Value,
		Args: args.Value,
	}))
}

// parseExpressionList parses 'expr (, expr)*'. A leading no-match is a
// no-match of the whole list (the empty list case for callers).
func (par *Parser) parseExpressionList() Result[[]ast.Ref] {
	expr := par.parseExpr()

	if expr.Errored {
		return errored[[]ast.Ref]()
	}

	if !expr.Matched {
		return noMatch[[]ast.Ref]()
	}

	exprList := []ast.Ref{expr.Value}

	for par.matches(lexer.COMMA_DELIM) != nil {
		expr = par.parseExpr()

		if !expr.Matched {
			return fail[[]ast.Ref](par, "missing a expression after ',' while parsing a expression list.")
		}

		exprList = append(exprList, expr.Value)
	}

	return match(exprList)
}

// literalExpr parses one sized numeric literal.
func (par *Parser) literalExpr() Result[ast.Ref] {
	var value ast.LitValue

	if tok := par.matches(lexer.INT16_LIT); tok != nil {
		value = ast.LitValue{Kind: ast.LitI16, I64: tok.Int}
	} else if tok := par.matches(lexer.INT32_LIT); tok != nil {
		value = ast.LitValue{Kind: ast.LitI32, I64: tok.Int}
	} else if tok := par.matches(lexer.INT64_LIT); tok != nil {
		value = ast.LitValue{Kind: ast.LitI64, I64: tok.Int}
	} else if tok := par.matches(lexer.UINT16_LIT); tok != nil {
		value = ast.LitValue{Kind: ast.LitU16, U64: tok.Uint}
	} else if tok := par.matches(lexer.UINT32_LIT); tok != nil {
		value = ast.LitValue{Kind: ast.LitU32, U64: tok.Uint}
	} else if tok := par.matches(lexer.UINT64_LIT); tok != nil {
		value = ast.LitValue{Kind: ast.LitU64, U64: tok.Uint}
	} else if tok := par.matches(lexer.FLT32_LIT); tok != nil {
		value = ast.LitValue{Kind: ast.LitF32, F64: tok.Float}
	} else if tok := par.matches(lexer.FLT64_LIT); tok != nil {
		value = ast.LitValue{Kind: ast.LitF64, F64: tok.Float}
	} else {
		return noMatch[ast.Ref]()
	}

	return match(par.ctx.Make(&ast.LitExpr{Value: value}))
}

// identifierExpr parses a bare identifier reference.
func (par *Parser) identifierExpr() Result[ast.Ref] {
	if tok := par.matches(lexer.IDENTIFIER_ID); tok != nil {
		return match(par.ctx.Make(&ast.IdExpr{Ident: tok.Literal}))
	}

	return noMatch[ast.Ref]()
}

// arrayExpr parses a non-empty array literal '[e0, e1, ...]'.
func (par *Parser) arrayExpr() Result[ast.Ref] {
	if par.matches(lexer.LEFT_BRACKET) == nil {
		return noMatch[ast.Ref]()
	}

	var exprList []ast.Ref

	for i := 0; par.shouldContinue() && par.matches(lexer.RIGHT_BRACKET) == nil; i++ {
		if i > 0 {
			if par.matches(lexer.COMMA_DELIM) == nil {
				return fail[ast.Ref](par, "expected a ',' between expressions when parsing an array literal.")
			}
		}

		expr := par.parseExpr()

		if expr.Errored {
			return errored[ast.Ref]()
		}

		if !expr.Matched {
			return fail[ast.Ref](par, "expected expression in array literal.")
		}

		exprList = append(exprList, expr.Value)
	}

	if len(exprList) == 0 {
		return fail[ast.Ref](par, "empty array literals are not allowed.")
	}

	return match(par.ctx.Make(&ast.ArrayExpr{Elems: exprList}))
}
