package parser

import (
	"github.com/tsumiki/ksl/ast"
	"github.com/tsumiki/ksl/lexer"
)

// statement parses one statement, trying the alternatives in order:
// return, if, for, while, var, break, expression statement.
func (par *Parser) statement() Result[ast.Ref] {
	stat := par.parseReturnStat()
	if stat.Errored || stat.Matched {
		return stat
	}

	stat = par.ifStatement()
	if stat.Errored || stat.Matched {
		return stat
	}

	stat = par.forStatement()
	if stat.Errored || stat.Matched {
		return stat
	}

	stat = par.whileStatement()
	if stat.Errored || stat.Matched {
		return stat
	}

	stat = par.varStatement()
	if stat.Errored || stat.Matched {
		return stat
	}

	stat = par.breakStatement()
	if stat.Errored || stat.Matched {
		return stat
	}

	// Expression statements are always the last alternative.
	stat = par.parseExprStat()
	if stat.Errored || stat.Matched {
		return stat
	}

	return fail[ast.Ref](par, "invalid statement.")
}

// parseBlock parses '{ statement* }'.
func (par *Parser) parseBlock() Result[ast.Ref] {
	if par.matches(lexer.LEFT_BRACE) == nil {
		return noMatch[ast.Ref]()
	}

	var statements []ast.Ref

	for par.shouldContinue() && par.matches(lexer.RIGHT_BRACE) == nil {
		stat := par.statement()

		if stat.Errored {
			return errored[ast.Ref]()
		}

		statements = append(statements, stat.Value)
	}

	if !par.current().Is(lexer.RIGHT_BRACE) {
		return fail[ast.Ref](par, "missing '}' after end of statement block.")
	}

	return match(par.ctx.Make(&ast.BlockStat{Stats: statements}))
}

// parseReturnStat parses 'return expr ;'.
func (par *Parser) parseReturnStat() Result[ast.Ref] {
	if par.matchesIdent("return") == nil {
		return noMatch[ast.Ref]()
	}

	expr := par.parseExpr()

	if expr.Errored {
		return errored[ast.Ref]()
	}

	if !expr.Matched {
		return fail[ast.Ref](par, "missing expression in 'return' statement.")
	}

	if par.matches(lexer.SEMICOLON_DELIM) == nil {
		return fail[ast.Ref](par, "missing ';' after 'return' statement.")
	}

	return match(par.ctx.Make(&ast.ReturnStat{Expr: expr.Value}))
}

// breakStatement parses 'break ;'.
func (par *Parser) breakStatement() Result[ast.Ref] {
	if par.matchesIdent("break") == nil {
		return noMatch[ast.Ref]()
	}

	if par.matches(lexer.SEMICOLON_DELIM) == nil {
		return fail[ast.Ref](par, "missing ';' after 'break' statement.")
	}

	return match(par.ctx.Make(&ast.BreakStat{}))
}

// ifStatement parses 'if expr block [else block]'.
func (par *Parser) ifStatement() Result[ast.Ref] {
	if par.matchesIdent("if") == nil {
		return noMatch[ast.Ref]()
	}

	condition := par.parseExpr()

	if condition.Errored {
		return errored[ast.Ref]()
	}

	if !condition.Matched {
		return fail[ast.Ref](par, "missing condition expression in 'if' statement.")
	}

	block := par.parseBlock()

	if block.Errored {
		return errored[ast.Ref]()
	}

	if !block.Matched {
		return fail[ast.Ref](par, "missing block in 'if' statement.")
	}

	elseBlock := ast.Nil

	if par.matchesIdent("else") != nil {
		elseResult := par.parseBlock()

		if elseResult.Errored {
			return errored[ast.Ref]()
		}

		if !elseResult.Matched {
			return fail[ast.Ref](par, "missing block in 'else' statement.")
		}

		elseBlock = elseResult.Value
	}

	return match(par.ctx.Make(&ast.IfStat{
		Cond:  condition.Value,
		Block: block.Value,
		Else:  elseBlock,
	}))
}

// forStatement parses 'for stmt expr ; stmt block'. The initializer and
// update slots are general statements and carry their own terminators, so
// a bare 'for ;;;' form does not parse.
func (par *Parser) forStatement() Result[ast.Ref] {
	if par.matchesIdent("for") == nil {
		return noMatch[ast.Ref]()
	}

	initializer := par.statement()

	if initializer.Errored {
		return errored[ast.Ref]()
	}

	if !initializer.Matched {
		return fail[ast.Ref](par, "missing initializer in for statement.")
	}

	condition := par.parseExpr()

	if condition.Errored {
		return errored[ast.Ref]()
	}

	if !condition.Matched {
		return fail[ast.Ref](par, "missing condition in for statement.")
	}

	if par.matches(lexer.SEMICOLON_DELIM) == nil {
		return fail[ast.Ref](par, "missing semicolon after for statement condition.")
	}

	continuing := par.statement()

	if continuing.Errored {
		return errored[ast.Ref]()
	}

	if !continuing.Matched {
		return fail[ast.Ref](par, "missing continuing expression in for statement.")
	}

	block := par.parseBlock()

	if block.Errored {
		return errored[ast.Ref]()
	}

	if !block.Matched {
		return fail[ast.Ref](par, "missing block in for statement.")
	}

	return match(par.ctx.Make(&ast.ForStat{
		Init:  initializer.Value,
		Cond:  condition.Value,
		Cont:  continuing.Value,
		Block: block.Value,
	}))
}

// whileStatement parses 'while expr block'.
func (par *Parser) whileStatement() Result[ast.Ref] {
	if par.matchesIdent("while") == nil {
		return noMatch[ast.Ref]()
	}

	condition := par.parseExpr()

	if condition.Errored {
		return errored[ast.Ref]()
	}

	if !condition.Matched {
		return fail[ast.Ref](par, "missing condition in while statement.")
	}

	block := par.parseBlock()

	if block.Errored {
		return errored[ast.Ref]()
	}

	if !block.Matched {
		return fail[ast.Ref](par, "missing block in while statement.")
	}

	return match(par.ctx.Make(&ast.WhileStat{
		Cond:  condition.Value,
		Block: block.Value,
	}))
}

// varStatement parses 'var name [: type] [= expr] ;'. At least one of the
// type and the initializer must be present for the resolver to type the
// variable, but that is enforced there, not here.
func (par *Parser) varStatement() Result[ast.Ref] {
	if par.matchesIdent("var") == nil {
		return noMatch[ast.Ref]()
	}

	name := par.parseName()

	if name.Errored {
		return errored[ast.Ref]()
	}

	if !name.Matched {
		return fail[ast.Ref](par, "missing name identifier in variable statement.")
	}

	varType := ast.Nil

	if par.matches(lexer.COLON_DELIM) != nil {
		typeResult := par.expectType()

		if typeResult.Errored {
			return errored[ast.Ref]()
		}

		if !typeResult.Matched {
			return fail[ast.Ref](par, "missing type after ':' in variable declaration statement.")
		}

		varType = typeResult.Value
	}

	initializer := ast.Nil

	if par.matches(lexer.ASSIGN_OP) != nil {
		initResult := par.parseExpr()

		if initResult.Errored {
			return errored[ast.Ref]()
		}

		if !initResult.Matched {
			return fail[ast.Ref](par, "missing initializer expression after '=' in variable statement.")
		}

		initializer = initResult.Value
	}

	if par.matches(lexer.SEMICOLON_DELIM) == nil {
		return fail[ast.Ref](par, "missing ';' after variable declaration statement.")
	}

	decl := par.ctx.Make(&ast.VarDecl{
		Name: name.Value,
		Type: varType,
	})

	return match(par.ctx.Make(&ast.VarStat{
		Decl: decl,
		Init: initializer,
	}))
}

// parseExprStat parses 'expr ;'.
func (par *Parser) parseExprStat() Result[ast.Ref] {
	expr := par.parseExpr()

	if expr.Errored {
		return errored[ast.Ref]()
	}

	if !expr.Matched {
		return noMatch[ast.Ref]()
	}

	if par.matches(lexer.SEMICOLON_DELIM) == nil {
		return fail[ast.Ref](par, "missing ';' after expression statement.")
	}

	return match(par.ctx.Make(&ast.ExprStat{Expr: expr.Value}))
}
