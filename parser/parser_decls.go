package parser

import (
	"fmt"

	"github.com/tsumiki/ksl/ast"
	"github.com/tsumiki/ksl/lexer"
)

// attrKinds maps attribute names (as written after '@') onto their kinds.
// Any other name is a fatal parse error.
var attrKinds = map[string]ast.AttrKind{
	"group":          ast.AttrGroup,
	"binding":        ast.AttrBinding,
	"compute":        ast.AttrCompute,
	"vertex":         ast.AttrVertex,
	"fragment":       ast.AttrFragment,
	"workgroup_size": ast.AttrWorkgroupSize,
	"location":       ast.AttrLocation,
	"input":          ast.AttrInput,
	"builtin":        ast.AttrBuiltin,
}

// parseGlobalDeclaration parses one module-level declaration: optional
// attributes followed by a function, buffer, struct or uniform.
func (par *Parser) parseGlobalDeclaration() Result[ast.Ref] {
	attrs := par.parseAttributes()

	if attrs.Errored {
		return errored[ast.Ref]()
	}

	decl := par.parseFuncDecl(attrs.Value)
	if decl.Errored || decl.Matched {
		return decl
	}

	decl = par.parseBufferDecl(attrs.Value)
	if decl.Errored || decl.Matched {
		return decl
	}

	decl = par.parseStructDecl()
	if decl.Errored || decl.Matched {
		return decl
	}

	decl = par.parseUniformDecl(attrs.Value)
	if decl.Errored || decl.Matched {
		return decl
	}

	return noMatch[ast.Ref]()
}

// parseAttributes parses zero or more '@name' or '@name(expr-list)'
// attributes. Unknown attribute names are fatal. Arity is not checked
// here; the resolver validates it.
func (par *Parser) parseAttributes() Result[[]ast.Ref] {
	var attributeList []ast.Ref

	for par.matches(lexer.AT_PUNC) != nil {
		ident := par.parseName()

		if !ident.Matched {
			return fail[[]ast.Ref](par, "missing attribute identifier after '@'.")
		}

		kind, known := attrKinds[ident.Value]
		if !known {
			return fail[[]ast.Ref](par, "unknown attribute '%s'.", ident.Value)
		}

		var args []ast.Ref

		if par.matches(lexer.LEFT_PAREN) != nil {
			exprList := par.parseExpressionList()

			if exprList.Errored {
				return errored[[]ast.Ref]()
			}

			if par.matches(lexer.RIGHT_PAREN) == nil {
				return fail[[]ast.Ref](par, "missing ')' at end of attribute parameters.")
			}

			args = exprList.Value
		}

		attributeList = append(attributeList, par.ctx.Make(&ast.Attr{
			Kind: kind,
			Args: args,
		}))
	}

	return match(attributeList)
}

// parseFuncDecl parses 'fn name(arg-list) [: return-type] block'.
// A missing return type defaults to the built-in type named 'void'.
func (par *Parser) parseFuncDecl(attributes []ast.Ref) Result[ast.Ref] {
	if par.matchesIdent("fn") == nil {
		return noMatch[ast.Ref]()
	}

	functionName := par.parseName()

	if !functionName.Matched {
		return fail[ast.Ref](par, "expected function name.")
	}

	if par.matches(lexer.LEFT_PAREN) == nil {
		return fail[ast.Ref](par, "expected a '(' after function name.")
	}

	var functionArgs []ast.Ref

	for i := 0; par.shouldContinue() && par.matches(lexer.RIGHT_PAREN) == nil; i++ {
		if i > 0 && par.matches(lexer.COMMA_DELIM) == nil {
			return fail[ast.Ref](par, "missing ',' between function arguments.")
		}

		attrs := par.parseAttributes()

		if attrs.Errored {
			return errored[ast.Ref]()
		}

		ident := par.parseName()

		if !ident.Matched {
			return fail[ast.Ref](par, "missing argument identifier.")
		}

		if par.matches(lexer.COLON_DELIM) == nil {
			return fail[ast.Ref](par, "missing ':' after function argument name.")
		}

		argType := par.expectType()

		if argType.Errored {
			return errored[ast.Ref]()
		}

		if !argType.Matched {
			return fail[ast.Ref](par, "missing type in function argument.")
		}

		functionArgs = append(functionArgs, par.ctx.Make(&ast.FuncArg{
			Name:  ident.Value,
			Type:  argType.Value,
			Attrs: attrs.Value,
		}))
	}

	if !par.current().Is(lexer.RIGHT_PAREN) {
		return fail[ast.Ref](par, "expected a ')' after function arguments.")
	}

	var returnType ast.Ref

	if par.matches(lexer.COLON_DELIM) != nil {
		typeResult := par.expectType()

		if typeResult.Errored {
			return errored[ast.Ref]()
		}

		if !typeResult.Matched {
			return fail[ast.Ref](par, "missing type after ':' in function return type.")
		}

		returnType = typeResult.Value
	} else {
		returnType = par.ctx.Make(&ast.TypeId{ID: "void"})
	}

	block := par.parseBlock()

	if block.Errored {
		return errored[ast.Ref]()
	}

	if !block.Matched {
		return fail[ast.Ref](par, "missing block in function declaration.")
	}

	return match(par.ctx.Make(&ast.FuncDecl{
		Name:       functionName.Value,
		ReturnType: returnType,
		Args:       functionArgs,
		Block:      block.Value,
		Attrs:      attributes,
	}))
}

// parseBufferDecl parses 'buffer [<access-mode>] name : type ;'.
// A missing access mode defaults to read_write.
func (par *Parser) parseBufferDecl(attributes []ast.Ref) Result[ast.Ref] {
	if par.matchesIdent("buffer") == nil {
		return noMatch[ast.Ref]()
	}

	access := ast.AccessReadWrite

	if par.matches(lexer.LT_OP) != nil {
		switch {
		case par.matchesIdent("read") != nil:
			access = ast.AccessRead
		case par.matchesIdent("write") != nil:
			access = ast.AccessWrite
		case par.matchesIdent("read_write") != nil:
			access = ast.AccessReadWrite
		default:
			return fail[ast.Ref](par, "unknown buffer access mode.")
		}

		if par.matches(lexer.GT_OP) == nil {
			return fail[ast.Ref](par, "missing '>' at end of buffer argument list.")
		}
	}

	name := par.parseName()

	if !name.Matched {
		return fail[ast.Ref](par, "missing name in buffer declaration.")
	}

	if par.matches(lexer.COLON_DELIM) == nil {
		return fail[ast.Ref](par, "missing ':' after buffer name.")
	}

	bufferType := par.expectType()

	if bufferType.Errored {
		return errored[ast.Ref]()
	}

	if !bufferType.Matched {
		return fail[ast.Ref](par, "missing type in buffer declaration.")
	}

	if par.matches(lexer.SEMICOLON_DELIM) == nil {
		return fail[ast.Ref](par, "missing semicolon after buffer declaration.")
	}

	return match(par.ctx.Make(&ast.BufferDecl{
		Name:   name.Value,
		Access: access,
		Type:   bufferType.Value,
		Attrs:  attributes,
	}))
}

// parseStructDecl parses 'struct name { members } [;]'.
func (par *Parser) parseStructDecl() Result[ast.Ref] {
	if par.matchesIdent("struct") == nil {
		return noMatch[ast.Ref]()
	}

	name := par.parseName()

	if !name.Matched {
		return fail[ast.Ref](par, "missing name when declaring struct.")
	}

	members := par.structMembers()

	if members.Errored {
		return errored[ast.Ref]()
	}

	if !members.Matched {
		return fail[ast.Ref](par, "missing struct body, KSL does not support forward declarations.")
	}

	// The trailing semicolon is optional.
	par.matches(lexer.SEMICOLON_DELIM)

	return match(par.ctx.Make(&ast.StructDecl{
		Name:    name.Value,
		Members: members.Value,
	}))
}

// structMembers parses '{ member (, member)* }' where each member is
// optional attributes + name + ':' + type.
func (par *Parser) structMembers() Result[[]ast.Ref] {
	if par.matches(lexer.LEFT_BRACE) == nil {
		return noMatch[[]ast.Ref]()
	}

	var members []ast.Ref

	for i := 0; par.shouldContinue() && par.matches(lexer.RIGHT_BRACE) == nil; i++ {
		if i > 0 && par.matches(lexer.COMMA_DELIM) == nil {
			return fail[[]ast.Ref](par, "missing ',' while declaring struct members.")
		}

		attrs := par.parseAttributes()

		if attrs.Errored {
			return errored[[]ast.Ref]()
		}

		name := par.parseName()

		if !name.Matched {
			return fail[[]ast.Ref](par, "missing name in struct member.")
		}

		if par.matches(lexer.COLON_DELIM) == nil {
			return fail[[]ast.Ref](par, "missing ':' after name in struct member.")
		}

		memberType := par.expectType()

		if memberType.Errored {
			return errored[[]ast.Ref]()
		}

		if !memberType.Matched {
			return fail[[]ast.Ref](par, "missing type after ':' in struct member.")
		}

		members = append(members, par.ctx.Make(&ast.StructMember{
			Name:  name.Value,
			Type:  memberType.Value,
			Attrs: attrs.Value,
		}))
	}

	return match(members)
}

// parseUniformDecl parses 'uniform name : type ;'.
func (par *Parser) parseUniformDecl(attributes []ast.Ref) Result[ast.Ref] {
	if par.matchesIdent("uniform") == nil {
		return noMatch[ast.Ref]()
	}

	name := par.parseName()

	if !name.Matched {
		return fail[ast.Ref](par, "missing name in uniform declaration.")
	}

	if par.matches(lexer.COLON_DELIM) == nil {
		return fail[ast.Ref](par, "missing ':' after uniform name.")
	}

	uniformType := par.expectType()

	if uniformType.Errored {
		return errored[ast.Ref]()
	}

	if !uniformType.Matched {
		return fail[ast.Ref](par, "missing type in uniform declaration.")
	}

	if par.matches(lexer.SEMICOLON_DELIM) == nil {
		return fail[ast.Ref](par, "missing ';' after uniform declaration.")
	}

	return match(par.ctx.Make(&ast.UniformDecl{
		Name:  name.Value,
		Type:  uniformType.Value,
		Attrs: attributes,
	}))
}

// parseName parses a bare identifier into its text.
func (par *Parser) parseName() Result[string] {
	if tok := par.matches(lexer.IDENTIFIER_ID); tok != nil {
		return match(tok.Literal)
	}

	return noMatch[string]()
}

// expectType parses one of the three type grammar forms:
//
//	[size-expr] element-type  -> ArrayType (size optional)
//	{ member, ... }           -> inline struct, lifted to a synthetic
//	                             global struct with a generated name
//	identifier                -> TypeId
func (par *Parser) expectType() Result[ast.Ref] {
	if par.matches(lexer.LEFT_BRACKET) != nil {
		size := ast.Nil

		sizeExpr := par.parseExpr()

		if sizeExpr.Errored {
			return errored[ast.Ref]()
		}

		if sizeExpr.Matched {
			size = sizeExpr.Value
		}

		if par.matches(lexer.RIGHT_BRACKET) == nil {
			return fail[ast.Ref](par, "missing ']' in array size.")
		}

		elemType := par.expectType()

		if elemType.Errored {
			return errored[ast.Ref]()
		}

		if !elemType.Matched {
			return fail[ast.Ref](par, "missing type in array.")
		}

		return match(par.ctx.Make(&ast.ArrayType{
			Elem: elemType.Value,
			Size: size,
		}))
	}

	// Inline anonymous struct type: lift it to a synthetic global.
	structMembers := par.structMembers()

	if structMembers.Errored {
		return errored[ast.Ref]()
	}

	if structMembers.Matched {
		par.privCount++
		structName := fmt.Sprintf("priv_%d", par.privCount)

		par.globalDecls = append(par.globalDecls, par.ctx.Make(&ast.StructDecl{
			Name:    structName,
			Members: structMembers.Value,
		}))

		return match(par.ctx.Make(&ast.TypeId{ID: structName}))
	}

	ident := par.parseName()

	if !ident.Matched {
		return fail[ast.Ref](par, "expected type identifier.")
	}

	return match(par.ctx.Make(&ast.TypeId{ID: ident.Value}))
}
