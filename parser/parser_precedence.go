package parser

import (
	"github.com/tsumiki/ksl/ast"
	"github.com/tsumiki/ksl/lexer"
)

// Operator precedence levels. Higher binds tighter.
//
// Precedence hierarchy (lowest to highest):
//  0. assignment and compound assignment (right-associative)
//  1. logical || and && (tied on purpose: this is a KSL language choice,
//     not an accident; both are right-associative)
//  2. equality == !=
//  3. bitwise | ^ &
//  4. relational < <= > >=
//  5. shifts << >>
//  6. additive + - (left-associative)
//  7. multiplicative * / % (left-associative)
//  8. member access '.' and index accessor '[' (left-associative)
const (
	ASSIGN_PRIORITY         = 0
	LOGICAL_PRIORITY        = 1
	EQUALITY_PRIORITY       = 2
	BITWISE_PRIORITY        = 3
	RELATIONAL_PRIORITY     = 4
	SHIFT_PRIORITY          = 5
	ADDITIVE_PRIORITY       = 6
	MULTIPLICATIVE_PRIORITY = 7
	ACCESSOR_PRIORITY       = 8
)

// associativity of a binary operator.
type associativity int

const (
	assocLeft associativity = iota
	assocRight
)

// getPrecedence returns the precedence level for a token, or -1 when the
// token is not a binary operator.
func getPrecedence(tok *lexer.Token) int {
	switch tok.Type {
	case lexer.ASSIGN_OP, lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN, lexer.MUL_ASSIGN,
		lexer.DIV_ASSIGN, lexer.MOD_ASSIGN, lexer.BIT_AND_ASSIGN, lexer.BIT_OR_ASSIGN,
		lexer.BIT_XOR_ASSIGN, lexer.BIT_LEFT_ASSIGN, lexer.BIT_RIGHT_ASSIGN:
		return ASSIGN_PRIORITY

	case lexer.OR_OP, lexer.AND_OP:
		return LOGICAL_PRIORITY

	case lexer.EQ_OP, lexer.NE_OP:
		return EQUALITY_PRIORITY

	case lexer.BIT_OR_OP, lexer.BIT_XOR_OP, lexer.BIT_AND_OP:
		return BITWISE_PRIORITY

	case lexer.GT_OP, lexer.GE_OP, lexer.LT_OP, lexer.LE_OP:
		return RELATIONAL_PRIORITY

	case lexer.BIT_LEFT_OP, lexer.BIT_RIGHT_OP:
		return SHIFT_PRIORITY

	case lexer.PLUS_OP, lexer.MINUS_OP:
		return ADDITIVE_PRIORITY

	case lexer.MUL_OP, lexer.DIV_OP, lexer.MOD_OP:
		return MULTIPLICATIVE_PRIORITY

	case lexer.DOT_OP, lexer.LEFT_BRACKET:
		return ACCESSOR_PRIORITY

	default:
		return -1
	}
}

// getAssociativity returns the associativity for an operator token.
// Only the additive, multiplicative and accessor levels bind left.
func getAssociativity(tok *lexer.Token) associativity {
	switch tok.Type {
	case lexer.PLUS_OP, lexer.MINUS_OP,
		lexer.MUL_OP, lexer.DIV_OP, lexer.MOD_OP,
		lexer.DOT_OP, lexer.LEFT_BRACKET:
		return assocLeft
	default:
		return assocRight
	}
}

// isOperator reports whether the token can appear in infix position.
func isOperator(tok *lexer.Token) bool {
	return getPrecedence(tok) >= 0
}

// binaryOpForToken maps an operator token type onto the AST operator.
// The boolean result is false for tokens that are not binary operators.
func binaryOpForToken(tokenType lexer.TokenType) (ast.BinaryOp, bool) {
	switch tokenType {
	case lexer.ASSIGN_OP:
		return ast.OpAssign, true
	case lexer.PLUS_ASSIGN:
		return ast.OpAddAssign, true
	case lexer.MINUS_ASSIGN:
		return ast.OpSubAssign, true
	case lexer.MUL_ASSIGN:
		return ast.OpMulAssign, true
	case lexer.DIV_ASSIGN:
		return ast.OpDivAssign, true
	case lexer.MOD_ASSIGN:
		return ast.OpModAssign, true
	case lexer.BIT_OR_ASSIGN:
		return ast.OpOrAssign, true
	case lexer.BIT_AND_ASSIGN:
		return ast.OpAndAssign, true
	case lexer.BIT_XOR_ASSIGN:
		return ast.OpXorAssign, true
	case lexer.BIT_LEFT_ASSIGN:
		return ast.OpShlAssign, true
	case lexer.BIT_RIGHT_ASSIGN:
		return ast.OpShrAssign, true
	case lexer.OR_OP:
		return ast.OpOrOr, true
	case lexer.AND_OP:
		return ast.OpAndAnd, true
	case lexer.EQ_OP:
		return ast.OpEqEq, true
	case lexer.NE_OP:
		return ast.OpNotEq, true
	case lexer.BIT_OR_OP:
		return ast.OpBitOr, true
	case lexer.BIT_XOR_OP:
		return ast.OpBitXor, true
	case lexer.BIT_AND_OP:
		return ast.OpBitAnd, true
	case lexer.GT_OP:
		return ast.OpGT, true
	case lexer.GE_OP:
		return ast.OpGTEq, true
	case lexer.LT_OP:
		return ast.OpLT, true
	case lexer.LE_OP:
		return ast.OpLTEq, true
	case lexer.BIT_LEFT_OP:
		return ast.OpShl, true
	case lexer.BIT_RIGHT_OP:
		return ast.OpShr, true
	case lexer.PLUS_OP:
		return ast.OpAdd, true
	case lexer.MINUS_OP:
		return ast.OpSub, true
	case lexer.MUL_OP:
		return ast.OpMul, true
	case lexer.DIV_OP:
		return ast.OpDiv, true
	case lexer.MOD_OP:
		return ast.OpMod, true
	case lexer.DOT_OP:
		return ast.OpMemberAccess, true
	case lexer.LEFT_BRACKET:
		return ast.OpIndexAccessor, true
	default:
		return 0, false
	}
}
